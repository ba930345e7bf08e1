package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_PutGet(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	r.Put(Record{JobID: "job_1", VideoID: "abcDEF123", Language: "zh", Title: "a talk"})

	rec, ok := r.Get("job_1")
	require.True(t, ok)
	require.Equal(t, "abcDEF123", rec.VideoID)
	require.Equal(t, "zh", rec.Language)
	require.False(t, rec.CreatedAt.IsZero())

	_, ok = r.Get("unknown")
	require.False(t, ok)
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Put(Record{JobID: "job_1", VideoID: "abcDEF123"})

	rec, _ := r.Get("job_1")
	rec.VideoID = "mutated"

	again, _ := r.Get("job_1")
	require.Equal(t, "abcDEF123", again.VideoID)
}

func TestRegistry_SweepRemovesOnlyAgedRecords(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Put(Record{JobID: "old", CreatedAt: time.Now().Add(-2 * time.Hour)})
	r.Put(Record{JobID: "fresh"})

	removed := r.Sweep(time.Hour)
	require.Equal(t, 1, removed)
	require.Equal(t, 1, r.Len())

	_, ok := r.Get("old")
	require.False(t, ok)
	_, ok = r.Get("fresh")
	require.True(t, ok)
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	r.Put(Record{JobID: "a"})
	r.Put(Record{JobID: "b"})
	require.Len(t, r.List(), 2)
}
