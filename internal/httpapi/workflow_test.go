package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bruce4585/yt-transcribe/internal/config"
	"github.com/bruce4585/yt-transcribe/internal/jobs"
	"github.com/bruce4585/yt-transcribe/internal/resolver"
	"github.com/bruce4585/yt-transcribe/internal/transcriber"
)

// Exercises the whole submit-then-poll workflow against a scripted backend:
// audio relay, job creation, a processing poll, then a completed poll with
// captions.
func TestWorkflow_SubmitThenPollToCompletion(t *testing.T) {
	audio := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3-bytes"))
	}))
	defer audio.Close()

	srtBody := "1\n00:00:00,000 --> 00:00:01,000\nhello world\n"
	var polls atomic.Int32
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/upload":
			json.NewEncoder(w).Encode(map[string]string{"upload_url": "https://backend/upload/1"})
		case r.URL.Path == "/transcript" && r.Method == http.MethodPost:
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "https://backend/upload/1", req["audio_url"])
			json.NewEncoder(w).Encode(map[string]string{"id": "job_1"})
		case r.URL.Path == "/transcript/job_1":
			if polls.Add(1) == 1 {
				json.NewEncoder(w).Encode(map[string]string{"id": "job_1", "status": "processing"})
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "job_1", "status": "completed", "text": "hello world"})
		case r.URL.Path == "/transcript/job_1/srt":
			w.Write([]byte(srtBody))
		default:
			t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		}
	}))
	defer backendSrv.Close()

	backend := transcriber.NewClient(config.BackendConfig{
		APIKey:           "backend-key",
		BaseURL:          backendSrv.URL,
		RelayMaxAttempts: 3,
		RelayDelay:       5 * time.Millisecond,
	}, zap.NewNop())

	res := &fakeResolver{link: resolver.Link{URL: audio.URL, Title: "greeting", Provider: "p1"}}
	registry := jobs.NewRegistry(zap.NewNop())
	srv := NewServer(res, backend, registry, WithLogger(zap.NewNop()))

	rec, ret := doJSON(t, srv, http.MethodPost, "/transcribe", []byte(`{"url":"https://youtu.be/abcDEF123"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "job_1", ret["id"])
	require.Equal(t, "abcDEF123", res.gotID)

	rec, ret = doJSON(t, srv, http.MethodGet, "/status?id=job_1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "processing", ret["status"])
	require.Equal(t, "", ret["srt"])

	rec, ret = doJSON(t, srv, http.MethodGet, "/status?id=job_1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "completed", ret["status"])
	require.Equal(t, "hello world", ret["text"])
	require.Equal(t, srtBody, ret["srt"])
	require.Equal(t, "greeting", ret["title"])

	// A completed job keeps returning the same terminal snapshot.
	rec, again := doJSON(t, srv, http.MethodGet, "/status?id=job_1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, ret, again)
}
