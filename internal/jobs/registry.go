// Package jobs keeps a bounded in-memory record of transcription jobs this
// process has submitted. The backend owns job state; the registry only
// remembers request metadata (video, title, language) so status responses
// can be enriched, and is swept on a schedule to stay memory-bounded.
package jobs

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Record is the locally known metadata for one submitted job.
type Record struct {
	JobID     string    `json:"job_id"`
	RequestID string    `json:"request_id"`
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title,omitempty"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

type Registry struct {
	mu      sync.RWMutex
	records map[string]Record
	log     *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		records: make(map[string]Record),
		log:     log.Named("jobs"),
	}
}

// Put stores or replaces the record for rec.JobID.
func (r *Registry) Put(rec Record) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.mu.Lock()
	r.records[rec.JobID] = rec
	r.mu.Unlock()
}

// Get returns a copy of the record for jobID, if this process submitted it.
func (r *Registry) Get(jobID string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[jobID]
	return rec, ok
}

// List returns copies of all known records.
func (r *Registry) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ret := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		ret = append(ret, rec)
	}
	return ret
}

// Sweep drops records older than maxAge and returns how many were removed.
func (r *Registry) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	removed := 0
	for id, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(r.records, id)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 {
		r.log.Info("swept job records", zap.Int("removed", removed))
	}
	return removed
}

// Len returns the number of tracked records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
