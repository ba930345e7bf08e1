package transcriber

import "fmt"

// Status is the backend-reported lifecycle state of a transcription job.
// completed and error are terminal; the backend owns the state machine and
// the local value is always a snapshot.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether no further transitions can occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is a snapshot of a transcription job as last reported by the backend.
type Job struct {
	ID          string `json:"id"`
	Status      Status `json:"status"`
	Text        string `json:"text"`
	Captions    string `json:"srt"`
	ErrorDetail string `json:"error,omitempty"`
}

// BackendError is a non-success response from the transcription backend,
// keeping the upstream body for diagnostic passthrough.
type BackendError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s failed: http status %d", e.Op, e.StatusCode)
}
