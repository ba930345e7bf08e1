// Package transcriber wraps the speech-to-text backend's HTTP API: relaying
// audio bytes into its upload endpoint, creating transcription jobs, and
// polling job status.
package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bruce4585/yt-transcribe/internal/config"
)

// Some audio hosts reject Go's default client outright, so the relay
// presents a browser user-agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123 Safari/537.36"

const maxErrorBodyBytes = 2048

// Client talks to the transcription backend. Thread-safe for concurrent use.
type Client struct {
	apiKey           string
	baseURL          string
	relayMaxAttempts int
	relayDelay       time.Duration

	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a backend client from the backend section of the
// configuration.
func NewClient(cfg config.BackendConfig, log *zap.Logger) *Client {
	return &Client{
		apiKey:           cfg.APIKey,
		baseURL:          cfg.BaseURL,
		relayMaxAttempts: cfg.RelayMaxAttempts,
		relayDelay:       cfg.RelayDelay,
		httpClient: &http.Client{
			// Relays move tens of MB of audio; status polls are small.
			Timeout: 5 * time.Minute,
		},
		log: log.Named("transcriber"),
	}
}

// Upload fetches the audio at audioURL and streams it into the backend's
// upload endpoint, returning the backend's upload reference. The whole
// fetch-and-forward is retried on any failure, since resolved audio links
// can expire mid-transfer.
func (c *Client) Upload(ctx context.Context, audioURL string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.relayMaxAttempts; attempt++ {
		uploadURL, err := c.relayOnce(ctx, audioURL)
		if err == nil {
			return uploadURL, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.log.Warn("audio relay failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < c.relayMaxAttempts {
			select {
			case <-time.After(c.relayDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("audio relay failed after %d attempts: %w", c.relayMaxAttempts, lastErr)
}

func (c *Client) relayOnce(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("build audio request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{Op: "audio fetch", StatusCode: resp.StatusCode, Detail: readErrorBody(resp.Body)}
	}

	upload, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", resp.Body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	upload.Header.Set("Authorization", c.apiKey)
	upload.Header.Set("Content-Type", "application/octet-stream")
	if resp.ContentLength > 0 {
		upload.ContentLength = resp.ContentLength
	}

	uploadResp, err := c.httpClient.Do(upload)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	defer uploadResp.Body.Close()

	if uploadResp.StatusCode < 200 || uploadResp.StatusCode >= 300 {
		return "", &BackendError{Op: "upload", StatusCode: uploadResp.StatusCode, Detail: readErrorBody(uploadResp.Body)}
	}

	var ret struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(uploadResp.Body).Decode(&ret); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if ret.UploadURL == "" {
		return "", fmt.Errorf("upload response missing upload_url")
	}
	return ret.UploadURL, nil
}

// Submit creates one transcription job for an uploaded audio reference.
// Deliberately not retried: duplicate jobs are wasteful and failures here
// mean misconfiguration, not transient conditions.
func (c *Client) Submit(ctx context.Context, uploadURL, languageCode string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"audio_url":     uploadURL,
		"language_code": languageCode,
		"punctuate":     true,
		"format_text":   true,
	})
	if err != nil {
		return "", fmt.Errorf("encode job request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build job request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{Op: "job create", StatusCode: resp.StatusCode, Detail: readErrorBody(resp.Body)}
	}

	var ret struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
		return "", fmt.Errorf("decode job response: %w", err)
	}
	if ret.ID == "" {
		return "", fmt.Errorf("job response missing id")
	}

	c.log.Info("transcription job created", zap.String("job_id", ret.ID), zap.String("language", languageCode))
	return ret.ID, nil
}

// Poll queries the current state of a job once. When the job has completed
// and withCaptions is set, the SRT export is fetched as well; a caption
// fetch failure degrades to empty captions rather than failing the poll.
func (c *Client) Poll(ctx context.Context, jobID string, withCaptions bool) (Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID, nil)
	if err != nil {
		return Job{}, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Job{}, fmt.Errorf("query status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Job{}, &BackendError{Op: "status", StatusCode: resp.StatusCode, Detail: readErrorBody(resp.Body)}
	}

	var ret struct {
		ID     string `json:"id"`
		Status Status `json:"status"`
		Text   string `json:"text"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ret); err != nil {
		return Job{}, fmt.Errorf("decode status response: %w", err)
	}

	job := Job{
		ID:          jobID,
		Status:      ret.Status,
		Text:        ret.Text,
		ErrorDetail: ret.Error,
	}
	if job.Status == StatusCompleted && withCaptions {
		srt, err := c.fetchCaptions(ctx, jobID)
		if err != nil {
			c.log.Warn("caption fetch failed", zap.String("job_id", jobID), zap.Error(err))
		}
		job.Captions = srt
	}
	return job, nil
}

func (c *Client) fetchCaptions(ctx context.Context, jobID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+jobID+"/srt", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{Op: "captions", StatusCode: resp.StatusCode, Detail: readErrorBody(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return string(body)
}
