package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bruce4585/yt-transcribe/internal/config"
	"github.com/bruce4585/yt-transcribe/internal/jobs"
	"github.com/bruce4585/yt-transcribe/internal/resolver"
	"github.com/bruce4585/yt-transcribe/internal/transcriber"
	"github.com/bruce4585/yt-transcribe/internal/youtube"
)

type transcribeRequest struct {
	URL      string `json:"url"`
	Language string `json:"language,omitempty"`
}

type transcribeResponse struct {
	ID       string `json:"id"`
	VideoID  string `json:"video_id"`
	Title    string `json:"title,omitempty"`
	Language string `json:"language"`
}

type statusResponse struct {
	Status transcriber.Status `json:"status"`
	Text   string             `json:"text"`
	SRT    string             `json:"srt"`
	Error  string             `json:"error"`

	VideoID  string `json:"video_id,omitempty"`
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.resolver == nil || s.backend == nil {
		writeError(w, http.StatusInternalServerError, "server is not configured")
		return
	}

	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	videoID, ok := youtube.ExtractVideoID(req.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid youtube url")
		return
	}

	lang := req.Language
	if lang == "" {
		lang = s.defaultLanguage
	}
	lang, err := config.NormalizeLanguage(lang)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	log := s.log.With(zap.String("video_id", videoID), zap.String("request_id", requestIDFrom(ctx)))

	link, err := s.resolver.Resolve(ctx, videoID)
	if err != nil {
		log.Warn("audio resolution failed", zap.Error(err))
		writeUpstreamError(w, "no audio link returned by providers", err)
		return
	}

	if lang == config.LanguageAuto {
		lang = config.DetectLanguage(link.Title, s.defaultLanguage)
		log.Info("language auto-detected", zap.String("language", lang), zap.String("title", link.Title))
	}

	uploadURL, err := s.backend.Upload(ctx, link.URL)
	if err != nil {
		log.Warn("audio relay failed", zap.Error(err))
		writeUpstreamError(w, "audio relay to transcription backend failed", err)
		return
	}

	jobID, err := s.backend.Submit(ctx, uploadURL, lang)
	if err != nil {
		log.Warn("job creation failed", zap.Error(err))
		writeUpstreamError(w, "transcription job creation failed", err)
		return
	}

	s.registry.Put(jobs.Record{
		JobID:     jobID,
		RequestID: requestIDFrom(ctx),
		VideoID:   videoID,
		Title:     link.Title,
		Language:  lang,
	})
	log.Info("transcription submitted", zap.String("job_id", jobID), zap.String("provider", link.Provider))

	writeJSON(w, http.StatusOK, transcribeResponse{
		ID:       jobID,
		VideoID:  videoID,
		Title:    link.Title,
		Language: lang,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.backend == nil {
		writeError(w, http.StatusInternalServerError, "server is not configured")
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	job, err := s.backend.Poll(r.Context(), jobID, true)
	if err != nil {
		s.log.Warn("status query failed", zap.String("job_id", jobID), zap.Error(err))
		writeUpstreamError(w, "transcription status query failed", err)
		return
	}

	ret := statusResponse{
		Status: job.Status,
		Text:   job.Text,
		SRT:    job.Captions,
		Error:  job.ErrorDetail,
	}
	if rec, ok := s.registry.Get(jobID); ok {
		ret.VideoID = rec.VideoID
		ret.Title = rec.Title
		ret.Language = rec.Language
	}
	writeJSON(w, http.StatusOK, ret)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// writeUpstreamError maps any upstream failure to a 502 whose detail field
// carries whatever the upstream said, so callers can see why.
func writeUpstreamError(w http.ResponseWriter, msg string, err error) {
	detail := err.Error()

	var noLink *resolver.NoLinkError
	var backendErr *transcriber.BackendError
	switch {
	case errors.As(err, &noLink) && noLink.Detail != "":
		detail = noLink.Detail
	case errors.As(err, &backendErr) && backendErr.Detail != "":
		detail = backendErr.Detail
	}

	writeJSON(w, http.StatusBadGateway, map[string]any{
		"error":  msg,
		"detail": detail,
	})
}
