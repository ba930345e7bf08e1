package httpapi

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bruce4585/yt-transcribe/internal/jobs"
	"github.com/bruce4585/yt-transcribe/internal/resolver"
	"github.com/bruce4585/yt-transcribe/internal/transcriber"
)

type audioResolver interface {
	Resolve(ctx context.Context, videoID string) (resolver.Link, error)
}

type transcriptionBackend interface {
	Upload(ctx context.Context, audioURL string) (string, error)
	Submit(ctx context.Context, uploadURL, languageCode string) (string, error)
	Poll(ctx context.Context, jobID string, withCaptions bool) (transcriber.Job, error)
}

type Server struct {
	resolver audioResolver
	backend  transcriptionBackend
	registry *jobs.Registry

	defaultLanguage string
	log             *zap.Logger

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

func WithDefaultLanguage(code string) Option {
	return func(s *Server) {
		s.defaultLanguage = code
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func NewServer(res audioResolver, backend transcriptionBackend, registry *jobs.Registry, opts ...Option) *Server {
	s := &Server{
		resolver:        res,
		backend:         backend,
		registry:        registry,
		defaultLanguage: "zh",
		log:             zap.NewNop(),
		mux:             http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("httpapi")
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.mux)
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/transcribe", s.handleTranscribe)
	s.mux.HandleFunc("/status", s.handleStatus)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
