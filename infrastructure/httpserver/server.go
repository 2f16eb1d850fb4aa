// Package httpserver exposes the pipeline over HTTP: multipart upload in,
// JSON result out, and chunk-streamed delivery of retained audio files.
package httpserver

import (
	"context"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/pipeline"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/filesystem"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/metrics"
)

// Processor is the slice of the pipeline the HTTP layer drives
type Processor interface {
	ProcessRequest(ctx context.Context, upload io.Reader, filename string, opts media.Options) (*pipeline.Result, error)
	OpenAudioStream(filename string) (*filesystem.ChunkReader, error)
}

// Server wires the HTTP routes to the pipeline
type Server struct {
	processor Processor
	maxUpload int64
	log       zerolog.Logger
}

// Option is a functional option for configuring Server
type Option func(*Server)

// WithMaxUploadBytes overrides the default 50MB upload cap
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// NewServer creates an HTTP server around the given processor
func NewServer(processor Processor, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		processor: processor,
		maxUpload: 50 * 1024 * 1024,
		log:       log.With().Str("component", "http").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route tree with the middleware stack applied
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(s.recoverer)
	r.Use(corsHeaders)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Post("/api/process", s.handleProcess)
	r.Get("/api/audio/{filename}", s.handleAudio)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

// requestLogger emits one structured line per request
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// recoverer is the outermost boundary: an uncaught panic becomes a JSON 500
// with diagnostic detail and the process keeps serving.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("request handler panicked")
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error:   "internal server error",
					Details: string(debug.Stack()),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsHeaders applies the permissive CORS policy the browser client expects
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept")
		h.Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
