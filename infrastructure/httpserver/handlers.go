package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
)

type processResponse struct {
	Success         bool   `json:"success"`
	AudioURL        string `json:"audioUrl,omitempty"`
	TranscribedText string `json:"transcribedText,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("failed to parse multipart form: %s", err),
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "no video file in request",
		})
		return
	}
	defer file.Close()

	opts := parseOptions(r)

	result, err := s.processor.ProcessRequest(r.Context(), file, header.Filename, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Success:         true,
		AudioURL:        result.AudioURL,
		TranscribedText: result.TranscribedText,
	})
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	stream, err := s.processor.OpenAudioStream(filename)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", contentTypeFor(filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	for {
		chunk, err := stream.Next()
		if len(chunk) > 0 {
			if _, werr := w.Write(chunk); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			s.log.Error().Err(err).Str("filename", filename).Msg("audio stream aborted")
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseOptions reads the form fields; absent fields keep their defaults
func parseOptions(r *http.Request) media.Options {
	opts := media.DefaultOptions()
	if v := r.FormValue("extractAudio"); v != "" {
		opts.ExtractAudio = strings.EqualFold(v, "true")
	}
	if v := r.FormValue("transcribeText"); v != "" {
		opts.TranscribeText = strings.EqualFold(v, "true")
	}
	if v := r.FormValue("audioFormat"); v != "" {
		opts.AudioFormat = strings.ToLower(v)
	}
	if v := r.FormValue("transcribeLanguage"); v != "" {
		opts.Language = strings.ToLower(v)
	}
	return opts
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusForKind(media.KindOf(err))
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "processing failed", Details: err.Error()})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusForKind(kind media.Kind) int {
	switch kind {
	case media.KindInvalidInput:
		return http.StatusBadRequest
	case media.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func contentTypeFor(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(filename, ".aac"):
		return "audio/aac"
	case strings.HasSuffix(filename, ".ogg"):
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
