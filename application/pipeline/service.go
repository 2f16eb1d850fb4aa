// Package pipeline orchestrates one request end to end: persist the upload,
// extract audio, convert and recognize when asked to, and guarantee that no
// temporary artifact outlives the job except the retained output audio file.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/application/transcribe"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/filesystem"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/metrics"
)

// AudioURLPrefix is where retained output audio files are served from
const AudioURLPrefix = "/api/audio/"

// DefaultSaveDelay is the wait between upload save attempts
const DefaultSaveDelay = time.Second

// Extractor runs the audio extraction stage
type Extractor interface {
	Extract(ctx context.Context, videoPath, audioPath, format string) error
}

// Converter runs the canonical conversion stage
type Converter interface {
	ToCanonical(ctx context.Context, inputPath string) (string, error)
}

// Recognizer runs the segmented recognition stage
type Recognizer interface {
	Recognize(ctx context.Context, canonicalPath, language string) (transcribe.Transcript, error)
}

// Saver persists uploads and removes request-scoped artifacts
type Saver interface {
	Save(r io.Reader, path string) error
	Remove(path string) error
}

// Result is the response payload for a processed request
type Result struct {
	AudioURL        string
	TranscribedText string
}

// Service sequences the pipeline stages for one request at a time
type Service struct {
	saver      Saver
	files      media.FileChecker
	extract    Extractor
	convert    Converter
	recognize  Recognizer
	workDir    string
	savePolicy media.RetryPolicy
	log        zerolog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithSavePolicy overrides the default 3-attempt, 1-second save policy
func WithSavePolicy(p media.RetryPolicy) Option {
	return func(s *Service) {
		s.savePolicy = p
	}
}

// NewService creates the pipeline orchestrator. workDir is the process-wide
// directory holding request-scoped temporary files and retained outputs;
// it is injected here rather than read from ambient state.
func NewService(saver Saver, files media.FileChecker, extract Extractor, convert Converter, recognize Recognizer, workDir string, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		saver:      saver,
		files:      files,
		extract:    extract,
		convert:    convert,
		recognize:  recognize,
		workDir:    workDir,
		savePolicy: media.FixedDelay(media.DefaultMaxAttempts, DefaultSaveDelay),
		log:        log.With().Str("component", "pipeline").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessRequest runs the full pipeline for one uploaded video. Extraction
// failure is fatal to the request; transcription failure is downgraded to
// an explanatory transcript so it never masks a successful extraction. The
// uploaded video and the canonical intermediate are removed on every path.
func (s *Service) ProcessRequest(ctx context.Context, upload io.Reader, filename string, opts media.Options) (*Result, error) {
	job, err := media.NewJob(s.workDir, filename, opts)
	if err != nil {
		return nil, media.E(media.KindInvalidInput, err)
	}
	log := s.log.With().Str("job", job.ID).Logger()
	started := time.Now()

	if err := s.saveUpload(ctx, upload, job.VideoPath); err != nil {
		job.Status = media.StatusFailed
		metrics.JobsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	// The original upload never survives the request.
	defer func() { _ = s.saver.Remove(job.VideoPath) }()

	result := &Result{}
	if job.Options.ExtractAudio {
		job.Status = media.StatusExtracting
		extractStart := time.Now()
		err := s.extract.Extract(ctx, job.VideoPath, job.AudioPath, job.Options.AudioFormat)
		metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())
		if err != nil {
			job.Status = media.StatusFailed
			metrics.JobsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		result.AudioURL = AudioURLPrefix + filepath.Base(job.AudioPath)

		if job.Options.TranscribeText {
			result.TranscribedText = s.transcribeStage(ctx, job, log)
		}
	}

	job.Status = media.StatusCompleted
	metrics.JobsTotal.WithLabelValues("completed").Inc()
	log.Info().
		Dur("elapsed", time.Since(started)).
		Str("audio_url", result.AudioURL).
		Msg("request processed")
	return result, nil
}

// transcribeStage runs conversion and recognition. Its failures are caught
// here and turned into an explanatory transcript: the request as a whole
// still succeeds on the strength of the extraction.
func (s *Service) transcribeStage(ctx context.Context, job *media.Job, log zerolog.Logger) string {
	job.Status = media.StatusConverting
	convertStart := time.Now()
	canonicalPath, err := s.convert.ToCanonical(ctx, job.AudioPath)
	metrics.StageDuration.WithLabelValues("convert").Observe(time.Since(convertStart).Seconds())
	if err != nil {
		log.Error().Err(err).Msg("canonical conversion failed")
		return fmt.Sprintf("transcription failed: %s", err)
	}
	job.CanonicalPath = canonicalPath
	// The canonical intermediate never survives the request.
	defer func() { _ = s.saver.Remove(canonicalPath) }()

	job.Status = media.StatusRecognizing
	recognizeStart := time.Now()
	transcript, err := s.recognize.Recognize(ctx, canonicalPath, job.Options.Language)
	metrics.StageDuration.WithLabelValues("recognize").Observe(time.Since(recognizeStart).Seconds())
	if err != nil {
		log.Error().Err(err).Msg("recognition failed")
		return fmt.Sprintf("transcription failed: %s", err)
	}
	return transcript.Text
}

// saveUpload persists the upload with retries on write failure, then treats
// an empty result as invalid input rather than something worth retrying.
func (s *Service) saveUpload(ctx context.Context, upload io.Reader, path string) error {
	err := s.savePolicy.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			metrics.StageRetries.WithLabelValues("save").Inc()
			s.log.Warn().Int("attempt", attempt).Str("path", path).Msg("retrying upload save")
		}
		return s.saver.Save(upload, path)
	})
	if err != nil {
		return media.E(media.KindSaveFailed, err)
	}

	if s.files.Size(path) == 0 {
		_ = s.saver.Remove(path)
		return media.Errorf(media.KindInvalidInput, "uploaded video file is empty")
	}
	return nil
}

// OpenAudioStream opens a retained output audio file for chunked delivery.
// Absence is a terminal not-found, never retried.
func (s *Service) OpenAudioStream(filename string) (*filesystem.ChunkReader, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return nil, media.Errorf(media.KindInvalidInput, "invalid audio filename %q", filename)
	}

	path := filepath.Join(s.workDir, filename)
	if !s.files.Exists(path) {
		return nil, media.Errorf(media.KindNotFound, "audio file not found: %s", filename)
	}
	return filesystem.OpenChunkReader(path)
}
