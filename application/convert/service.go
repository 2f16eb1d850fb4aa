// Package convert turns extracted audio into the canonical recognition
// format: 16 kHz mono normalized WAV produced by the preprocessing chain.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/metrics"
)

// DefaultRetryDelay is the fixed wait between conversion attempts
const DefaultRetryDelay = 2 * time.Second

// Service converts arbitrary audio files to the canonical format
type Service struct {
	loader   audio.Loader
	exporter audio.Exporter
	files    media.FileChecker
	retry    media.RetryPolicy
	log      zerolog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithRetryPolicy overrides the default 3-attempt, 2-second policy
func WithRetryPolicy(p media.RetryPolicy) Option {
	return func(s *Service) {
		s.retry = p
	}
}

// NewService creates a new conversion service
func NewService(loader audio.Loader, exporter audio.Exporter, files media.FileChecker, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		loader:   loader,
		exporter: exporter,
		files:    files,
		retry:    media.FixedDelay(media.DefaultMaxAttempts, DefaultRetryDelay),
		log:      log.With().Str("component", "convert").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanonicalPath derives the canonical output path by replacing the input's
// extension with .wav.
func CanonicalPath(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".wav"
}

// ToCanonical loads inputPath, runs the preprocessing chain, and exports
// the result as a WAV file next to the input. Failures delete any partial
// output and retry; exhaustion yields a typed conversion failure, so a
// caller never sees a usable path alongside an error.
func (s *Service) ToCanonical(ctx context.Context, inputPath string) (string, error) {
	canonicalPath := CanonicalPath(inputPath)

	err := s.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			metrics.StageRetries.WithLabelValues("convert").Inc()
			s.log.Warn().Int("attempt", attempt).Str("input", inputPath).Msg("retrying canonical conversion")
		}
		return s.attempt(ctx, inputPath, canonicalPath)
	})
	if err != nil {
		return "", media.E(media.KindConversionFailed, err)
	}

	s.log.Info().Str("canonical", canonicalPath).Int64("bytes", s.files.Size(canonicalPath)).Msg("canonical conversion complete")
	return canonicalPath, nil
}

func (s *Service) attempt(ctx context.Context, inputPath, canonicalPath string) (err error) {
	defer func() {
		if err != nil {
			_ = os.Remove(canonicalPath)
		}
	}()

	if !s.files.Exists(inputPath) {
		return fmt.Errorf("input audio file does not exist: %s", inputPath)
	}

	clip, err := s.loader.Load(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("failed to load audio: %w", err)
	}
	if clip.Duration() == 0 {
		return fmt.Errorf("audio has zero duration: %s", inputPath)
	}

	clip = audio.Preprocess(clip)

	if err := s.exporter.Export(clip, canonicalPath); err != nil {
		return fmt.Errorf("failed to export canonical audio: %w", err)
	}
	if !s.files.Exists(canonicalPath) {
		return fmt.Errorf("canonical file was not created: %s", canonicalPath)
	}
	if s.files.Size(canonicalPath) == 0 {
		return fmt.Errorf("canonical file is empty: %s", canonicalPath)
	}
	return nil
}
