// Package extract coordinates audio extraction from uploaded videos:
// precondition checks, the ffmpeg-backed extraction itself, postcondition
// verification, and the retry loop around all three.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/metrics"
)

// DefaultRetryDelay is the fixed wait between extraction attempts
const DefaultRetryDelay = 2 * time.Second

// Service coordinates audio extraction operations
type Service struct {
	extractor media.AudioExtractor
	prober    media.VideoProber
	files     media.FileChecker
	retry     media.RetryPolicy
	bitrate   string
	log       zerolog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithRetryPolicy overrides the default 3-attempt, 2-second policy
func WithRetryPolicy(p media.RetryPolicy) Option {
	return func(s *Service) {
		s.retry = p
	}
}

// NewService creates a new extraction service
func NewService(extractor media.AudioExtractor, prober media.VideoProber, files media.FileChecker, bitrate string, log zerolog.Logger, opts ...Option) *Service {
	if bitrate == "" {
		bitrate = media.DefaultAudioBitrate
	}
	s := &Service{
		extractor: extractor,
		prober:    prober,
		files:     files,
		retry:     media.FixedDelay(media.DefaultMaxAttempts, DefaultRetryDelay),
		bitrate:   bitrate,
		log:       log.With().Str("component", "extract").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract isolates the audio track of videoPath into audioPath in the
// requested format. Every failure deletes any partial output before the
// next attempt; exhausting the attempt budget yields a typed extraction
// failure carrying the last attempt's error.
func (s *Service) Extract(ctx context.Context, videoPath, audioPath, format string) error {
	s.preflight(ctx, videoPath)

	err := s.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			metrics.StageRetries.WithLabelValues("extract").Inc()
			s.log.Warn().Int("attempt", attempt).Str("video", videoPath).Msg("retrying audio extraction")
		}
		return s.attempt(ctx, videoPath, audioPath, format)
	})
	if err != nil {
		return media.E(media.KindExtractionFailed, err)
	}

	s.log.Info().Str("audio", audioPath).Int64("bytes", s.files.Size(audioPath)).Msg("audio extraction complete")
	return nil
}

func (s *Service) attempt(ctx context.Context, videoPath, audioPath, format string) (err error) {
	defer func() {
		if err != nil {
			// Partial output must not leak into the next attempt.
			_ = os.Remove(audioPath)
		}
	}()

	if !s.files.Exists(videoPath) {
		return fmt.Errorf("video file does not exist: %s", videoPath)
	}
	if s.files.Size(videoPath) == 0 {
		return fmt.Errorf("video file is empty: %s", videoPath)
	}

	req, err := media.NewAudioExtractionRequest(videoPath, format, s.bitrate)
	if err != nil {
		return err
	}
	if err := s.extractor.Extract(ctx, req, audioPath); err != nil {
		return err
	}

	if !s.files.Exists(audioPath) {
		return fmt.Errorf("audio file was not created: %s", audioPath)
	}
	if s.files.Size(audioPath) == 0 {
		return fmt.Errorf("extracted audio file is empty: %s", audioPath)
	}
	return nil
}

// preflight runs the optional decode probe. Diagnostic only: extraction
// proceeds regardless, and builds without decode support skip it silently.
func (s *Service) preflight(ctx context.Context, videoPath string) {
	report, err := s.prober.Probe(ctx, videoPath)
	if errors.Is(err, media.ErrProbeUnavailable) {
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("video", videoPath).Msg("video probe failed")
		return
	}
	s.log.Debug().
		Int("frames", report.FrameCount).
		Float64("fps", report.FPS).
		Dur("duration", report.Duration).
		Msg("video probe")
}
