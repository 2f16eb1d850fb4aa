// Package transcribe implements segmented speech recognition: canonical
// audio is validated, split into fixed-length windows, recognized window by
// window with a fresh recognizer each, and the partial transcripts merged
// into one text.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/speech"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/metrics"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/wavcodec"
)

const (
	// SegmentDuration is the window length long audio is split into
	SegmentDuration = 30 * time.Second

	// FrameReadSize is how many frames each recognizer read consumes
	FrameReadSize = 4000

	// MinCanonicalBytes is the smallest canonical file considered readable
	MinCanonicalBytes = 1024

	// DefaultValidateDelay is the wait between canonical-file validation checks
	DefaultValidateDelay = 2 * time.Second

	// DefaultBackoffUnit scales the linear backoff between recognition attempts
	DefaultBackoffUnit = time.Second
)

// Fixed sentinel texts returned in place of a transcript for terminal
// conditions. Callers branch on the Transcript outcome, never on these
// strings; the strings exist for the human reading the response.
const (
	SentinelModelMissing = "please download the speech model for this language first"
	SentinelNoSpeech     = "no speech could be recognized"
	SentinelMaxRetries   = "speech recognition failed: retry limit reached"
)

// Outcome classifies how a transcript was produced
type Outcome string

const (
	OutcomeRecognized   Outcome = "recognized"
	OutcomeNoSpeech     Outcome = "no_speech"
	OutcomeModelMissing Outcome = "model_missing"
	OutcomeMaxRetries   Outcome = "max_retries"
)

// Transcript is the recognizer's terminal result: the text handed to the
// client plus a machine-checkable outcome.
type Transcript struct {
	Text    string
	Outcome Outcome
}

// FrameSource yields fixed-size frame reads from a segment file
type FrameSource interface {
	SampleRate() int
	ReadFrames(n int) ([]byte, error)
	Close() error
}

// FrameOpener opens a segment file for framed reading
type FrameOpener func(path string) (FrameSource, error)

// Service runs segmented recognition over canonical audio
type Service struct {
	engine     speech.Engine
	loader     audio.Loader
	exporter   audio.Exporter
	files      media.FileChecker
	openFrames FrameOpener
	retry      media.RetryPolicy
	validate   media.RetryPolicy
	log        zerolog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithRetryPolicy overrides the outer linear-backoff policy
func WithRetryPolicy(p media.RetryPolicy) Option {
	return func(s *Service) {
		s.retry = p
	}
}

// WithValidatePolicy overrides the canonical-file validation policy
func WithValidatePolicy(p media.RetryPolicy) Option {
	return func(s *Service) {
		s.validate = p
	}
}

// WithFrameOpener overrides how segment files are opened (for testing)
func WithFrameOpener(open FrameOpener) Option {
	return func(s *Service) {
		s.openFrames = open
	}
}

// NewService creates a new recognition service
func NewService(engine speech.Engine, loader audio.Loader, exporter audio.Exporter, files media.FileChecker, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		loader:   loader,
		exporter: exporter,
		files:    files,
		openFrames: func(path string) (FrameSource, error) {
			return wavcodec.OpenFrames(path)
		},
		retry:    media.LinearBackoff(media.DefaultMaxAttempts, DefaultBackoffUnit),
		validate: media.FixedDelay(media.DefaultMaxAttempts, DefaultValidateDelay),
		log:      log.With().Str("component", "transcribe").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recognize transcribes the canonical audio at canonicalPath in the given
// language. A missing model short-circuits to its sentinel without
// consuming any retry attempt. Attempt failures back off linearly; the
// final attempt's failure is returned as a typed recognition error.
func (s *Service) Recognize(ctx context.Context, canonicalPath, language string) (Transcript, error) {
	model, err := s.engine.LoadModel(language)
	if errors.Is(err, speech.ErrModelNotInstalled) {
		s.log.Warn().Str("language", language).Msg("speech model not installed")
		return Transcript{Text: SentinelModelMissing, Outcome: OutcomeModelMissing}, nil
	}
	if err != nil {
		return Transcript{}, media.E(media.KindRecognitionFailed, err)
	}
	defer model.Close()

	var result Transcript
	err = s.retry.Do(ctx, func(attempt int) error {
		if attempt > 1 {
			metrics.StageRetries.WithLabelValues("recognize").Inc()
			s.log.Warn().Int("attempt", attempt).Str("canonical", canonicalPath).Msg("retrying recognition")
		}
		t, attemptErr := s.attempt(ctx, model, canonicalPath)
		if attemptErr != nil {
			return attemptErr
		}
		result = t
		return nil
	})
	if err != nil {
		return Transcript{}, media.E(media.KindRecognitionFailed, err)
	}
	if result.Text == "" {
		// Attempt budget spent without either text or a raised failure.
		return Transcript{Text: SentinelMaxRetries, Outcome: OutcomeMaxRetries}, nil
	}
	return result, nil
}

// attempt runs one full segmentation + recognition pass
func (s *Service) attempt(ctx context.Context, model speech.Model, canonicalPath string) (Transcript, error) {
	if err := s.validateCanonical(ctx, canonicalPath); err != nil {
		return Transcript{}, err
	}

	clip, err := s.loader.Load(ctx, canonicalPath)
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to load canonical audio: %w", err)
	}

	windows := segmentCount(clip.Duration())
	var fragments []string
	for i := 0; i < windows; i++ {
		start := time.Duration(i) * SegmentDuration
		window := clip.Slice(start, start+SegmentDuration)
		segPath := fmt.Sprintf("%s.segment_%d.wav", canonicalPath, i)

		segFragments, segErr := s.recognizeWindow(model, window, segPath)
		if segErr != nil {
			return Transcript{}, fmt.Errorf("window %d: %w", i, segErr)
		}
		fragments = append(fragments, segFragments...)
	}

	if len(fragments) == 0 {
		return Transcript{Text: SentinelNoSpeech, Outcome: OutcomeNoSpeech}, nil
	}
	s.log.Info().Int("windows", windows).Int("fragments", len(fragments)).Msg("recognition complete")
	return Transcript{Text: strings.Join(fragments, " "), Outcome: OutcomeRecognized}, nil
}

// recognizeWindow persists one window to its own temp file, feeds it to a
// fresh recognizer, and deletes the file no matter how recognition ends.
func (s *Service) recognizeWindow(model speech.Model, window audio.Clip, segPath string) ([]string, error) {
	if err := s.exporter.Export(window, segPath); err != nil {
		return nil, fmt.Errorf("failed to persist segment: %w", err)
	}
	defer os.Remove(segPath)

	frames, err := s.openFrames(segPath)
	if err != nil {
		return nil, err
	}
	defer frames.Close()

	rec, err := model.NewRecognizer(frames.SampleRate())
	if err != nil {
		return nil, err
	}
	defer rec.Close()

	var fragments []string
	for {
		data, readErr := frames.ReadFrames(FrameReadSize)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read segment frames: %w", readErr)
		}

		fragment, accepted, recErr := rec.AcceptWaveform(data)
		if recErr != nil {
			return nil, recErr
		}
		if accepted && strings.TrimSpace(fragment) != "" {
			fragments = append(fragments, fragment)
		}
	}

	final, err := rec.FinalResult()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(final) != "" {
		fragments = append(fragments, final)
	}
	return fragments, nil
}

// validateCanonical waits for the canonical file to be readable and larger
// than the minimum threshold, re-checking a few times as if the file did
// not exist yet.
func (s *Service) validateCanonical(ctx context.Context, path string) error {
	return s.validate.Do(ctx, func(int) error {
		if !s.files.Exists(path) {
			return fmt.Errorf("canonical audio file does not exist: %s", path)
		}
		if s.files.Size(path) <= MinCanonicalBytes {
			return fmt.Errorf("canonical audio file too small: %s", path)
		}
		return nil
	})
}

// segmentCount returns how many fixed-length windows cover d
func segmentCount(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	n := int(d / SegmentDuration)
	if d%SegmentDuration != 0 {
		n++
	}
	return n
}
