package ffmpeg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
)

// codecForFormat maps an output audio container to its ffmpeg encoder
var codecForFormat = map[string]string{
	"mp3": "libmp3lame",
	"wav": "pcm_s16le",
	"aac": "aac",
	"ogg": "libvorbis",
}

// Extractor implements media.AudioExtractor using ffmpeg, with ffprobe
// verifying that the container actually carries an audio stream.
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
	runner      CommandRunner
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

// WithExtractorFFmpegPath sets a custom ffmpeg executable path
func WithExtractorFFmpegPath(path string) ExtractorOption {
	return func(e *Extractor) {
		e.ffmpegPath = path
	}
}

// WithExtractorFFprobePath sets a custom ffprobe executable path
func WithExtractorFFprobePath(path string) ExtractorOption {
	return func(e *Extractor) {
		e.ffprobePath = path
	}
}

// WithExtractorCommandRunner sets a custom command runner (for testing)
func WithExtractorCommandRunner(runner CommandRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// NewExtractor creates a new FFmpeg-based audio extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Extract implements media.AudioExtractor
func (e *Extractor) Extract(ctx context.Context, req *media.AudioExtractionRequest, outputPath string) error {
	hasAudio, err := e.hasAudioStream(ctx, req.SourceVideoPath)
	if err != nil {
		return fmt.Errorf("failed to probe video for audio streams: %w", err)
	}
	if !hasAudio {
		return media.ErrNoAudioTrack
	}

	codec, ok := codecForFormat[req.Format]
	if !ok {
		codec = codecForFormat[media.DefaultAudioFormat]
	}

	args := []string{
		"-i", req.SourceVideoPath,
		"-vn", // No video
		"-acodec", codec,
		"-ab", req.Bitrate,
		"-y", // Overwrite output file if it exists
		outputPath,
	}

	if err := e.runner.Run(ctx, e.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w", err)
	}

	return nil
}

// hasAudioStream asks ffprobe whether the container has at least one audio stream
func (e *Extractor) hasAudioStream(ctx context.Context, videoPath string) (bool, error) {
	out, err := e.runner.Output(ctx, e.ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		videoPath,
	)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// VerifyInstalled checks that ffmpeg is available
func (e *Extractor) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Extractor implements media.AudioExtractor
var _ media.AudioExtractor = (*Extractor)(nil)
