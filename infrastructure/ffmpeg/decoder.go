package ffmpeg

import (
	"context"
	"fmt"
	"os"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/wavcodec"
)

// Decoder implements audio.Loader for arbitrary input formats by decoding
// through ffmpeg to an intermediate PCM WAV, then parsing that. The
// intermediate file lives next to nothing: it is created in the temp dir
// and removed before Load returns.
type Decoder struct {
	ffmpegPath string
	runner     CommandRunner
}

// DecoderOption is a functional option for configuring Decoder
type DecoderOption func(*Decoder)

// WithDecoderFFmpegPath sets a custom ffmpeg executable path
func WithDecoderFFmpegPath(path string) DecoderOption {
	return func(d *Decoder) {
		d.ffmpegPath = path
	}
}

// WithDecoderCommandRunner sets a custom command runner (for testing)
func WithDecoderCommandRunner(runner CommandRunner) DecoderOption {
	return func(d *Decoder) {
		d.runner = runner
	}
}

// NewDecoder creates a new FFmpeg-based audio loader
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Load implements audio.Loader
func (d *Decoder) Load(ctx context.Context, path string) (audio.Clip, error) {
	tmp, err := os.CreateTemp("", "decode-*.wav")
	if err != nil {
		return audio.Clip{}, fmt.Errorf("failed to create intermediate file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	args := []string{
		"-i", path,
		"-acodec", "pcm_s16le",
		"-f", "wav",
		"-y",
		tmpPath,
	}
	if err := d.runner.Run(ctx, d.ffmpegPath, args...); err != nil {
		return audio.Clip{}, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	return wavcodec.ReadFile(tmpPath)
}

// Ensure Decoder implements audio.Loader
var _ audio.Loader = (*Decoder)(nil)
