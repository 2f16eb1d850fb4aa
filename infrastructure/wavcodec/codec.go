// Package wavcodec adapts the go-audio WAV codec to the domain audio ports.
package wavcodec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	domaudio "github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
)

// ReadFile decodes a WAV file into a Clip
func ReadFile(path string) (domaudio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return domaudio.Clip{}, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return domaudio.Clip{}, fmt.Errorf("not a valid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return domaudio.Clip{}, fmt.Errorf("failed to decode wav data: %w", err)
	}

	return domaudio.Clip{
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		BitDepth:   int(dec.BitDepth),
		Samples:    buf.Data,
	}, nil
}

// WriteFile encodes a Clip to a PCM WAV file
func WriteFile(clip domaudio.Clip, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}
	defer f.Close()

	bitDepth := clip.BitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	enc := wav.NewEncoder(f, clip.SampleRate, bitDepth, clip.Channels, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: clip.Channels,
			SampleRate:  clip.SampleRate,
		},
		Data:           clip.Samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("failed to encode wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return nil
}

// Loader implements audio.Loader for WAV input
type Loader struct{}

// NewLoader creates a WAV loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load implements audio.Loader
func (l *Loader) Load(_ context.Context, path string) (domaudio.Clip, error) {
	return ReadFile(path)
}

// Exporter implements audio.Exporter producing PCM WAV files
type Exporter struct{}

// NewExporter creates a WAV exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export implements audio.Exporter
func (e *Exporter) Export(clip domaudio.Clip, path string) error {
	return WriteFile(clip, path)
}

var (
	_ domaudio.Loader   = (*Loader)(nil)
	_ domaudio.Exporter = (*Exporter)(nil)
)
