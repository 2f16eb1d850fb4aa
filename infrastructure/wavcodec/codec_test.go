package wavcodec

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	domaudio "github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
)

func sampleClip() domaudio.Clip {
	samples := make([]int, 1600)
	for i := range samples {
		samples[i] = (i%200 - 100) * 50
	}
	return domaudio.Clip{SampleRate: 16000, Channels: 1, BitDepth: 16, Samples: samples}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	original := sampleClip()

	if err := WriteFile(original, path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	decoded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if decoded.SampleRate != original.SampleRate {
		t.Errorf("sample rate: expected %d, got %d", original.SampleRate, decoded.SampleRate)
	}
	if decoded.Channels != original.Channels {
		t.Errorf("channels: expected %d, got %d", original.Channels, decoded.Channels)
	}
	if decoded.Frames() != original.Frames() {
		t.Fatalf("frames: expected %d, got %d", original.Frames(), decoded.Frames())
	}
	for i := range original.Samples {
		if decoded.Samples[i] != original.Samples[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, original.Samples[i], decoded.Samples[i])
		}
	}
}

func TestLoaderAndExporterPorts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")

	if err := NewExporter().Export(sampleClip(), path); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	clip, err := NewLoader().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if clip.Empty() {
		t.Error("expected non-empty clip")
	}
}

func TestReadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadFile(path); err == nil {
		t.Fatal("expected an error for invalid wav data")
	}
}

func TestFrameStreamReadsAllFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	original := sampleClip()
	if err := WriteFile(original, path); err != nil {
		t.Fatal(err)
	}

	stream, err := OpenFrames(path)
	if err != nil {
		t.Fatal(err)
	}
	defer stream.Close()

	if got := stream.SampleRate(); got != 16000 {
		t.Errorf("expected rate 16000, got %d", got)
	}

	var samples []int
	for {
		data, err := stream.ReadFrames(500)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 0; i+1 < len(data); i += 2 {
			samples = append(samples, int(int16(binary.LittleEndian.Uint16(data[i:]))))
		}
	}

	if len(samples) != len(original.Samples) {
		t.Fatalf("expected %d samples, got %d", len(original.Samples), len(samples))
	}
	for i := range samples {
		if samples[i] != original.Samples[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, original.Samples[i], samples[i])
		}
	}
}

func TestOpenFramesMissingFile(t *testing.T) {
	if _, err := OpenFrames(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected an error")
	}
}
