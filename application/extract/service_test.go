package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
)

// mockExtractor records calls and fails a configurable number of times
type mockExtractor struct {
	calls     int
	failTimes int
	failWith  error
	onSuccess func(outputPath string)
	lastReq   *media.AudioExtractionRequest
}

func (m *mockExtractor) Extract(ctx context.Context, req *media.AudioExtractionRequest, outputPath string) error {
	m.calls++
	m.lastReq = req
	if m.calls <= m.failTimes {
		if m.failWith != nil {
			return m.failWith
		}
		return errors.New("ffmpeg exited with status 1")
	}
	if m.onSuccess != nil {
		m.onSuccess(outputPath)
	}
	return nil
}

// mockFileChecker reports existence and size from an in-memory map
type mockFileChecker struct {
	sizes map[string]int64
}

func (m *mockFileChecker) Exists(path string) bool {
	_, ok := m.sizes[path]
	return ok
}

func (m *mockFileChecker) Size(path string) int64 {
	return m.sizes[path]
}

// mockProber returns a canned report or error
type mockProber struct {
	err error
}

func (m *mockProber) Probe(ctx context.Context, videoPath string) (media.ProbeReport, error) {
	if m.err != nil {
		return media.ProbeReport{}, m.err
	}
	return media.ProbeReport{FrameCount: 100, FPS: 25, Duration: 4}, nil
}

func newTestService(extractor *mockExtractor, files *mockFileChecker) *Service {
	return NewService(
		extractor,
		&mockProber{err: media.ErrProbeUnavailable},
		files,
		"192k",
		zerolog.Nop(),
		WithRetryPolicy(media.FixedDelay(3, 0)),
	)
}

func TestExtractSucceeds(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{"/work/in.mp4": 1000}}
	extractor := &mockExtractor{
		onSuccess: func(outputPath string) { files.sizes[outputPath] = 500 },
	}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/in.mp4", "/work/out.mp3", "mp3")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.calls != 1 {
		t.Errorf("expected 1 extraction call, got %d", extractor.calls)
	}
	if extractor.lastReq.Bitrate != "192k" {
		t.Errorf("expected bitrate 192k, got %s", extractor.lastReq.Bitrate)
	}
}

func TestExtractRetriesThenSucceeds(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{"/work/in.mp4": 1000}}
	extractor := &mockExtractor{
		failTimes: 2,
		onSuccess: func(outputPath string) { files.sizes[outputPath] = 500 },
	}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/in.mp4", "/work/out.mp3", "mp3")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extractor.calls != 3 {
		t.Errorf("expected 3 extraction calls, got %d", extractor.calls)
	}
}

func TestExtractExhaustsAttempts(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{"/work/in.mp4": 1000}}
	extractor := &mockExtractor{failTimes: 10}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/in.mp4", "/work/out.mp3", "mp3")

	if err == nil {
		t.Fatal("expected an error")
	}
	if extractor.calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", extractor.calls)
	}
	if media.KindOf(err) != media.KindExtractionFailed {
		t.Errorf("expected extraction_failed, got %s", media.KindOf(err))
	}
}

func TestExtractMissingInput(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{}}
	extractor := &mockExtractor{}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/missing.mp4", "/work/out.mp3", "mp3")

	if err == nil {
		t.Fatal("expected an error")
	}
	if extractor.calls != 0 {
		t.Errorf("expected no extraction calls for missing input, got %d", extractor.calls)
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("expected missing-file message, got %v", err)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{"/work/in.mp4": 0}}
	extractor := &mockExtractor{}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/in.mp4", "/work/out.mp3", "mp3")

	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty-file message, got %v", err)
	}
}

func TestExtractEmptyOutputFailsAttempt(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{"/work/in.mp4": 1000}}
	extractor := &mockExtractor{
		onSuccess: func(outputPath string) { files.sizes[outputPath] = 0 },
	}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/in.mp4", "/work/out.mp3", "mp3")

	if err == nil {
		t.Fatal("expected an error for empty output")
	}
	if extractor.calls != 3 {
		t.Errorf("expected all attempts consumed, got %d", extractor.calls)
	}
}

func TestExtractNoAudioTrack(t *testing.T) {
	files := &mockFileChecker{sizes: map[string]int64{"/work/in.mp4": 1000}}
	extractor := &mockExtractor{failTimes: 10, failWith: media.ErrNoAudioTrack}
	service := newTestService(extractor, files)

	err := service.Extract(context.Background(), "/work/in.mp4", "/work/out.mp3", "mp3")

	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, media.ErrNoAudioTrack) {
		t.Errorf("expected ErrNoAudioTrack to be preserved, got %v", err)
	}
}
