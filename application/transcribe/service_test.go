package transcribe

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/speech"
)

// fakeRecognizer yields one scripted fragment per feed, then a final result
type fakeRecognizer struct {
	fragment string
	final    string
	fed      int
	closed   bool
}

func (r *fakeRecognizer) AcceptWaveform(data []byte) (string, bool, error) {
	r.fed++
	if r.fed == 1 && r.fragment != "" {
		return r.fragment, true, nil
	}
	return "", false, nil
}

func (r *fakeRecognizer) FinalResult() (string, error) {
	return r.final, nil
}

func (r *fakeRecognizer) Close() error {
	r.closed = true
	return nil
}

// fakeModel hands out one scripted recognizer per window
type fakeModel struct {
	recognizers []*fakeRecognizer
	created     int
	lastRate    int
	closed      bool
}

func (m *fakeModel) NewRecognizer(sampleRate int) (speech.Recognizer, error) {
	m.lastRate = sampleRate
	if m.created >= len(m.recognizers) {
		return &fakeRecognizer{}, nil
	}
	rec := m.recognizers[m.created]
	m.created++
	return rec, nil
}

func (m *fakeModel) Close() error {
	m.closed = true
	return nil
}

// fakeEngine returns a canned model or a load error
type fakeEngine struct {
	model *fakeModel
	err   error
	loads int
}

func (e *fakeEngine) LoadModel(language string) (speech.Model, error) {
	e.loads++
	if e.err != nil {
		return nil, e.err
	}
	return e.model, nil
}

// fakeLoader returns a clip of the configured duration at 16 kHz mono
type fakeLoader struct {
	duration time.Duration
	err      error
}

func (l *fakeLoader) Load(ctx context.Context, path string) (audio.Clip, error) {
	if l.err != nil {
		return audio.Clip{}, l.err
	}
	frames := int(l.duration.Seconds() * 16000)
	return audio.Clip{SampleRate: 16000, Channels: 1, BitDepth: 16, Samples: make([]int, frames)}, nil
}

// fileExporter writes a placeholder file so segment cleanup can be observed
type fileExporter struct {
	paths []string
}

func (e *fileExporter) Export(clip audio.Clip, path string) error {
	e.paths = append(e.paths, path)
	return os.WriteFile(path, []byte("segment"), 0o644)
}

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

// fakeFrames serves a single read then EOF
type fakeFrames struct {
	served bool
}

func (f *fakeFrames) SampleRate() int { return 16000 }

func (f *fakeFrames) ReadFrames(n int) ([]byte, error) {
	if f.served {
		return nil, io.EOF
	}
	f.served = true
	return make([]byte, n*2), nil
}

func (f *fakeFrames) Close() error { return nil }

func canonicalFixture(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "job_audio.wav")
}

func newTestService(engine *fakeEngine, loader *fakeLoader, exporter *fileExporter, files *mockFileChecker, opts ...Option) *Service {
	base := []Option{
		WithRetryPolicy(media.LinearBackoff(3, 0)),
		WithValidatePolicy(media.FixedDelay(3, 0)),
		WithFrameOpener(func(path string) (FrameSource, error) {
			return &fakeFrames{}, nil
		}),
	}
	return NewService(engine, loader, exporter, files, zerolog.Nop(), append(base, opts...)...)
}

func TestRecognizeJoinsFragmentsAcrossWindows(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 5000}}
	model := &fakeModel{recognizers: []*fakeRecognizer{
		{fragment: "hello there", final: "everyone"},
		{final: "welcome back"},
	}}
	engine := &fakeEngine{model: model}
	loader := &fakeLoader{duration: 45 * time.Second}
	exporter := &fileExporter{}
	service := newTestService(engine, loader, exporter, files)

	transcript, err := service.Recognize(context.Background(), canonical, media.LanguageChinese)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "hello there everyone welcome back"
	if transcript.Text != want {
		t.Errorf("expected %q, got %q", want, transcript.Text)
	}
	if transcript.Outcome != OutcomeRecognized {
		t.Errorf("expected recognized outcome, got %s", transcript.Outcome)
	}
	if model.created != 2 {
		t.Errorf("expected a fresh recognizer per window, got %d", model.created)
	}
	if model.lastRate != 16000 {
		t.Errorf("expected recognizer at segment sample rate, got %d", model.lastRate)
	}
}

func TestRecognizeModelMissing(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 5000}}
	engine := &fakeEngine{err: speech.ErrModelNotInstalled}
	loader := &fakeLoader{duration: 45 * time.Second}
	service := newTestService(engine, loader, &fileExporter{}, files)

	transcript, err := service.Recognize(context.Background(), canonical, media.LanguageEnglish)

	if err != nil {
		t.Fatalf("expected sentinel, got error: %v", err)
	}
	if transcript.Text != SentinelModelMissing {
		t.Errorf("expected model-missing sentinel, got %q", transcript.Text)
	}
	if transcript.Outcome != OutcomeModelMissing {
		t.Errorf("expected model_missing outcome, got %s", transcript.Outcome)
	}
	if engine.loads != 1 {
		t.Errorf("expected a single load with no retries, got %d", engine.loads)
	}
}

func TestRecognizeSilenceYieldsNoSpeechSentinel(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 5000}}
	model := &fakeModel{recognizers: []*fakeRecognizer{{}, {}}}
	engine := &fakeEngine{model: model}
	loader := &fakeLoader{duration: 45 * time.Second}
	service := newTestService(engine, loader, &fileExporter{}, files)

	transcript, err := service.Recognize(context.Background(), canonical, media.LanguageChinese)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transcript.Text != SentinelNoSpeech {
		t.Errorf("expected no-speech sentinel, got %q", transcript.Text)
	}
	if transcript.Outcome != OutcomeNoSpeech {
		t.Errorf("expected no_speech outcome, got %s", transcript.Outcome)
	}
}

func TestRecognizeRemovesSegmentFiles(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 5000}}
	model := &fakeModel{recognizers: []*fakeRecognizer{{final: "text"}, {final: "more"}}}
	engine := &fakeEngine{model: model}
	loader := &fakeLoader{duration: 45 * time.Second}
	exporter := &fileExporter{}
	service := newTestService(engine, loader, exporter, files)

	if _, err := service.Recognize(context.Background(), canonical, media.LanguageChinese); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(exporter.paths) != 2 {
		t.Fatalf("expected 2 segment files, got %d", len(exporter.paths))
	}
	for _, p := range exporter.paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("segment file %s was not removed", p)
		}
	}
}

func TestRecognizeCanonicalTooSmall(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 100}}
	model := &fakeModel{}
	engine := &fakeEngine{model: model}
	loader := &fakeLoader{duration: 45 * time.Second}
	service := newTestService(engine, loader, &fileExporter{}, files)

	_, err := service.Recognize(context.Background(), canonical, media.LanguageChinese)

	if err == nil {
		t.Fatal("expected an error")
	}
	if media.KindOf(err) != media.KindRecognitionFailed {
		t.Errorf("expected recognition_failed, got %s", media.KindOf(err))
	}
}

func TestRecognizeRetriesAttemptFailures(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 5000}}
	model := &fakeModel{recognizers: []*fakeRecognizer{{final: "recovered"}, {}}}
	engine := &fakeEngine{model: model}
	loader := &fakeLoader{duration: 20 * time.Second}

	opens := 0
	service := newTestService(engine, loader, &fileExporter{}, files,
		WithFrameOpener(func(path string) (FrameSource, error) {
			opens++
			if opens == 1 {
				return nil, errors.New("segment not readable")
			}
			return &fakeFrames{}, nil
		}))

	transcript, err := service.Recognize(context.Background(), canonical, media.LanguageChinese)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transcript.Text != "recovered" {
		t.Errorf("expected transcript from second attempt, got %q", transcript.Text)
	}
	if opens != 2 {
		t.Errorf("expected 2 open attempts, got %d", opens)
	}
}

func TestRecognizeExhaustsAttempts(t *testing.T) {
	canonical := canonicalFixture(t)
	files := &mockFileChecker{sizes: map[string]int64{canonical: 5000}}
	engine := &fakeEngine{model: &fakeModel{}}
	loader := &fakeLoader{duration: 20 * time.Second}

	opens := 0
	service := newTestService(engine, loader, &fileExporter{}, files,
		WithFrameOpener(func(path string) (FrameSource, error) {
			opens++
			return nil, errors.New("segment not readable")
		}))

	_, err := service.Recognize(context.Background(), canonical, media.LanguageChinese)

	if err == nil {
		t.Fatal("expected an error")
	}
	if opens != 3 {
		t.Errorf("expected 3 attempts, got %d", opens)
	}
	if media.KindOf(err) != media.KindRecognitionFailed {
		t.Errorf("expected recognition_failed, got %s", media.KindOf(err))
	}
}

func TestSegmentCount(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     int
	}{
		{0, 0},
		{10 * time.Second, 1},
		{30 * time.Second, 1},
		{31 * time.Second, 2},
		{90 * time.Second, 3},
	}

	for _, tt := range tests {
		if got := segmentCount(tt.duration); got != tt.want {
			t.Errorf("segmentCount(%v) = %d, want %d", tt.duration, got, tt.want)
		}
	}
}
