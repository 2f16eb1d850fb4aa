// Package whisper adapts the OpenAI transcription API to the speech ports
// as an alternative to the local Vosk engine. Each 30-second segment is
// buffered as it is fed and sent as one transcription request when the
// segment's frames are exhausted, so the segmented recognizer drives both
// engines identically.
package whisper

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/audio"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/speech"
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/infrastructure/wavcodec"
)

// DefaultRequestTimeout bounds one transcription API call
const DefaultRequestTimeout = 2 * time.Minute

// Engine implements speech.Engine against the OpenAI transcription API
type Engine struct {
	client  *openai.Client
	timeout time.Duration
}

// EngineOption is a functional option for configuring Engine
type EngineOption func(*Engine)

// WithRequestTimeout overrides the per-request timeout
func WithRequestTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.timeout = d
	}
}

// NewEngine creates an engine using apiKey for authentication
func NewEngine(apiKey string, opts ...EngineOption) (*Engine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required for the whisper engine")
	}
	e := &Engine{
		client:  openai.NewClient(apiKey),
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// LoadModel implements speech.Engine. The remote model exists for every
// supported language; unsupported languages report as not installed.
func (e *Engine) LoadModel(language string) (speech.Model, error) {
	if !media.IsSupportedLanguage(language) {
		return nil, speech.ErrModelNotInstalled
	}
	return &model{engine: e, language: language}, nil
}

type model struct {
	engine   *Engine
	language string
}

func (m *model) NewRecognizer(sampleRate int) (speech.Recognizer, error) {
	return &recognizer{model: m, sampleRate: sampleRate}, nil
}

func (m *model) Close() error {
	return nil
}

// recognizer accumulates fed frames and transcribes them on finalization.
// The API has no incremental results, so AcceptWaveform never finalizes an
// utterance; the whole segment comes back as the final fragment.
type recognizer struct {
	model      *model
	sampleRate int
	pcm        []byte
}

func (r *recognizer) AcceptWaveform(data []byte) (string, bool, error) {
	r.pcm = append(r.pcm, data...)
	return "", false, nil
}

func (r *recognizer) FinalResult() (string, error) {
	if len(r.pcm) == 0 {
		return "", nil
	}

	path, err := r.writeSegment()
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	ctx, cancel := context.WithTimeout(context.Background(), r.model.engine.timeout)
	defer cancel()

	resp, err := r.model.engine.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
		Language: r.model.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// writeSegment persists the buffered PCM as a WAV file the API accepts
func (r *recognizer) writeSegment() (string, error) {
	samples := make([]int, len(r.pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(r.pcm[i*2:])))
	}
	clip := audio.Clip{
		SampleRate: r.sampleRate,
		Channels:   1,
		BitDepth:   16,
		Samples:    samples,
	}

	f, err := os.CreateTemp("", "whisper-segment-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create segment upload file: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := wavcodec.WriteFile(clip, filepath.Clean(path)); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (r *recognizer) Close() error {
	r.pcm = nil
	return nil
}

var _ speech.Engine = (*Engine)(nil)
