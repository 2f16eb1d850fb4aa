//go:build vosk

// Package vosk adapts the Vosk offline recognition engine to the speech
// ports. Building it requires libvosk (cgo); the default build uses the
// stub in engine_stub.go, which behaves as if no model were installed.
package vosk

import (
	"encoding/json"
	"fmt"
	"os"

	voskapi "github.com/alphacep/vosk-api/go"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/speech"
)

// Engine implements speech.Engine over local Vosk model directories
type Engine struct {
	modelDirs map[string]string // language -> model directory
}

// NewEngine creates an engine resolving languages through modelDirs
func NewEngine(modelDirs map[string]string) *Engine {
	return &Engine{modelDirs: modelDirs}
}

// LoadModel implements speech.Engine
func (e *Engine) LoadModel(language string) (speech.Model, error) {
	dir, ok := e.modelDirs[language]
	if !ok {
		return nil, speech.ErrModelNotInstalled
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, speech.ErrModelNotInstalled
	}

	m, err := voskapi.NewModel(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load vosk model %s: %w", dir, err)
	}
	return &model{inner: m}, nil
}

type model struct {
	inner *voskapi.VoskModel
}

func (m *model) NewRecognizer(sampleRate int) (speech.Recognizer, error) {
	r, err := voskapi.NewRecognizer(m.inner, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("failed to create vosk recognizer: %w", err)
	}
	r.SetWords(1)
	return &recognizer{inner: r}, nil
}

func (m *model) Close() error {
	m.inner.Free()
	return nil
}

type recognizer struct {
	inner *voskapi.VoskRecognizer
}

// result is the JSON shape Vosk emits for finalized utterances
type result struct {
	Text string `json:"text"`
}

func (r *recognizer) AcceptWaveform(data []byte) (string, bool, error) {
	if r.inner.AcceptWaveform(data) == 0 {
		return "", false, nil
	}
	var res result
	if err := json.Unmarshal([]byte(r.inner.Result()), &res); err != nil {
		return "", false, fmt.Errorf("failed to parse vosk result: %w", err)
	}
	return res.Text, true, nil
}

func (r *recognizer) FinalResult() (string, error) {
	var res result
	if err := json.Unmarshal([]byte(r.inner.FinalResult()), &res); err != nil {
		return "", fmt.Errorf("failed to parse vosk final result: %w", err)
	}
	return res.Text, nil
}

func (r *recognizer) Close() error {
	r.inner.Free()
	return nil
}

var _ speech.Engine = (*Engine)(nil)
