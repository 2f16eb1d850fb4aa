//go:build !vosk

package vosk

import (
	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/speech"
)

// Engine is a stub when libvosk is not available (requires building with
// -tags=vosk). It reports every model as not installed, so requests fall
// through to the download-model sentinel instead of failing hard.
type Engine struct {
	modelDirs map[string]string
}

// NewEngine creates a stub engine
func NewEngine(modelDirs map[string]string) *Engine {
	return &Engine{modelDirs: modelDirs}
}

// LoadModel always reports the model as not installed
func (e *Engine) LoadModel(language string) (speech.Model, error) {
	return nil, speech.ErrModelNotInstalled
}

// Ensure Engine implements speech.Engine
var _ speech.Engine = (*Engine)(nil)
