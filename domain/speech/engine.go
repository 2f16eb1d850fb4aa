// Package speech defines the ports for speech-to-text capability providers.
// An engine turns a language into a loadable model; a model constructs
// stateful recognizers bound to a sample rate; a recognizer consumes raw
// PCM frames and emits text fragments as speech is finalized.
package speech

import "errors"

// ErrModelNotInstalled signals that no model exists for the requested
// language. Callers short-circuit to a user-facing sentinel instead of
// retrying: a missing model never fixes itself mid-request.
var ErrModelNotInstalled = errors.New("speech model not installed")

// Engine provides models per language
type Engine interface {
	// LoadModel returns the model for a language identifier ("zh", "en"),
	// or ErrModelNotInstalled when the model is absent.
	LoadModel(language string) (Model, error)
}

// Model is a loaded speech model able to construct recognizers
type Model interface {
	// NewRecognizer creates a fresh recognizer for audio at sampleRate Hz,
	// 16-bit mono PCM.
	NewRecognizer(sampleRate int) (Recognizer, error)
	// Close releases model resources
	Close() error
}

// Recognizer is a stateful decoder consuming fixed-size frame reads
type Recognizer interface {
	// AcceptWaveform feeds little-endian 16-bit PCM bytes. When the engine
	// finalizes an utterance on this read, accepted is true and fragment
	// holds its text (possibly empty).
	AcceptWaveform(data []byte) (fragment string, accepted bool, err error)
	// FinalResult flushes the recognizer after all frames are fed and
	// returns the trailing fragment.
	FinalResult() (string, error)
	// Close releases recognizer resources
	Close() error
}
