package media

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure so callers can branch programmatically
// instead of matching on message strings.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindSaveFailed        Kind = "save_failed"
	KindExtractionFailed  Kind = "extraction_failed"
	KindConversionFailed  Kind = "conversion_failed"
	KindRecognitionFailed Kind = "recognition_failed"
	KindModelMissing      Kind = "model_missing"
	KindNoSpeech          Kind = "no_speech"
	KindNotFound          Kind = "not_found"
	KindInternal          Kind = "internal"
)

// Error is a pipeline failure carrying its classification
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a failure kind. A nil err yields a nil result.
func E(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Errorf builds a classified error from a format string
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from err, or KindInternal when err
// carries no classification.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindInternal
}
