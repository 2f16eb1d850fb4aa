package media

import (
	"errors"
	"fmt"
	"testing"
)

func TestEWrapsWithKind(t *testing.T) {
	cause := errors.New("disk full")
	err := E(KindSaveFailed, cause)

	if KindOf(err) != KindSaveFailed {
		t.Errorf("expected kind save_failed, got %s", KindOf(err))
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive errors.Is")
	}
}

func TestENilPassthrough(t *testing.T) {
	if err := E(KindSaveFailed, nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestKindOfNestedWrapping(t *testing.T) {
	inner := Errorf(KindExtractionFailed, "ffmpeg exited with status 1")
	wrapped := fmt.Errorf("attempt 3: %w", inner)

	if KindOf(wrapped) != KindExtractionFailed {
		t.Errorf("expected extraction_failed through wrapping, got %s", KindOf(wrapped))
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("expected unclassified errors to report internal")
	}
}

func TestErrorMessageIncludesKindAndCause(t *testing.T) {
	err := Errorf(KindConversionFailed, "empty clip")
	want := "conversion_failed: empty clip"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"zh", true},
		{"en", true},
		{"fr", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsSupportedLanguage(tt.lang); got != tt.want {
			t.Errorf("IsSupportedLanguage(%q) = %v, want %v", tt.lang, got, tt.want)
		}
	}
}
