package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaverWritesFile(t *testing.T) {
	saver := NewSaver()
	path := filepath.Join(t.TempDir(), "nested", "dir", "video.mp4")

	if err := saver.Save(strings.NewReader("video bytes"), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "video bytes" {
		t.Errorf("expected saved contents, got %q", data)
	}
}

func TestSaverTruncatesOnRetry(t *testing.T) {
	saver := NewSaver()
	path := filepath.Join(t.TempDir(), "video.mp4")

	if err := saver.Save(strings.NewReader("first save with more bytes"), path); err != nil {
		t.Fatal(err)
	}
	if err := saver.Save(strings.NewReader("retry"), path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "retry" {
		t.Errorf("expected retried save to replace contents, got %q", data)
	}
}

func TestSaverRemoveMissingFileIsNil(t *testing.T) {
	saver := NewSaver()
	if err := saver.Remove(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("expected nil for missing file, got %v", err)
	}
}

func TestCheckerExistsAndSize(t *testing.T) {
	checker := NewChecker()
	path := filepath.Join(t.TempDir(), "file.bin")
	if err := os.WriteFile(path, make([]byte, 42), 0o644); err != nil {
		t.Fatal(err)
	}

	if !checker.Exists(path) {
		t.Error("expected file to exist")
	}
	if got := checker.Size(path); got != 42 {
		t.Errorf("expected size 42, got %d", got)
	}
	if checker.Exists(path + ".missing") {
		t.Error("expected missing file to not exist")
	}
	if got := checker.Size(path + ".missing"); got != 0 {
		t.Errorf("expected size 0 for missing file, got %d", got)
	}
}
