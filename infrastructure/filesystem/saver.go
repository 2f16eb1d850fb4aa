package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Saver persists uploaded bytes to disk with bounded memory use
type Saver struct {
	bufferSize int
}

// NewSaver creates a Saver copying through a fixed-size buffer
func NewSaver() *Saver {
	return &Saver{bufferSize: 1 << 20}
}

// Save streams r to path, creating parent directories as needed. The
// destination is truncated first, so a retried save starts clean.
func (s *Saver) Save(r io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	buf := make([]byte, s.bufferSize)
	if _, err := io.CopyBuffer(f, r, buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to flush file: %w", err)
	}
	return nil
}

// Remove deletes path, ignoring a missing file. Cleanup is best-effort by
// contract; callers that must know about failures can inspect the error,
// everyone else discards it.
func (s *Saver) Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
