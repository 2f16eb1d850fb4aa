package filesystem

import (
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the read granularity for streamed file delivery
const DefaultChunkSize = 10 * 1024 * 1024 // 10MB

// ChunkReader reads a file as a finite, non-restartable sequence of
// fixed-size byte chunks. Open acquires the handle, Next yields chunks
// until io.EOF, and Close releases the handle; Close is safe to call at
// any point, including after an early consumer abort.
type ChunkReader struct {
	file      *os.File
	chunkSize int
	buf       []byte
}

// ChunkReaderOption configures a ChunkReader
type ChunkReaderOption func(*ChunkReader)

// WithChunkSize overrides the default 10MB chunk size
func WithChunkSize(size int) ChunkReaderOption {
	return func(r *ChunkReader) {
		if size > 0 {
			r.chunkSize = size
		}
	}
}

// OpenChunkReader opens path for chunked reading
func OpenChunkReader(path string, opts ...ChunkReaderOption) (*ChunkReader, error) {
	r := &ChunkReader{chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(r)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for streaming: %w", err)
	}
	r.file = f
	r.buf = make([]byte, r.chunkSize)
	return r, nil
}

// Next returns the next chunk of the file. The returned slice is only valid
// until the following Next call. io.EOF signals exhaustion.
func (r *ChunkReader) Next() ([]byte, error) {
	if r.file == nil {
		return nil, io.EOF
	}

	n, err := io.ReadFull(r.file, r.buf)
	if n > 0 {
		return r.buf[:n], nil
	}
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return nil, err
}

// Close releases the underlying file handle
func (r *ChunkReader) Close() error {
	if r.file == nil {
		return nil
	}
	f := r.file
	r.file = nil
	return f.Close()
}
