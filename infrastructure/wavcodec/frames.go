package wavcodec

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// FrameStream reads a WAV file as consecutive fixed-size frame blocks of
// little-endian 16-bit PCM, the shape recognizers consume.
type FrameStream struct {
	file     *os.File
	dec      *wav.Decoder
	channels int
}

// OpenFrames opens a WAV file for framed reading
func OpenFrames(path string) (*FrameStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("not a valid wav file: %s", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to locate pcm data: %w", err)
	}

	return &FrameStream{
		file:     f,
		dec:      dec,
		channels: int(dec.NumChans),
	}, nil
}

// SampleRate returns the stream's sample rate in Hz
func (s *FrameStream) SampleRate() int {
	return int(s.dec.SampleRate)
}

// ReadFrames reads up to n frames and returns them as 16-bit little-endian
// PCM bytes. io.EOF signals exhaustion.
func (s *FrameStream) ReadFrames(n int) ([]byte, error) {
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: s.channels,
			SampleRate:  s.SampleRate(),
		},
		Data: make([]int, n*s.channels),
	}

	read, err := s.dec.PCMBuffer(buf)
	if read == 0 {
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	out := make([]byte, read*2)
	for i := 0; i < read; i++ {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(buf.Data[i])))
	}
	return out, nil
}

// Close releases the underlying file handle
func (s *FrameStream) Close() error {
	if s.file == nil {
		return nil
	}
	f := s.file
	s.file = nil
	return f.Close()
}
