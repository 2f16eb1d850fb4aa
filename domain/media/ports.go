package media

import (
	"context"
	"errors"
	"time"
)

// ErrNoAudioTrack signals that a video container carries no audio stream
var ErrNoAudioTrack = errors.New("video file has no audio track")

// ErrProbeUnavailable is returned by probe builds without video decode support
var ErrProbeUnavailable = errors.New("video probe not available in this build")

// AudioExtractionRequest describes one audio extraction from a video container
type AudioExtractionRequest struct {
	SourceVideoPath string
	Format          string // target audio container, e.g. "mp3"
	Bitrate         string
}

// NewAudioExtractionRequest creates an extraction request with defaults applied
func NewAudioExtractionRequest(sourcePath, format, bitrate string) (*AudioExtractionRequest, error) {
	if sourcePath == "" {
		return nil, errors.New("source video path is required")
	}
	if format == "" {
		format = DefaultAudioFormat
	}
	if bitrate == "" {
		bitrate = DefaultAudioBitrate
	}
	return &AudioExtractionRequest{
		SourceVideoPath: sourcePath,
		Format:          format,
		Bitrate:         bitrate,
	}, nil
}

// AudioExtractor defines the interface for audio extraction operations.
// This is a port that can be implemented by different infrastructure adapters.
type AudioExtractor interface {
	// Extract isolates the audio track of the request's video and writes it
	// to outputPath. A container without an audio track yields ErrNoAudioTrack.
	Extract(ctx context.Context, req *AudioExtractionRequest, outputPath string) error
}

// FileChecker abstracts the postcondition checks every stage runs on its output
type FileChecker interface {
	Exists(path string) bool
	Size(path string) int64
}

// ProbeReport summarizes what a video decode preflight saw in a container
type ProbeReport struct {
	FrameCount int
	FPS        float64
	Duration   time.Duration
}

// VideoProber optionally inspects a video container before extraction.
// Builds without decode support return ErrProbeUnavailable.
type VideoProber interface {
	Probe(ctx context.Context, videoPath string) (ProbeReport, error)
}
