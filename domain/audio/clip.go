package audio

import (
	"context"
	"time"
)

// Clip is an in-memory PCM audio buffer: interleaved integer samples plus
// the format needed to interpret them. Clips are treated as immutable;
// transformations return a new Clip.
type Clip struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int
}

// Frames returns the number of sample frames (one sample per channel each)
func (c Clip) Frames() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the clip's playback length at its current sample rate
func (c Clip) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Empty reports whether the clip holds no audio
func (c Clip) Empty() bool {
	return c.Frames() == 0
}

// Slice returns the window of the clip between start and end. The window is
// clamped to the clip's bounds; the final window of a segmentation may
// therefore be shorter than requested.
func (c Clip) Slice(start, end time.Duration) Clip {
	startFrame := int(start.Seconds() * float64(c.SampleRate))
	endFrame := int(end.Seconds() * float64(c.SampleRate))
	total := c.Frames()
	if startFrame < 0 {
		startFrame = 0
	}
	if endFrame > total {
		endFrame = total
	}
	if startFrame >= endFrame {
		return Clip{SampleRate: c.SampleRate, Channels: c.Channels, BitDepth: c.BitDepth}
	}

	out := c
	out.Samples = c.Samples[startFrame*c.Channels : endFrame*c.Channels]
	return out
}

// Loader reads an audio file into a Clip
type Loader interface {
	Load(ctx context.Context, path string) (Clip, error)
}

// Exporter writes a Clip to an audio file
type Exporter interface {
	Export(clip Clip, path string) error
}
