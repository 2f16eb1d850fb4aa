package audio

import "math"

// Canonical format parameters for recognition input
const (
	CanonicalSampleRate = 16000
	LowPassCutoffHz     = 3000.0

	// normalizeHeadroomDB leaves a small margin below full scale when
	// normalizing so the peak never clips.
	normalizeHeadroomDB = 0.1

	// slowdownFactor reinterprets the sample rate to play 5% slower.
	// This changes pitch as well as duration; the original system accepts
	// that trade-off because the slower audio recognizes better. See the
	// note on Reframe.
	slowdownFactor = 0.95
)

// Preprocess converts a clip into the canonical recognition format. The
// stage order is fixed; each stage depends on the previous stage's output:
// normalize, low-pass at 3 kHz, resample to 16 kHz, downmix to mono, then
// the 0.95x rate reinterpretation. Pure transformation, no I/O, no retries.
func Preprocess(c Clip) Clip {
	c = Normalize(c)
	c = LowPass(c, LowPassCutoffHz)
	c = Resample(c, CanonicalSampleRate)
	c = Downmix(c)
	c = Reframe(c, slowdownFactor)
	return c
}

// Normalize scales the clip so its peak sits just under full scale
func Normalize(c Clip) Clip {
	if c.Empty() {
		return c
	}

	peak := 0
	for _, s := range c.Samples {
		if a := abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return c
	}

	fullScale := float64(int(1)<<(c.BitDepth-1) - 1)
	target := fullScale * math.Pow(10, -normalizeHeadroomDB/20)
	gain := target / float64(peak)

	out := c
	out.Samples = make([]int, len(c.Samples))
	limit := int(fullScale)
	for i, s := range c.Samples {
		out.Samples[i] = clamp(int(math.Round(float64(s)*gain)), limit)
	}
	return out
}

// LowPass applies a first-order RC low-pass filter at cutoffHz per channel
func LowPass(c Clip, cutoffHz float64) Clip {
	if c.Empty() {
		return c
	}

	dt := 1.0 / float64(c.SampleRate)
	rc := 1.0 / (2 * math.Pi * cutoffHz)
	alpha := dt / (rc + dt)

	out := c
	out.Samples = make([]int, len(c.Samples))
	limit := int(1)<<(c.BitDepth-1) - 1
	for ch := 0; ch < c.Channels; ch++ {
		prev := float64(c.Samples[ch])
		out.Samples[ch] = clamp(int(math.Round(prev)), limit)
		for i := ch + c.Channels; i < len(c.Samples); i += c.Channels {
			prev += alpha * (float64(c.Samples[i]) - prev)
			out.Samples[i] = clamp(int(math.Round(prev)), limit)
		}
	}
	return out
}

// Resample converts the clip to targetRate using linear interpolation
func Resample(c Clip, targetRate int) Clip {
	if c.Empty() || c.SampleRate == targetRate {
		out := c
		out.SampleRate = targetRate
		return out
	}

	srcFrames := c.Frames()
	dstFrames := int(math.Round(float64(srcFrames) * float64(targetRate) / float64(c.SampleRate)))
	if dstFrames < 1 {
		dstFrames = 1
	}

	out := Clip{SampleRate: targetRate, Channels: c.Channels, BitDepth: c.BitDepth}
	out.Samples = make([]int, dstFrames*c.Channels)
	ratio := float64(srcFrames-1) / float64(max(dstFrames-1, 1))
	limit := int(1)<<(c.BitDepth-1) - 1
	for frame := 0; frame < dstFrames; frame++ {
		pos := float64(frame) * ratio
		lo := int(pos)
		hi := lo + 1
		if hi >= srcFrames {
			hi = srcFrames - 1
		}
		frac := pos - float64(lo)
		for ch := 0; ch < c.Channels; ch++ {
			a := float64(c.Samples[lo*c.Channels+ch])
			b := float64(c.Samples[hi*c.Channels+ch])
			out.Samples[frame*c.Channels+ch] = clamp(int(math.Round(a+(b-a)*frac)), limit)
		}
	}
	return out
}

// Downmix averages all channels into a single mono channel
func Downmix(c Clip) Clip {
	if c.Channels <= 1 {
		return c
	}

	frames := c.Frames()
	out := Clip{SampleRate: c.SampleRate, Channels: 1, BitDepth: c.BitDepth}
	out.Samples = make([]int, frames)
	for frame := 0; frame < frames; frame++ {
		sum := 0
		for ch := 0; ch < c.Channels; ch++ {
			sum += c.Samples[frame*c.Channels+ch]
		}
		out.Samples[frame] = sum / c.Channels
	}
	return out
}

// Reframe reinterprets the clip's sample rate by factor without resampling.
// Playing the same samples at a lower rate slows the audio down and lowers
// its pitch; duration grows accordingly. Questionable as audio processing,
// but the recognition accuracy of the downstream engine depends on it, so
// the behavior is kept.
func Reframe(c Clip, factor float64) Clip {
	out := c
	out.SampleRate = int(float64(c.SampleRate) * factor)
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, limit int) int {
	if v > limit {
		return limit
	}
	if v < -limit-1 {
		return -limit - 1
	}
	return v
}
