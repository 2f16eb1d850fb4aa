//go:build !gocv

package probe

import (
	"context"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
)

// Prober is a stub when OpenCV is not available (requires building with
// -tags=gocv)
type Prober struct{}

// NewProber creates a stub prober
func NewProber() *Prober {
	return &Prober{}
}

// Probe returns media.ErrProbeUnavailable
func (p *Prober) Probe(_ context.Context, _ string) (media.ProbeReport, error) {
	return media.ProbeReport{}, media.ErrProbeUnavailable
}

// Ensure Prober implements media.VideoProber
var _ media.VideoProber = (*Prober)(nil)
