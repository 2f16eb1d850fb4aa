//go:build gocv

// Package probe inspects video containers before extraction. The real
// implementation decodes through OpenCV and needs the gocv build tag; the
// default build ships the stub, and the extract service treats an
// unavailable probe as a skipped preflight.
package probe

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/jiabinchengithub/Extract-audio-and-text-from-video/domain/media"
)

// Prober implements media.VideoProber using OpenCV
type Prober struct{}

// NewProber creates an OpenCV-backed video prober
func NewProber() *Prober {
	return &Prober{}
}

// Probe implements media.VideoProber
func (p *Prober) Probe(_ context.Context, videoPath string) (media.ProbeReport, error) {
	capture, err := gocv.VideoCaptureFile(videoPath)
	if err != nil {
		return media.ProbeReport{}, fmt.Errorf("failed to open video container: %w", err)
	}
	defer capture.Close()

	if !capture.IsOpened() {
		return media.ProbeReport{}, fmt.Errorf("video container did not open: %s", videoPath)
	}

	frames := int(capture.Get(gocv.VideoCaptureFrameCount))
	fps := capture.Get(gocv.VideoCaptureFPS)

	report := media.ProbeReport{FrameCount: frames, FPS: fps}
	if fps > 0 {
		report.Duration = time.Duration(float64(frames) / fps * float64(time.Second))
	}
	return report, nil
}

// Ensure Prober implements media.VideoProber
var _ media.VideoProber = (*Prober)(nil)
