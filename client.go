// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package holoplay

import (
	"context"
	"image"
	"strconv"

	"golang.org/x/image/draw"
)

// Client is what a host window drives each frame.
type Client interface {
	// Draw renders one frame onto s.
	Draw(ctx context.Context, s Surface) Frame

	// HandleInput reports whether the key event was consumed.
	HandleInput(ev KeyEvent) bool

	// HandleCommand runs a text command and reports whether it was handled.
	HandleCommand(line string) bool
}

// KeyEvent is a key transition. Key uses the names of the host's key
// constants, such as "F9" or "Escape".
type KeyEvent struct {
	Key     string
	Pressed bool
}

// Surface is the image a frame is drawn into.
type Surface interface {
	Image() draw.Image
}

// WindowCapturer is implemented by surfaces that can capture the whole
// window including UI drawn over the output. Lenticular screenshots that
// ask for UI use it.
type WindowCapturer interface {
	CaptureWindow() (image.Image, error)
}

// ImageSurface is a Surface backed by an in-memory image.
type ImageSurface struct {
	img *image.RGBA
}

// NewImageSurface returns a width x height surface.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Image implements Surface.
func (s *ImageSurface) Image() draw.Image { return s.img }

// RGBA returns the backing image.
func (s *ImageSurface) RGBA() *image.RGBA { return s.img }

// Resize reallocates the surface when the size changed.
func (s *ImageSurface) Resize(width, height int) {
	if s.img.Bounds().Dx() == width && s.img.Bounds().Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Frame is the outcome of a Draw call.
type Frame uint8

const (
	// FrameLenticular is a full hologram frame.
	FrameLenticular Frame = iota

	// Frame2D is a flat frame drawn in 2D mode.
	Frame2D

	// FrameNoCapture means no capture component was attached; the surface
	// is blue.
	FrameNoCapture

	// FrameNoConfigs means the capture component had no rendering
	// configs; the surface is green.
	FrameNoConfigs

	// FrameAborted means a stage failed and the rest of the frame was
	// skipped.
	FrameAborted
)

var frameNames = [...]string{
	FrameLenticular: "lenticular",
	Frame2D:         "2d",
	FrameNoCapture:  "no-capture",
	FrameNoConfigs:  "no-configs",
	FrameAborted:    "aborted",
}

func (f Frame) String() string {
	if int(f) < len(frameNames) {
		return frameNames[f]
	}
	return "Frame(" + strconv.Itoa(int(f)) + ")"
}
