// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// RenderTarget is anything a pipeline stage can draw into or sample from.
//
// Targets always support CPU access through Image. GPU residency, when
// available, is handled by a Mirror attached to the Manager.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() Format

	// Image returns the backing image. The returned image is only valid
	// until the next Resize.
	Image() draw.Image
}

// Target is a CPU-backed render target.
//
// A Target keeps its identity across Resize: the *Target stays valid while
// the backing image is replaced. Holders must re-fetch Image after a resize.
type Target struct {
	label  string
	format Format
	img    draw.Image
}

// NewTarget creates a target of the given size and format.
func NewTarget(label string, width, height int, format Format) *Target {
	t := &Target{label: label, format: format}
	t.img = format.newImage(width, height)
	return t
}

// NewTargetFromImage wraps an existing image as a target.
// The image is used directly without copying.
func NewTargetFromImage(label string, img *image.RGBA) *Target {
	return &Target{label: label, format: FormatRGBA8, img: img}
}

// Label returns the debug label of the target.
func (t *Target) Label() string {
	return t.label
}

// Width returns the target width in pixels.
func (t *Target) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *Target) Height() int {
	return t.img.Bounds().Dy()
}

// Bounds returns the target rectangle.
func (t *Target) Bounds() image.Rectangle {
	return t.img.Bounds()
}

// Format returns the pixel format.
func (t *Target) Format() Format {
	return t.format
}

// Image returns the backing image.
func (t *Target) Image() draw.Image {
	return t.img
}

// Pixels returns direct access to the pixel data.
func (t *Target) Pixels() []byte {
	switch img := t.img.(type) {
	case *image.RGBA64:
		return img.Pix
	case *image.RGBA:
		return img.Pix
	}
	return nil
}

// Stride returns the number of bytes per row.
func (t *Target) Stride() int {
	switch img := t.img.(type) {
	case *image.RGBA64:
		return img.Stride
	case *image.RGBA:
		return img.Stride
	}
	return 0
}

// Clear fills the entire target with the given color.
func (t *Target) Clear(c color.Color) {
	draw.Draw(t.img, t.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Resize replaces the backing image when the size differs.
// The contents are not preserved. Resize reports whether it reallocated.
func (t *Target) Resize(width, height int) bool {
	if t.Width() == width && t.Height() == height {
		return false
	}
	t.img = t.format.newImage(width, height)
	return true
}

// RGBA returns the target contents as 8-bit RGBA.
// For an RGBA8 target the backing image itself is returned.
func (t *Target) RGBA() *image.RGBA {
	if img, ok := t.img.(*image.RGBA); ok {
		return img
	}
	dst := image.NewRGBA(t.img.Bounds())
	draw.Draw(dst, dst.Bounds(), t.img, t.img.Bounds().Min, draw.Src)
	return dst
}

// Ensure Target implements RenderTarget.
var _ RenderTarget = (*Target)(nil)
