// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Format is the pixel format of a render target.
type Format uint8

const (
	// FormatRGBA8 stores 8 bits per channel. Used for views and output.
	FormatRGBA8 Format = iota

	// FormatRGBA16 stores 16 bits per channel. Used for the quilt so that
	// resampled tiles do not band at tile boundaries.
	FormatRGBA16
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGBA16:
		return "RGBA16"
	}
	return fmt.Sprintf("Format(%d)", f)
}

// BitsPerChannel returns the channel depth of the format.
func (f Format) BitsPerChannel() int {
	if f == FormatRGBA16 {
		return 16
	}
	return 8
}

// TextureFormat returns the GPU texture format a target of this format is
// mirrored with. GPU mirrors are sampled for display only and use 8 bits
// per channel regardless of the CPU format.
func (f Format) TextureFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

func (f Format) newImage(width, height int) draw.Image {
	r := image.Rect(0, 0, width, height)
	if f == FormatRGBA16 {
		return image.NewRGBA64(r)
	}
	return image.NewRGBA(r)
}
