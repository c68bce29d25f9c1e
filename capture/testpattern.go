// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"context"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TestPattern is a SceneRenderer that draws a calibration scene: a
// background tinted by view offset, a near bar and a far bar that shift by
// different amounts between views, and the view number.
//
// Viewed through the display, the near bar should appear in front of the
// far bar.
type TestPattern struct {
	// Labels draws the view index in the top-left corner.
	Labels bool
}

// RenderView implements SceneRenderer.
func (p TestPattern) RenderView(ctx context.Context, dst draw.Image, view ViewInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	t := view.Offset + 0.5
	bg := color.RGBA{
		R: uint8(40 + 160*t),
		G: 48,
		B: uint8(200 - 160*t),
		A: 255,
	}
	draw.Draw(dst, b, image.NewUniform(bg), image.Point{}, draw.Src)

	barW := max(w/10, 1)
	far := bar(b, w/2+int(float32(w)*0.1*view.Offset), barW)
	near := bar(b, w/2-int(float32(w)*0.3*view.Offset), barW)
	draw.Draw(dst, far.Intersect(b), image.NewUniform(color.RGBA{90, 90, 90, 255}), image.Point{}, draw.Src)
	draw.Draw(dst, near.Intersect(b), image.NewUniform(color.White), image.Point{}, draw.Src)

	if p.Labels {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(b.Min.X+4, b.Min.Y+16),
		}
		d.DrawString(strconv.Itoa(view.Index))
	}
	return nil
}

// bar returns a full-height bar of width w centred on x (relative to b).
func bar(b image.Rectangle, x, w int) image.Rectangle {
	x0 := b.Min.X + x - w/2
	return image.Rect(x0, b.Min.Y, x0+w, b.Max.Y)
}
