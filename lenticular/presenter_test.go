// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lenticular

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/settings"
	"github.com/gogpu/holoplay/tiling"
)

var viewColors = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 255, 255},
}

// solidQuilt returns a 2x2 quilt of 10x10 tiles, each view a solid color.
func solidQuilt() (*image.RGBA, tiling.Quality) {
	q := tiling.New("test", 2, 2, 20, 20)
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	for i, c := range viewColors {
		draw.Draw(img, q.TileRect(i), image.NewUniform(c), image.Point{}, draw.Src)
	}
	return img, q
}

// flatParams makes every subpixel see the same view phase.
func flatParams(q tiling.Quality, center float32, inv bool) Params {
	return Params{
		Tiling: q,
		Uniforms: calibration.Uniforms{
			Center:  center,
			Aspect:  1,
			InvView: inv,
		},
	}
}

func TestPresentSelectsView(t *testing.T) {
	quilt, q := solidQuilt()
	p := NewPresenter(WithWorkers(3))

	tests := []struct {
		name string
		inv  bool
		want color.RGBA
	}{
		{"view 1", false, viewColors[1]},
		{"inverted picks view 2", true, viewColors[2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
			if err := p.Present(dst, quilt, flatParams(q, -0.375, tt.inv)); err != nil {
				t.Fatalf("Present: %v", err)
			}
			for y := range 8 {
				for x := range 8 {
					if got := dst.RGBAAt(x, y); got != tt.want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, tt.want)
					}
				}
			}
		})
	}
	if p.Presented() != 2 {
		t.Errorf("Presented = %d, want 2", p.Presented())
	}
}

func TestPresentBlendsAdjacentViews(t *testing.T) {
	quilt, q := solidQuilt()
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	// Phase 0.25 falls halfway between views 0 and 1.
	if err := NewPresenter().Present(dst, quilt, flatParams(q, -0.25, false)); err != nil {
		t.Fatal(err)
	}
	got := dst.RGBAAt(1, 1)
	if got.R != 128 || got.G != 128 || got.B != 0 {
		t.Errorf("blended pixel = %v, want half red half green", got)
	}
}

func TestPresentRGBA64Quilt(t *testing.T) {
	_, q := solidQuilt()
	quilt := image.NewRGBA64(image.Rect(0, 0, 20, 20))
	for i, c := range viewColors {
		draw.Draw(quilt, q.TileRect(i), image.NewUniform(c), image.Point{}, draw.Src)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := NewPresenter().Present(dst, quilt, flatParams(q, -0.375, false)); err != nil {
		t.Fatal(err)
	}
	if got := dst.RGBAAt(2, 2); got != viewColors[1] {
		t.Errorf("pixel = %v, want %v", got, viewColors[1])
	}
}

func TestPresentLetterbox(t *testing.T) {
	quilt, q := solidQuilt()
	params := flatParams(q, -0.375, false)
	params.Uniforms.Aspect = 2

	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := NewPresenter().Present(dst, quilt, params); err != nil {
		t.Fatal(err)
	}
	black := color.RGBA{0, 0, 0, 255}
	if got := dst.RGBAAt(4, 0); got != black {
		t.Errorf("top row = %v, want black bar", got)
	}
	if got := dst.RGBAAt(4, 7); got != black {
		t.Errorf("bottom row = %v, want black bar", got)
	}
	if got := dst.RGBAAt(4, 4); got != viewColors[1] {
		t.Errorf("centre = %v, want view colour", got)
	}
}

func TestPresentFlipX(t *testing.T) {
	quilt, q := solidQuilt()
	params := flatParams(q, 0, false)
	params.Uniforms.Pitch = 1
	// Match the 16x4 output so no column is letterboxed.
	params.Uniforms.Aspect = 4

	plain := image.NewRGBA(image.Rect(0, 0, 16, 4))
	flipped := image.NewRGBA(image.Rect(0, 0, 16, 4))
	p := NewPresenter()
	if err := p.Present(plain, quilt, params); err != nil {
		t.Fatal(err)
	}
	params.Uniforms.FlipX = true
	if err := p.Present(flipped, quilt, params); err != nil {
		t.Fatal(err)
	}

	if plain.RGBAAt(0, 1) == plain.RGBAAt(15, 1) {
		t.Fatal("pattern is symmetric; flip cannot be observed")
	}
	if plain.RGBAAt(0, 1) != flipped.RGBAAt(15, 1) || plain.RGBAAt(15, 1) != flipped.RGBAAt(0, 1) {
		t.Errorf("edges: plain %v..%v, flipped %v..%v",
			plain.RGBAAt(0, 1), plain.RGBAAt(15, 1), flipped.RGBAAt(0, 1), flipped.RGBAAt(15, 1))
	}
	for x := range 16 {
		a, b := plain.RGBAAt(x, 1), flipped.RGBAAt(15-x, 1)
		if absDiff(a.R, b.R) > 1 || absDiff(a.G, b.G) > 1 || absDiff(a.B, b.B) > 1 {
			t.Errorf("x=%d: plain %v, flipped mirror %v", x, a, b)
		}
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestPresentQuiltMode(t *testing.T) {
	quilt, q := solidQuilt()
	params := flatParams(q, 0, false)
	params.QuiltMode = true

	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	if err := NewPresenter().Present(dst, quilt, params); err != nil {
		t.Fatal(err)
	}
	for i, c := range viewColors {
		r := q.TileRect(i)
		mid := image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
		if got := dst.RGBAAt(mid.X, mid.Y); got != c {
			t.Errorf("tile %d centre = %v, want %v", i, got, c)
		}
	}
}

func TestPresentErrors(t *testing.T) {
	p := NewPresenter()
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	_, q := solidQuilt()

	if err := p.Present(dst, nil, flatParams(q, 0, false)); !errors.Is(err, ErrNoQuilt) {
		t.Errorf("nil quilt err = %v", err)
	}
	quilt := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := p.Present(dst, quilt, Params{}); !errors.Is(err, ErrEmptyTiling) {
		t.Errorf("empty tiling err = %v", err)
	}
	if p.Presented() != 0 {
		t.Error("failed presents were counted")
	}
}

func TestNewParams(t *testing.T) {
	cal := calibration.Default()
	q := tiling.Portrait.Quality()

	r := settings.Default().Rendering
	r.UseCustomAspect = false
	if got := NewParams(r, cal, q, nil).Uniforms.Aspect; got != cal.DisplayAspect() {
		t.Errorf("default aspect = %v, want display %v", got, cal.DisplayAspect())
	}

	r.UseCustomAspect = true
	r.CustomAspect = settings.Vec2{X: 16, Y: 9}
	if got := NewParams(r, cal, q, nil).Uniforms.Aspect; got != 16.0/9.0 {
		t.Errorf("custom aspect = %v", got)
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r.CustomAspect = settings.Vec2{X: 3, Y: 0}
	r.QuiltMode = true
	p := NewParams(r, cal, q, logger)
	if p.Uniforms.Aspect != cal.DisplayAspect() {
		t.Errorf("zero Y aspect = %v, want display fallback", p.Uniforms.Aspect)
	}
	if !strings.Contains(buf.String(), "invalid custom aspect") {
		t.Errorf("fallback not logged: %q", buf.String())
	}
	if !p.QuiltMode || !p.Tiling.Equal(q) {
		t.Error("params did not carry quilt mode and tiling")
	}
}
