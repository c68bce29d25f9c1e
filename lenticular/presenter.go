// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lenticular

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/gogpu/holoplay/internal/logging"
)

// Presenter errors.
var (
	// ErrNoQuilt is returned when Present is called without a quilt.
	ErrNoQuilt = errors.New("lenticular: no quilt")

	// ErrEmptyTiling is returned when the tiling has no tiles.
	ErrEmptyTiling = errors.New("lenticular: tiling has no tiles")
)

// Presenter draws a quilt onto the display surface.
type Presenter struct {
	logger  *slog.Logger
	scaler  draw.Scaler
	workers int

	presented atomic.Int64
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Presenter) {
		p.logger = logging.OrNop(l)
	}
}

// WithWorkers sets how many goroutines share the interleave.
func WithWorkers(n int) Option {
	return func(p *Presenter) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithScaler sets the scaler used in quilt mode.
func WithScaler(s draw.Scaler) Option {
	return func(p *Presenter) {
		if s != nil {
			p.scaler = s
		}
	}
}

// NewPresenter returns a CPU presenter.
func NewPresenter(opts ...Option) *Presenter {
	p := &Presenter{
		logger:  logging.Nop(),
		scaler:  draw.ApproxBiLinear,
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Presented returns the number of frames presented.
func (p *Presenter) Presented() int64 {
	return p.presented.Load()
}

// Present fills dst from quilt. In quilt mode the quilt is scaled to dst
// unchanged; otherwise each subpixel samples the view it is seen from.
func (p *Presenter) Present(dst draw.Image, quilt image.Image, params Params) error {
	if quilt == nil || quilt.Bounds().Empty() {
		return ErrNoQuilt
	}
	if params.QuiltMode {
		p.scaler.Scale(dst, dst.Bounds(), quilt, quilt.Bounds(), draw.Src, nil)
		p.presented.Add(1)
		return nil
	}
	if params.Tiling.NumTiles() == 0 {
		return ErrEmptyTiling
	}

	b := dst.Bounds()
	if b.Empty() {
		return nil
	}
	in := newInterleaver(b, quilt, params)
	if in.tileW < 1 || in.tileH < 1 {
		return ErrEmptyTiling
	}
	out := newPixelSink(dst)

	bands := min(p.workers, b.Dy())
	var wg sync.WaitGroup
	for i := range bands {
		y0 := b.Min.Y + b.Dy()*i/bands
		y1 := b.Min.Y + b.Dy()*(i+1)/bands
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					out.set(x, y, in.pixel(x, y))
				}
			}
		}()
	}
	wg.Wait()

	p.presented.Add(1)
	return nil
}

// interleaver evaluates the lenticular pattern for one frame. It mirrors
// fs_main in shaders/lenticular.wgsl.
type interleaver struct {
	bounds image.Rectangle
	src    pixelSource
	u      uniforms

	tilesX, tilesY int
	numViews       int
	tileW, tileH   float64
}

type uniforms struct {
	pitch, tilt, center, subp float64
	aspect, outAspect         float64
	flipX, invView            bool
}

func newInterleaver(b image.Rectangle, quilt image.Image, p Params) *interleaver {
	q := p.Tiling
	qb := quilt.Bounds()
	u := p.Uniforms
	return &interleaver{
		bounds: b,
		src:    newPixelSource(quilt),
		u: uniforms{
			pitch:     float64(u.Pitch),
			tilt:      float64(u.Tilt),
			center:    float64(u.Center),
			subp:      float64(u.Subp),
			aspect:    float64(u.Aspect),
			outAspect: float64(b.Dx()) / float64(b.Dy()),
			flipX:     u.FlipX,
			invView:   u.InvView,
		},
		tilesX:   q.TilesX,
		tilesY:   q.TilesY,
		numViews: q.NumTiles(),
		tileW:    float64(qb.Dx()) * float64(q.PortionX) / float64(q.TilesX),
		tileH:    float64(qb.Dy()) * float64(q.PortionY) / float64(q.TilesY),
	}
}

var opaqueBlack = [4]float64{0, 0, 0, 1}

func (in *interleaver) pixel(x, y int) [4]float64 {
	uvx := (float64(x-in.bounds.Min.X) + 0.5) / float64(in.bounds.Dx())
	uvy := (float64(y-in.bounds.Min.Y) + 0.5) / float64(in.bounds.Dy())
	if in.u.flipX {
		uvx = 1 - uvx
	}

	vx, vy := uvx-0.5, uvy-0.5
	if in.u.aspect > in.u.outAspect {
		vy *= in.u.aspect / in.u.outAspect
	} else if in.u.aspect > 0 {
		vx *= in.u.outAspect / in.u.aspect
	}
	vx += 0.5
	vy += 0.5
	if vx < 0 || vx > 1 || vy < 0 || vy > 1 {
		return opaqueBlack
	}

	out := [4]float64{3: 1}
	for c := range 3 {
		z := fract((uvx+float64(c)*in.u.subp+uvy*in.u.tilt)*in.u.pitch - in.u.center)
		if in.u.invView {
			z = 1 - z
		}
		out[c] = in.sampleView(vx, vy, z)[c]
	}
	return out
}

// sampleView blends the two views nearest to the normalised view position z.
func (in *interleaver) sampleView(vx, vy, z float64) [4]float64 {
	n := float64(in.numViews)
	fv := clamp(z*n-0.5, 0, n-1)
	v0 := math.Floor(fv)
	v1 := math.Min(v0+1, n-1)
	t := fv - v0

	a := in.sampleTile(int(v0), vx, vy)
	if t == 0 {
		return a
	}
	b := in.sampleTile(int(v1), vx, vy)
	var out [4]float64
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}

// sampleTile bilinearly samples view v at (vx, vy), clamped to the tile so
// neighbouring views never bleed in.
func (in *interleaver) sampleTile(v int, vx, vy float64) [4]float64 {
	col, row := v%in.tilesX, v/in.tilesX
	minX := float64(col) * in.tileW
	minY := float64(row) * in.tileH

	fx := minX + vx*in.tileW - 0.5
	fy := minY + vy*in.tileH - 0.5
	fx = clamp(fx, minX, minX+in.tileW-1)
	fy = clamp(fy, minY, minY+in.tileH-1)

	x0, y0 := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0, fy-y0
	ix, iy := int(x0), int(y0)
	maxX := int(math.Ceil(minX+in.tileW)) - 1
	maxY := int(math.Ceil(minY+in.tileH)) - 1
	ix1, iy1 := min(ix+1, maxX), min(iy+1, maxY)

	p00 := in.src.at(ix, iy)
	p10 := in.src.at(ix1, iy)
	p01 := in.src.at(ix, iy1)
	p11 := in.src.at(ix1, iy1)
	var out [4]float64
	for i := range out {
		top := p00[i] + (p10[i]-p00[i])*tx
		bot := p01[i] + (p11[i]-p01[i])*tx
		out[i] = top + (bot-top)*ty
	}
	return out
}

func fract(v float64) float64 {
	return v - math.Floor(v)
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

// pixelSource reads normalised RGBA from a quilt, with fast paths for the
// formats the render manager allocates. Coordinates are relative to the
// image origin.
type pixelSource struct {
	img   image.Image
	min   image.Point
	rgba  *image.RGBA
	rgb64 *image.RGBA64
}

func newPixelSource(img image.Image) pixelSource {
	s := pixelSource{img: img, min: img.Bounds().Min}
	switch m := img.(type) {
	case *image.RGBA:
		s.rgba = m
	case *image.RGBA64:
		s.rgb64 = m
	}
	return s
}

func (s pixelSource) at(x, y int) [4]float64 {
	x += s.min.X
	y += s.min.Y
	switch {
	case s.rgb64 != nil:
		i := s.rgb64.PixOffset(x, y)
		p := s.rgb64.Pix[i : i+8 : i+8]
		return [4]float64{
			float64(uint16(p[0])<<8|uint16(p[1])) / 0xffff,
			float64(uint16(p[2])<<8|uint16(p[3])) / 0xffff,
			float64(uint16(p[4])<<8|uint16(p[5])) / 0xffff,
			float64(uint16(p[6])<<8|uint16(p[7])) / 0xffff,
		}
	case s.rgba != nil:
		i := s.rgba.PixOffset(x, y)
		p := s.rgba.Pix[i : i+4 : i+4]
		return [4]float64{
			float64(p[0]) / 0xff,
			float64(p[1]) / 0xff,
			float64(p[2]) / 0xff,
			float64(p[3]) / 0xff,
		}
	}
	r, g, b, a := s.img.At(x, y).RGBA()
	return [4]float64{
		float64(r) / 0xffff,
		float64(g) / 0xffff,
		float64(b) / 0xffff,
		float64(a) / 0xffff,
	}
}

type pixelSink struct {
	dst  draw.Image
	rgba *image.RGBA
}

func newPixelSink(dst draw.Image) pixelSink {
	s := pixelSink{dst: dst}
	if m, ok := dst.(*image.RGBA); ok {
		s.rgba = m
	}
	return s
}

func (s pixelSink) set(x, y int, c [4]float64) {
	if s.rgba != nil {
		i := s.rgba.PixOffset(x, y)
		p := s.rgba.Pix[i : i+4 : i+4]
		p[0] = to8(c[0])
		p[1] = to8(c[1])
		p[2] = to8(c[2])
		p[3] = to8(c[3])
		return
	}
	s.dst.Set(x, y, color.RGBA64{R: to16(c[0]), G: to16(c[1]), B: to16(c[2]), A: to16(c[3])})
}

func to8(v float64) uint8 {
	return uint8(clamp(v, 0, 1)*0xff + 0.5)
}

func to16(v float64) uint16 {
	return uint16(clamp(v, 0, 1)*0xffff + 0.5)
}
