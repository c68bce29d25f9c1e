// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package quilt

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/tiling"
)

// Compositor errors.
var (
	// ErrNoViews is returned for a source that holds no views.
	ErrNoViews = errors.New("quilt: rendering config has no views")

	// ErrMissingSource is returned when a source image is not available.
	ErrMissingSource = errors.New("quilt: source render target unavailable")

	// ErrTileOutOfRange is returned when there are more views than tiles.
	ErrTileOutOfRange = errors.New("quilt: view index outside the quilt")
)

// Source is the render target of one rendering config. It holds NumViews
// views laid out as a Rows x Cols grid.
type Source struct {
	Image    image.Image
	NumViews int
	Rows     int
	Cols     int
}

// CopyContext carries everything needed to copy one view into the quilt.
type CopyContext struct {
	Quilt  draw.Image
	Tiling tiling.Quality
	Source image.Image

	// GlobalIndex is the view index across all configs; it selects the
	// destination tile.
	GlobalIndex int

	// LocalIndex is the view index inside Source.
	LocalIndex int

	NumViews int
	Rows     int
	Cols     int
}

// SourceRect returns the rectangle of the view inside Source.
func (c CopyContext) SourceRect() image.Rectangle {
	b := c.Source.Bounds()
	return Grid(b, c.Rows, c.Cols).Rect(c.LocalIndex).Add(b.Min)
}

// DestRect returns the quilt tile the view is copied into.
func (c CopyContext) DestRect() image.Rectangle {
	return FromQuality(c.Tiling).Rect(c.GlobalIndex).Add(c.Quilt.Bounds().Min)
}

// Compositor copies views into quilt tiles.
type Compositor struct {
	scaler draw.Scaler
	logger *slog.Logger
	copies atomic.Int64
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithScaler sets the resampling kernel. The default is draw.ApproxBiLinear.
func WithScaler(s draw.Scaler) Option {
	return func(c *Compositor) {
		if s != nil {
			c.scaler = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) {
		c.logger = logging.OrNop(l)
	}
}

// NewCompositor creates a Compositor.
func NewCompositor(opts ...Option) *Compositor {
	c := &Compositor{
		scaler: draw.ApproxBiLinear,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Plan builds the copy list for sources, numbering views globally in
// source order. It fails without producing any copies when a source is
// missing or empty, or when the views do not fit in the quilt.
func Plan(quilt draw.Image, q tiling.Quality, sources []Source) ([]CopyContext, error) {
	total := 0
	for i, s := range sources {
		if s.Image == nil {
			return nil, fmt.Errorf("%w: config %d", ErrMissingSource, i)
		}
		if s.NumViews <= 0 {
			return nil, fmt.Errorf("%w: config %d", ErrNoViews, i)
		}
		total += s.NumViews
	}
	if total > q.NumTiles() {
		return nil, fmt.Errorf("%w: %d views, %d tiles", ErrTileOutOfRange, total, q.NumTiles())
	}

	plan := make([]CopyContext, 0, total)
	global := 0
	for _, s := range sources {
		for local := range s.NumViews {
			plan = append(plan, CopyContext{
				Quilt:       quilt,
				Tiling:      q,
				Source:      s.Image,
				GlobalIndex: global,
				LocalIndex:  local,
				NumViews:    s.NumViews,
				Rows:        s.Rows,
				Cols:        s.Cols,
			})
			global++
		}
	}
	return plan, nil
}

// CopyToQuilt resamples one view into its quilt tile.
func (c *Compositor) CopyToQuilt(ctx CopyContext) error {
	if ctx.Source == nil {
		return ErrMissingSource
	}
	if ctx.GlobalIndex < 0 || ctx.GlobalIndex >= ctx.Tiling.NumTiles() {
		return fmt.Errorf("%w: %d", ErrTileOutOfRange, ctx.GlobalIndex)
	}

	src := ctx.SourceRect()
	dst := ctx.DestRect()
	if src.Empty() || dst.Empty() {
		return nil
	}
	if src.Size() == dst.Size() {
		draw.Draw(ctx.Quilt, dst, ctx.Source, src.Min, draw.Src)
	} else {
		c.scaler.Scale(ctx.Quilt, dst, ctx.Source, src, draw.Src, nil)
	}
	c.copies.Add(1)
	return nil
}

// Composite copies every view of every source into the quilt and returns
// the number of views copied.
func (c *Compositor) Composite(quilt draw.Image, q tiling.Quality, sources []Source) (int, error) {
	plan, err := Plan(quilt, q, sources)
	if err != nil {
		return 0, err
	}
	for _, cc := range plan {
		if err := c.CopyToQuilt(cc); err != nil {
			return 0, err
		}
	}
	c.logger.Debug("quilt composited", "views", len(plan), "tiles", q.NumTiles())
	return len(plan), nil
}

// Copies returns the number of views copied since the Compositor was created.
func (c *Compositor) Copies() int {
	return int(c.copies.Load())
}
