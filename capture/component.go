// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package capture renders the views of the camera array into render
// targets, one target per rendering config, plus a flat 2D view.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/quilt"
	"github.com/gogpu/holoplay/render"
	"github.com/gogpu/holoplay/tiling"
)

// Capture errors.
var (
	// ErrNoViews is returned when a rendering config has no views.
	ErrNoViews = errors.New("capture: rendering config has no views")

	// ErrTargetUnavailable is returned when a config's render target is
	// missing.
	ErrTargetUnavailable = errors.New("capture: render target unavailable")

	// ErrNoScene is returned when no SceneRenderer was configured.
	ErrNoScene = errors.New("capture: no scene renderer")
)

// DefaultViewsPerConfig is the largest number of views grouped into one
// rendering config.
const DefaultViewsPerConfig = 16

// Component owns the rendering configs and renders their views.
//
// Targets belong to the render.Manager and are referenced by handle, so a
// resize never leaves the component holding a stale image.
type Component struct {
	mgr    *render.Manager
	scene  SceneRenderer
	logger *slog.Logger

	viewsPerConfig int
	workers        int

	mu       sync.Mutex
	configs  []RenderingConfig
	tiling   tiling.Quality
	camera   Camera
	target2D render.Handle
	override image.Image
}

// Option configures a Component.
type Option func(*Component)

// WithViewsPerConfig sets how many views share one render target.
func WithViewsPerConfig(n int) Option {
	return func(c *Component) {
		if n > 0 {
			c.viewsPerConfig = n
		}
	}
}

// WithWorkers limits how many configs render concurrently.
func WithWorkers(n int) Option {
	return func(c *Component) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Component) {
		c.logger = logging.OrNop(l)
	}
}

// NewComponent creates a component that allocates targets from mgr and
// draws views with scene.
func NewComponent(mgr *render.Manager, scene SceneRenderer, opts ...Option) *Component {
	c := &Component{
		mgr:            mgr,
		scene:          scene,
		logger:         logging.Nop(),
		viewsPerConfig: DefaultViewsPerConfig,
		workers:        runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Setup rebuilds the rendering configs for q: one view per tile, each view
// rendered at the tile size. Previous config targets are released.
func (c *Component) Setup(q tiling.Quality, cam Camera) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseConfigs()

	views := cam.Views(q.NumTiles())
	for start := 0; start < len(views); start += c.viewsPerConfig {
		end := min(start+c.viewsPerConfig, len(views))
		group := views[start:end]
		for i := range group {
			group[i].Index = i
		}

		cols := min(len(group), 4)
		rows := (len(group) + cols - 1) / cols
		h, err := c.mgr.Allocate(
			fmt.Sprintf("config%d", len(c.configs)),
			cols*q.TileSizeX, rows*q.TileSizeY, render.FormatRGBA8)
		if err != nil {
			c.releaseConfigs()
			return fmt.Errorf("capture: allocate config target: %w", err)
		}
		c.configs = append(c.configs, RenderingConfig{
			Views:  group,
			Rows:   rows,
			Cols:   cols,
			Target: h,
		})
	}

	c.tiling = q
	c.camera = cam
	c.logger.Debug("capture setup", "views", len(views), "configs", len(c.configs), "tiling", q.String())
	return nil
}

// SetConfigs replaces the rendering configs. The component takes ownership
// of the config targets.
func (c *Component) SetConfigs(configs []RenderingConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseConfigs()
	c.configs = configs
}

func (c *Component) releaseConfigs() {
	for _, cfg := range c.configs {
		c.mgr.Release(cfg.Target)
	}
	c.configs = nil
}

// Configs returns a copy of the rendering configs.
func (c *Component) Configs() []RenderingConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]RenderingConfig, len(c.configs))
	copy(out, c.configs)
	return out
}

// Tiling returns the quality the configs were built for.
func (c *Component) Tiling() tiling.Quality {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tiling
}

// SetOverrideQuilt makes the presenter sample img instead of rendered views.
// Pass nil to return to rendering.
func (c *Component) SetOverrideQuilt(img image.Image) {
	c.mu.Lock()
	c.override = img
	c.mu.Unlock()
}

// OverrideQuilt returns the override quilt image, if any.
func (c *Component) OverrideQuilt() image.Image {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.override
}

// RenderViews renders every view of every config into its slot of the
// config's target. Configs render concurrently; views within a config are
// rendered in order. The first error aborts the remaining work.
func (c *Component) RenderViews(ctx context.Context) error {
	if c.scene == nil {
		return ErrNoScene
	}
	configs := c.Configs()

	// Validate up front so a bad config never leaves the quilt half rendered.
	targets := make([]*render.Target, len(configs))
	for i, cfg := range configs {
		if len(cfg.Views) == 0 {
			return fmt.Errorf("%w: config %d", ErrNoViews, i)
		}
		t, ok := c.mgr.Target(cfg.Target)
		if !ok {
			return fmt.Errorf("%w: config %d", ErrTargetUnavailable, i)
		}
		targets[i] = t
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, cfg := range configs {
		dst := targets[i].Image()
		grid := quilt.Grid(dst.Bounds(), cfg.Rows, cfg.Cols)
		g.Go(func() error {
			for j, view := range cfg.Views {
				slot, ok := subImage(dst, grid.Rect(j))
				if !ok {
					return fmt.Errorf("capture: config %d view %d: target does not support sub-images", i, j)
				}
				if err := c.scene.RenderView(gctx, slot, view); err != nil {
					return fmt.Errorf("capture: config %d view %d: %w", i, j, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Render2DView renders the centre view into the dedicated 2D target sized
// width x height, allocating or resizing it as needed.
func (c *Component) Render2DView(ctx context.Context, width, height int) (*render.Target, error) {
	if c.scene == nil {
		return nil, ErrNoScene
	}

	c.mu.Lock()
	h := c.target2D
	cam := c.camera
	c.mu.Unlock()

	if _, ok := c.mgr.Target(h); !ok {
		var err error
		h, err = c.mgr.Allocate("render2D", width, height, render.FormatRGBA8)
		if err != nil {
			return nil, fmt.Errorf("capture: allocate 2D target: %w", err)
		}
		c.mu.Lock()
		c.target2D = h
		c.mu.Unlock()
	} else if err := c.mgr.Resize(h, width, height); err != nil {
		return nil, fmt.Errorf("capture: resize 2D target: %w", err)
	}

	t, ok := c.mgr.Target(h)
	if !ok {
		return nil, ErrTargetUnavailable
	}
	if cam.Aspect == 0 {
		cam = DefaultCamera(1)
	}
	cam.Aspect = float32(width) / float32(height)
	if err := c.scene.RenderView(ctx, t.Image(), cam.Center()); err != nil {
		return nil, fmt.Errorf("capture: render 2D view: %w", err)
	}
	return t, nil
}

// Sources resolves the config targets for the compositor.
func (c *Component) Sources() ([]quilt.Source, error) {
	configs := c.Configs()
	sources := make([]quilt.Source, len(configs))
	for i, cfg := range configs {
		t, ok := c.mgr.Target(cfg.Target)
		if !ok {
			return nil, fmt.Errorf("%w: config %d", ErrTargetUnavailable, i)
		}
		sources[i] = quilt.Source{
			Image:    t.Image(),
			NumViews: len(cfg.Views),
			Rows:     cfg.Rows,
			Cols:     cfg.Cols,
		}
	}
	return sources, nil
}

// Close releases every target the component owns.
func (c *Component) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseConfigs()
	c.mgr.Release(c.target2D)
	c.target2D = 0
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func subImage(img draw.Image, r image.Rectangle) (draw.Image, bool) {
	si, ok := img.(subImager)
	if !ok {
		return nil, false
	}
	d, ok := si.SubImage(r).(draw.Image)
	return d, ok
}
