// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package host runs a holoplay.Client in a desktop window.
package host

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/holoplay"
	"github.com/gogpu/holoplay/internal/logging"
)

// Game adapts a holoplay.Client to ebiten.Game. The window client area is
// the output surface; each frame the client draws into a CPU image that is
// then uploaded to the screen.
type Game struct {
	ctx    context.Context
	client holoplay.Client
	logger *slog.Logger

	surface *holoplay.ImageSurface
	screen  *ebiten.Image
	keys    []ebiten.Key
	last    holoplay.Frame
	stop    atomic.Bool
}

// GameOption configures a Game.
type GameOption func(*Game)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GameOption {
	return func(g *Game) {
		g.logger = logging.OrNop(l)
	}
}

// NewGame creates a game drawing client. ctx is passed to every Draw.
func NewGame(ctx context.Context, client holoplay.Client, opts ...GameOption) *Game {
	g := &Game{
		ctx:     ctx,
		client:  client,
		logger:  logging.Nop(),
		surface: holoplay.NewImageSurface(1, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Stop ends the game loop after the current frame. Safe for concurrent use.
func (g *Game) Stop() {
	g.stop.Store(true)
}

// Update forwards key presses and releases to the client.
func (g *Game) Update() error {
	if g.stop.Load() || g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.client.HandleInput(holoplay.KeyEvent{Key: k.String(), Pressed: true})
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.client.HandleInput(holoplay.KeyEvent{Key: k.String()})
	}
	return nil
}

// Draw runs one client frame and shows it.
func (g *Game) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	if g.surface.RGBA().Bounds() != b {
		g.surface.Resize(b.Dx(), b.Dy())
	}
	if g.screen == nil || g.screen.Bounds() != b {
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(b.Dx(), b.Dy())
	}

	frame := g.client.Draw(g.ctx, g.surface)
	if frame != g.last {
		g.logger.Info("host: frame mode", "frame", frame.String())
		g.last = frame
	}

	g.screen.WritePixels(g.surface.RGBA().Pix)
	screen.DrawImage(g.screen, nil)
}

// Layout renders at the window's native resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return max(outsideWidth, 1), max(outsideHeight, 1)
}
