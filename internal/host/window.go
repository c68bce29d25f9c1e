// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/settings"
)

// DefaultTitle is the window title.
const DefaultTitle = "HoloPlay"

// Fallback window size when the settings give none.
const (
	fallbackWidth  = 1280
	fallbackHeight = 720
)

// Window describes where the output window opens.
type Window struct {
	Title      string
	X, Y       int
	Width      int
	Height     int
	Decorated  bool
	Vsync      bool
	Fullscreen bool
}

// WindowFor places the window according to the window settings. Automatic
// placement opens an undecorated window sized to the display panel.
func WindowFor(s settings.Settings, cal calibration.Calibration) Window {
	loc := s.Window.Location(cal)
	w := Window{
		Title:     DefaultTitle,
		X:         loc.X,
		Y:         loc.Y,
		Width:     loc.Width,
		Height:    loc.Height,
		Decorated: s.Window.PlacementMode == settings.PlacementDebugWindow,
		Vsync:     s.Rendering.Vsync,
	}
	if w.Width <= 0 || w.Height <= 0 {
		w.Width, w.Height = fallbackWidth, fallbackHeight
		w.Decorated = true
	}
	return w
}

// Apply moves and resizes the window. It may be called before Run or from
// the game loop, which is how window commands take effect without
// reopening the window.
func Apply(w Window) {
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetWindowSize(w.Width, w.Height)
	ebiten.SetWindowPosition(w.X, w.Y)
	ebiten.SetWindowDecorated(w.Decorated)
	ebiten.SetVsyncEnabled(w.Vsync)
	ebiten.SetFullscreen(w.Fullscreen)
}

// Run opens the window and runs g until it stops or the window closes.
func Run(g *Game, w Window) error {
	Apply(w)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g.logger.Info("host: window", "x", w.X, "y", w.Y, "width", w.Width, "height", w.Height, "vsync", w.Vsync)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("host: run: %w", err)
	}
	return nil
}
