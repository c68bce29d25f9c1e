// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package settings defines the user settings the presentation pipeline
// consumes each frame, and the providers that supply them.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/tiling"
)

// ErrUnknownPlacement is returned when a placement mode name is not recognised.
var ErrUnknownPlacement = errors.New("settings: unknown placement mode")

// Settings is a frame-scoped copy of all user settings.
type Settings struct {
	Tiling      TilingSettings          `yaml:"tiling" json:"tiling"`
	Rendering   RenderingSettings       `yaml:"rendering" json:"rendering"`
	Window      WindowSettings          `yaml:"window" json:"window"`
	Screenshots ScreenshotSettings      `yaml:"screenshots" json:"screenshots"`
	Calibration calibration.Calibration `yaml:"calibration" json:"calibration"`
}

// TilingSettings selects the quilt tiling.
type TilingSettings struct {
	Preset tiling.Preset  `yaml:"preset" json:"preset"`
	Custom tiling.Quality `yaml:"custom" json:"custom"`
}

// Quality returns the selected tiling quality with its derived fields set.
func (t TilingSettings) Quality() tiling.Quality {
	if t.Preset != tiling.Custom {
		return t.Preset.Quality()
	}
	q := t.Custom
	q.Editable = true
	q.Clamp()
	return q
}

// Vec2 is a pair of floats.
type Vec2 struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
}

// RenderingSettings are the presentation mode switches.
type RenderingSettings struct {
	Vsync bool `yaml:"vsync" json:"vsync"`

	// QuiltMode shows the raw quilt instead of the interleaved image.
	QuiltMode bool `yaml:"quiltMode" json:"quiltMode"`

	// Render2D renders a single flat view and skips the quilt entirely.
	Render2D bool `yaml:"render2D" json:"render2D"`

	UseCustomAspect bool `yaml:"useCustomAspect" json:"useCustomAspect"`
	CustomAspect    Vec2 `yaml:"customAspect" json:"customAspect"`
}

// CustomAspectRatio returns CustomAspect.X / CustomAspect.Y.
// A zero Y yields an infinity or NaN; callers decide how to handle it.
func (r RenderingSettings) CustomAspectRatio() float32 {
	return r.CustomAspect.X / r.CustomAspect.Y
}

// PlacementMode selects where the output window is opened.
type PlacementMode uint8

// Placement modes.
const (
	PlacementAutomatic PlacementMode = iota
	PlacementCustomWindow
	PlacementDebugWindow
)

var placementNames = [...]string{
	PlacementAutomatic:    "Automatic",
	PlacementCustomWindow: "CustomWindow",
	PlacementDebugWindow:  "AlwaysDebugWindow",
}

func (m PlacementMode) String() string {
	if int(m) < len(placementNames) {
		return placementNames[m]
	}
	return fmt.Sprintf("PlacementMode(%d)", m)
}

// MarshalText implements encoding.TextMarshaler.
func (m PlacementMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PlacementMode) UnmarshalText(b []byte) error {
	for i, n := range placementNames {
		if strings.EqualFold(n, string(b)) {
			*m = PlacementMode(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownPlacement, b)
}

// Valid reports whether m is one of the defined modes.
func (m PlacementMode) Valid() bool {
	return int(m) < len(placementNames)
}

// WindowLocation is a window client area on the desktop.
type WindowLocation struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// WindowSettings controls the output window.
type WindowSettings struct {
	PlacementMode PlacementMode  `yaml:"placementMode" json:"placementMode"`
	ScreenIndex   int            `yaml:"screenIndex" json:"screenIndex"`
	CustomWindow  WindowLocation `yaml:"customWindow" json:"customWindow"`
	DebugWindow   WindowLocation `yaml:"debugWindow" json:"debugWindow"`

	// LockInMainViewport keeps input focus in the main viewport.
	LockInMainViewport bool `yaml:"lockInMainViewport" json:"lockInMainViewport"`
}

// Location returns the window location used for the current placement mode.
// Automatic placement uses the panel size of the display at its origin.
func (w WindowSettings) Location(c calibration.Calibration) WindowLocation {
	switch w.PlacementMode {
	case PlacementCustomWindow:
		return w.CustomWindow
	case PlacementDebugWindow:
		return w.DebugWindow
	default:
		return WindowLocation{Width: c.ScreenW, Height: c.ScreenH}
	}
}

// ScreenshotConfig configures one screenshot kind.
type ScreenshotConfig struct {
	FileName string `yaml:"fileName" json:"fileName"`
	Key      string `yaml:"key" json:"key"`

	// Width and Height set the 2D render resolution while the display shows
	// the hologram. In 2D mode, and for the quilt and lenticular
	// screenshots, they crop the captured frame; zero keeps it whole.
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
}

// ScreenshotSettings configures screenshot capture.
type ScreenshotSettings struct {
	Dir        string           `yaml:"dir" json:"dir"`
	Lenticular ScreenshotConfig `yaml:"lenticular" json:"lenticular"`
	Quilt      ScreenshotConfig `yaml:"quilt" json:"quilt"`
	TwoD       ScreenshotConfig `yaml:"twoD" json:"twoD"`
}

// Default returns the settings of a fresh installation.
func Default() Settings {
	return Settings{
		Tiling: TilingSettings{
			Preset: tiling.Automatic,
			Custom: tiling.Custom.Quality(),
		},
		Rendering: RenderingSettings{
			Vsync:        true,
			CustomAspect: Vec2{X: 3, Y: 4},
		},
		Window: WindowSettings{
			PlacementMode: PlacementAutomatic,
			CustomWindow:  WindowLocation{X: 2560, Y: 0, Width: 2560, Height: 1600},
			DebugWindow:   WindowLocation{X: 200, Y: 200, Width: 800, Height: 800},
		},
		Screenshots: ScreenshotSettings{
			Dir:        "Screenshots",
			Lenticular: ScreenshotConfig{FileName: "LenticularScreenshot", Key: "F10"},
			Quilt:      ScreenshotConfig{FileName: "ScreenshotQuilt", Key: "F9"},
			TwoD:       ScreenshotConfig{FileName: "Screenshot2D", Key: "F8", Width: 1280, Height: 720},
		},
		Calibration: calibration.Default(),
	}
}
