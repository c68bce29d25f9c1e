// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/screenshot"
	"github.com/gogpu/holoplay/settings"
	"github.com/gogpu/holoplay/tiling"
)

// Target is what the HoloPlay commands act on.
type Target interface {
	// RequestScreenshot queues a screenshot; false if one of that kind is
	// already pending.
	RequestScreenshot(kind screenshot.Kind, name string, showUI, addSuffix bool) bool

	UpdateSettings(fn func(*settings.Settings))
	UpdateCalibration(fn func(*calibration.Calibration))

	// Restart reopens the display window with the current settings.
	Restart()

	SaveSettings() error
}

// Command names.
const (
	LenticularScreenshot = "HoloPlay.LenticularScreenshot"
	ScreenshotQuilt      = "HoloPlay.ScreenshotQuilt"
	Screenshot2D         = "HoloPlay.Screenshot2D"
	Window               = "HoloPlay.Window"
	Shader               = "HoloPlay.Shader"
	Tiling               = "HoloPlay.Tiling"
	Rendering            = "HoloPlay.Rendering"
)

// NoSuffixFlag disables the numbered filename suffix of a screenshot.
const NoSuffixFlag = "-nosuffix"

// Register adds the HoloPlay commands to r, bound to t.
func Register(r *Router, t Target, logger *slog.Logger) error {
	h := &handlers{t: t, logger: logging.OrNop(logger)}
	cmds := []struct {
		name, help string
		fn         HandlerFunc
	}{
		{LenticularScreenshot, "[name] [-nosuffix]: save the interleaved output", h.screenshot(screenshot.Lenticular)},
		{ScreenshotQuilt, "[name] [-nosuffix]: save the quilt", h.screenshot(screenshot.Quilt)},
		{Screenshot2D, "[name] [-nosuffix]: save a flat render", h.screenshot(screenshot.TwoD)},
		{Window, "ClientSize WxH | PlacementMode mode", h.saving(h.window)},
		{Shader, "QuiltMode|CustomAspect 0/1 | Pitch|Center|Slope|ViewCone|DPI|CustomAspectX|CustomAspectY value", h.saving(h.shader)},
		{Tiling, "preset: select the quilt tiling", h.saving(h.tiling)},
		{Rendering, "Render2D 0/1", h.saving(h.rendering)},
	}
	for _, c := range cmds {
		if err := r.Register(c.name, c.help, c.fn); err != nil {
			return err
		}
	}
	// Older projects spell it this way.
	return r.Register("HoloPlay.Tilling", "alias of "+Tiling, h.saving(h.tiling))
}

type handlers struct {
	t      Target
	logger *slog.Logger
}

// saving persists the settings after a handled command.
func (h *handlers) saving(fn HandlerFunc) HandlerFunc {
	return func(args []string) bool {
		if !fn(args) {
			return false
		}
		if err := h.t.SaveSettings(); err != nil {
			h.logger.Error("command: save settings", "err", err)
		}
		return true
	}
}

func (h *handlers) screenshot(kind screenshot.Kind) HandlerFunc {
	return func(args []string) bool {
		name, suffix := parseScreenshotArgs(args)
		return h.t.RequestScreenshot(kind, name, false, suffix)
	}
}

// parseScreenshotArgs returns the first non-flag word as the filename.
func parseScreenshotArgs(args []string) (name string, addSuffix bool) {
	addSuffix = true
	for _, a := range args {
		switch {
		case equal(a, NoSuffixFlag):
			addSuffix = false
		case name == "" && !strings.HasPrefix(a, "-"):
			name = a
		}
	}
	return name, addSuffix
}

func (h *handlers) window(args []string) bool {
	if len(args) < 2 {
		return false
	}
	switch {
	case equal(args[0], "ClientSize"):
		var w, ht int
		if !ParseResolution(strings.Join(args[1:], " "), &w, &ht) || w == 0 || ht == 0 {
			return false
		}
		h.t.UpdateSettings(func(s *settings.Settings) {
			s.Window.CustomWindow.Width = w
			s.Window.CustomWindow.Height = ht
		})
		h.t.Restart()
		return true
	case equal(args[0], "PlacementMode"):
		mode, ok := parsePlacement(args[1])
		if !ok {
			return false
		}
		h.t.UpdateSettings(func(s *settings.Settings) {
			s.Window.PlacementMode = mode
		})
		return true
	}
	return false
}

func parsePlacement(s string) (settings.PlacementMode, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		m := settings.PlacementMode(n)
		return m, n >= 0 && n < 256 && m.Valid()
	}
	var m settings.PlacementMode
	if err := m.UnmarshalText([]byte(s)); err != nil {
		return 0, false
	}
	return m, true
}

func (h *handlers) shader(args []string) bool {
	if len(args) != 2 {
		return false
	}
	name, val := args[0], args[1]

	if equal(name, "QuiltMode") || equal(name, "CustomAspect") {
		on, ok := parseToggle(val)
		if !ok {
			return false
		}
		h.t.UpdateSettings(func(s *settings.Settings) {
			if equal(name, "QuiltMode") {
				s.Rendering.QuiltMode = on
			} else {
				s.Rendering.UseCustomAspect = on
			}
		})
		return true
	}

	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return false
	}
	v := float32(f)

	var calField func(*calibration.Calibration)
	switch {
	case equal(name, "Pitch"):
		calField = func(c *calibration.Calibration) { c.Pitch = v }
	case equal(name, "Center"):
		calField = func(c *calibration.Calibration) { c.Center = v }
	case equal(name, "Slope"):
		calField = func(c *calibration.Calibration) { c.Slope = v }
	case equal(name, "ViewCone"):
		calField = func(c *calibration.Calibration) { c.ViewCone = v }
	case equal(name, "DPI"):
		calField = func(c *calibration.Calibration) { c.DPI = v }
	case equal(name, "CustomAspectX"):
		h.t.UpdateSettings(func(s *settings.Settings) { s.Rendering.CustomAspect.X = v })
		return true
	case equal(name, "CustomAspectY"):
		h.t.UpdateSettings(func(s *settings.Settings) { s.Rendering.CustomAspect.Y = v })
		return true
	default:
		return false
	}
	h.t.UpdateCalibration(calField)
	return true
}

func (h *handlers) tiling(args []string) bool {
	if len(args) != 1 {
		return false
	}
	p, err := tiling.ParsePreset(args[0])
	if err != nil || !p.Selectable() {
		h.logger.Debug("command: unknown tiling preset", "preset", args[0])
		return false
	}
	h.t.UpdateSettings(func(s *settings.Settings) {
		s.Tiling.Preset = p
	})
	return true
}

func (h *handlers) rendering(args []string) bool {
	if len(args) != 2 || !equal(args[0], "Render2D") {
		return false
	}
	on, ok := parseToggle(args[1])
	if !ok {
		return false
	}
	h.t.UpdateSettings(func(s *settings.Settings) {
		s.Rendering.Render2D = on
	})
	return true
}

// parseToggle accepts an integer, non-zero meaning on.
func parseToggle(s string) (bool, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return false, false
	}
	return n != 0, true
}
