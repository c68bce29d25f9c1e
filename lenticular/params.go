// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lenticular interleaves a quilt into the subpixel pattern of a
// lenticular display.
//
// Every subpixel of the output sees a different view through the lens
// sheet. The Presenter works out which view that is from the display
// calibration and samples the matching quilt tile.
package lenticular

import (
	"log/slog"
	"math"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/settings"
	"github.com/gogpu/holoplay/tiling"
)

// Params is everything one Present call needs.
type Params struct {
	Tiling   tiling.Quality
	Uniforms calibration.Uniforms

	// QuiltMode shows the quilt as-is instead of interleaving it.
	QuiltMode bool
}

// NewParams builds the presentation parameters for one frame.
//
// With UseCustomAspect set, views are sampled at the custom aspect ratio.
// A ratio that is not a positive finite number falls back to the display
// aspect and is logged.
func NewParams(r settings.RenderingSettings, cal calibration.Calibration, q tiling.Quality, logger *slog.Logger) Params {
	aspect := cal.DisplayAspect()
	if r.UseCustomAspect {
		custom := r.CustomAspectRatio()
		if validAspect(custom) {
			aspect = custom
		} else {
			logging.OrNop(logger).Warn("lenticular: invalid custom aspect, using display aspect",
				"x", r.CustomAspect.X, "y", r.CustomAspect.Y, "aspect", aspect)
		}
	}
	return Params{
		Tiling:    q,
		Uniforms:  cal.Uniforms(aspect),
		QuiltMode: r.QuiltMode,
	}
}

func validAspect(a float32) bool {
	f := float64(a)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
