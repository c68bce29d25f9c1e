// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera describes the virtual camera array that captures the views.
//
// Views sit on a horizontal line at Distance from the focal plane and all
// look at the same focal rectangle, spread across ViewCone degrees. Each
// view uses an off-axis projection so the focal plane stays fixed on screen.
type Camera struct {
	// ViewCone is the total angle covered by all views, in degrees.
	ViewCone float32

	// FOV is the vertical field of view, in degrees.
	FOV float32

	// Distance from the camera line to the focal plane.
	Distance float32

	// Aspect is the width / height of a view.
	Aspect float32

	Near, Far float32
}

// DefaultCamera returns a camera matching a 40 degree view cone display.
func DefaultCamera(aspect float32) Camera {
	return Camera{
		ViewCone: 40,
		FOV:      14,
		Distance: 10,
		Aspect:   aspect,
		Near:     0.1,
		Far:      100,
	}
}

// View returns view i of n. Offset runs from -0.5 for the leftmost view to
// 0.5 for the rightmost; a single view sits at 0.
func (c Camera) View(i, n int) ViewInfo {
	var offset float32
	if n > 1 {
		offset = float32(i)/float32(n-1) - 0.5
	}
	return c.at(i, offset)
}

// Center returns the centre view used for flat (2D) rendering.
func (c Camera) Center() ViewInfo {
	return c.at(0, 0)
}

// Views returns all n views.
func (c Camera) Views(n int) []ViewInfo {
	views := make([]ViewInfo, n)
	for i := range views {
		views[i] = c.View(i, n)
	}
	return views
}

func (c Camera) at(i int, offset float32) ViewInfo {
	angle := float64(offset * mgl32.DegToRad(c.ViewCone))
	shift := c.Distance * float32(math.Tan(angle))

	fov := mgl32.DegToRad(c.FOV)
	halfH := c.Distance * float32(math.Tan(float64(fov)/2))
	halfW := halfH * c.Aspect

	view := mgl32.Translate3D(-shift, 0, -c.Distance)
	proj := mgl32.Perspective(fov, c.Aspect, c.Near, c.Far)
	if halfW != 0 {
		// Shear the frustum back onto the focal rectangle.
		proj[8] += shift / halfW
	}

	return ViewInfo{
		Index:  i,
		Offset: offset,
		Shift:  shift,
		View:   view,
		Proj:   proj,
	}
}
