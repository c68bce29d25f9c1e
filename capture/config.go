// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"github.com/gogpu/holoplay/render"
)

// ViewInfo describes one camera of the array.
type ViewInfo struct {
	// Index is the view index within its rendering config.
	Index int

	// Offset is the normalised position along the camera line, -0.5..0.5.
	Offset float32

	// Shift is the horizontal camera displacement in scene units.
	Shift float32

	View mgl32.Mat4
	Proj mgl32.Mat4
}

// RenderingConfig is one group of views rendered into a shared target laid
// out as a Rows x Cols grid.
type RenderingConfig struct {
	Views  []ViewInfo
	Rows   int
	Cols   int
	Target render.Handle
}

// SceneRenderer draws the scene as seen from one view. Rendering the scene
// itself is the host's job.
type SceneRenderer interface {
	RenderView(ctx context.Context, dst draw.Image, view ViewInfo) error
}

// SceneRendererFunc adapts a function to SceneRenderer.
type SceneRendererFunc func(ctx context.Context, dst draw.Image, view ViewInfo) error

// RenderView implements SceneRenderer.
func (f SceneRendererFunc) RenderView(ctx context.Context, dst draw.Image, view ViewInfo) error {
	return f(ctx, dst, view)
}
