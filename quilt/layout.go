// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package quilt composites rendered views into the tiles of a quilt image.
//
// Views are placed row-major from the top-left tile: view i lands in row
// i / Cols and column i % Cols. Adjacent view indices are adjacent camera
// offsets, so this mapping must match the one the interleave pass samples
// with (see Layout.Rect and tiling.Quality.TileRect).
package quilt

import (
	"image"

	"github.com/gogpu/holoplay/tiling"
)

// Layout is a grid of equally sized tiles.
type Layout struct {
	Rows, Cols   int
	TileW, TileH int
}

// FromQuality returns the quilt layout of a tiling quality.
func FromQuality(q tiling.Quality) Layout {
	return Layout{
		Rows:  q.TilesY,
		Cols:  q.TilesX,
		TileW: q.TileSizeX,
		TileH: q.TileSizeY,
	}
}

// Grid returns the layout of rows x cols tiles covering bounds.
// Tile sizes are truncated like tiling.Quality.Setup.
func Grid(bounds image.Rectangle, rows, cols int) Layout {
	if rows <= 0 || cols <= 0 {
		return Layout{}
	}
	return Layout{
		Rows:  rows,
		Cols:  cols,
		TileW: bounds.Dx() / cols,
		TileH: bounds.Dy() / rows,
	}
}

// Len returns the number of tiles.
func (l Layout) Len() int {
	return l.Rows * l.Cols
}

// Cell returns the row and column of tile i.
func (l Layout) Cell(i int) (row, col int) {
	return i / l.Cols, i % l.Cols
}

// Rect returns the pixel rectangle of tile i.
func (l Layout) Rect(i int) image.Rectangle {
	row, col := l.Cell(i)
	x := col * l.TileW
	y := row * l.TileH
	return image.Rect(x, y, x+l.TileW, y+l.TileH)
}
