// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tiling computes how a quilt image is divided into view tiles,
// and provides the named tiling presets.
package tiling

import (
	"fmt"
	"image"
)

// Editor limits applied to user-edited (custom) qualities by Clamp.
const (
	MinTilesX = 1
	MaxTilesX = 16
	MinTilesY = 1
	MaxTilesY = 160
	MinQuilt  = 512
	MaxQuilt  = 8192
)

// Quality describes how a quilt image is divided into tiles.
//
// The derived fields (TileSizeX, TileSizeY, PortionX, PortionY) are only
// valid after Setup. New calls Setup; callers that edit the geometry fields
// directly must call Setup again.
type Quality struct {
	// Label is a display name. It is not part of the identity of a Quality.
	Label string `yaml:"label" json:"label"`

	TilesX int `yaml:"tilesX" json:"tilesX"`
	TilesY int `yaml:"tilesY" json:"tilesY"`
	QuiltW int `yaml:"quiltW" json:"quiltW"`
	QuiltH int `yaml:"quiltH" json:"quiltH"`

	// Overscan is carried for the capture layer. It is not part of identity.
	Overscan bool `yaml:"overscan" json:"overscan"`

	// Editable marks the user-editable custom quality.
	Editable bool `yaml:"editable" json:"editable"`

	TileSizeX int     `yaml:"-" json:"tileSizeX"`
	TileSizeY int     `yaml:"-" json:"tileSizeY"`
	PortionX  float32 `yaml:"-" json:"portionX"`
	PortionY  float32 `yaml:"-" json:"portionY"`
}

// New returns a Quality with its derived fields computed.
func New(label string, tilesX, tilesY, quiltW, quiltH int) Quality {
	q := Quality{
		Label:  label,
		TilesX: tilesX,
		TilesY: tilesY,
		QuiltW: quiltW,
		QuiltH: quiltH,
	}
	q.Setup()
	return q
}

// Setup recomputes the tile size in pixels and the fraction of the quilt
// covered by whole tiles.
//
// Tile sizes use truncating integer division, so any remainder pixels at the
// right and bottom edges of the quilt are left unused. Tile counts must be
// positive; validating them is the job of the settings layer.
func (q *Quality) Setup() {
	q.TileSizeX = q.QuiltW / q.TilesX
	q.TileSizeY = q.QuiltH / q.TilesY
	q.PortionX = float32(q.TilesX) * float32(q.TileSizeX) / float32(q.QuiltW)
	q.PortionY = float32(q.TilesY) * float32(q.TileSizeY) / float32(q.QuiltH)
}

// Equal reports whether q and o describe the same tile geometry.
// Label, Overscan and Editable are ignored.
func (q Quality) Equal(o Quality) bool {
	return q.TilesX == o.TilesX &&
		q.TilesY == o.TilesY &&
		q.QuiltW == o.QuiltW &&
		q.QuiltH == o.QuiltH
}

// NumTiles returns the number of tiles, which is the number of views.
func (q Quality) NumTiles() int {
	return q.TilesX * q.TilesY
}

// Waste returns the fraction of quilt pixels not covered by any tile.
func (q Quality) Waste() float64 {
	total := q.QuiltW * q.QuiltH
	if total <= 0 {
		return 0
	}
	used := q.TilesX * q.TileSizeX * q.TilesY * q.TileSizeY
	return float64(total-used) / float64(total)
}

// TileRect returns the pixel rectangle of tile i in the quilt.
// Tiles are numbered row-major from the top-left corner.
func (q Quality) TileRect(i int) image.Rectangle {
	col := i % q.TilesX
	row := i / q.TilesX
	x := col * q.TileSizeX
	y := row * q.TileSizeY
	return image.Rect(x, y, x+q.TileSizeX, y+q.TileSizeY)
}

// Clamp limits the geometry to the ranges accepted by the editor and
// recomputes the derived fields.
func (q *Quality) Clamp() {
	q.TilesX = clamp(q.TilesX, MinTilesX, MaxTilesX)
	q.TilesY = clamp(q.TilesY, MinTilesY, MaxTilesY)
	q.QuiltW = clamp(q.QuiltW, MinQuilt, MaxQuilt)
	q.QuiltH = clamp(q.QuiltH, MinQuilt, MaxQuilt)
	q.Setup()
}

// String implements fmt.Stringer.
func (q Quality) String() string {
	return fmt.Sprintf("%s %dx%d %dx%d", q.Label, q.TilesX, q.TilesY, q.QuiltW, q.QuiltH)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
