// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package calibration holds the optical parameters of a lenticular display
// and derives the values the interleave pass samples with.
package calibration

import (
	"math"
	"sync"
)

// Calibration describes one physical display unit.
type Calibration struct {
	// Pitch is the number of lenticules per inch.
	Pitch float32 `yaml:"pitch" json:"pitch"`

	// Slope is the lenticule tilt, in pixels of x per pixel of y.
	Slope float32 `yaml:"slope" json:"slope"`

	// Center is the phase offset of view 0, in lenticule widths.
	Center float32 `yaml:"center" json:"center"`

	// ViewCone is the angle covered by all views, in degrees.
	ViewCone float32 `yaml:"viewCone" json:"viewCone"`

	DPI float32 `yaml:"dpi" json:"dpi"`

	ScreenW int `yaml:"screenW" json:"screenW"`
	ScreenH int `yaml:"screenH" json:"screenH"`

	// FlipImageX mirrors the output horizontally.
	FlipImageX bool `yaml:"flipImageX" json:"flipImageX"`

	// InvView reverses the order in which views are laid out across a lenticule.
	InvView bool `yaml:"invView" json:"invView"`
}

// Default returns the calibration of a Looking Glass Portrait. Real units
// ship their own calibration, which the display manager loads into a Store.
func Default() Calibration {
	return Calibration{
		Pitch:    52.58,
		Slope:    -7.2,
		Center:   0.5,
		ViewCone: 40,
		DPI:      324,
		ScreenW:  1536,
		ScreenH:  2048,
		InvView:  true,
	}
}

// DisplayAspect returns the physical aspect ratio of the panel.
func (c Calibration) DisplayAspect() float32 {
	if c.ScreenH == 0 {
		return 1
	}
	return float32(c.ScreenW) / float32(c.ScreenH)
}

// Uniforms are the per-frame values consumed by the interleave pass.
type Uniforms struct {
	// Pitch is the number of lenticules across the normalised screen width.
	Pitch float32

	// Tilt is the horizontal shift of the lenticule pattern per unit of
	// normalised screen height.
	Tilt float32

	Center float32

	// Subp is the width of one subpixel in normalised screen units.
	Subp float32

	// Aspect is the aspect ratio views are sampled with.
	Aspect float32

	FlipX   bool
	InvView bool
}

// Uniforms derives the interleave values for the given sampling aspect.
func (c Calibration) Uniforms(aspect float32) Uniforms {
	u := Uniforms{
		Center:  c.Center,
		Aspect:  aspect,
		FlipX:   c.FlipImageX,
		InvView: c.InvView,
	}
	if c.ScreenW <= 0 || c.DPI <= 0 || c.Slope == 0 {
		u.Pitch = c.Pitch
		return u
	}
	screenInches := float64(c.ScreenW) / float64(c.DPI)
	u.Pitch = float32(float64(c.Pitch) * screenInches * math.Cos(math.Atan(1/float64(c.Slope))))
	u.Tilt = float32(c.ScreenH) / (float32(c.ScreenW) * c.Slope)
	u.Subp = 1 / (3 * float32(c.ScreenW))
	return u
}

// Store holds the calibration of the connected display. Commands update it
// between frames; the pipeline takes a Snapshot once per frame.
type Store struct {
	mu  sync.RWMutex
	cur Calibration
}

// NewStore returns a Store holding c.
func NewStore(c Calibration) *Store {
	return &Store{cur: c}
}

// Snapshot returns a copy of the current calibration.
func (s *Store) Snapshot() Calibration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Set replaces the calibration.
func (s *Store) Set(c Calibration) {
	s.mu.Lock()
	s.cur = c
	s.mu.Unlock()
}

// Update applies fn to the calibration under the store lock.
func (s *Store) Update(fn func(*Calibration)) {
	s.mu.Lock()
	fn(&s.cur)
	s.mu.Unlock()
}
