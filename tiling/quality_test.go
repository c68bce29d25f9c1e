// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"image"
	"testing"
)

func TestSetupExactValues(t *testing.T) {
	q := New("Automatic", 8, 6, 3360, 3360)

	if q.TileSizeX != 420 {
		t.Errorf("TileSizeX = %d, want 420", q.TileSizeX)
	}
	if q.TileSizeY != 560 {
		t.Errorf("TileSizeY = %d, want 560", q.TileSizeY)
	}
	if q.PortionX != 1 {
		t.Errorf("PortionX = %v, want 1", q.PortionX)
	}
	if q.PortionY != 1 {
		t.Errorf("PortionY = %v, want 1", q.PortionY)
	}
	if q.NumTiles() != 48 {
		t.Errorf("NumTiles() = %d, want 48", q.NumTiles())
	}
}

func TestSetupTruncates(t *testing.T) {
	q := New("odd", 5, 9, 4096, 4096)

	if q.TileSizeX != 819 {
		t.Errorf("TileSizeX = %d, want 819", q.TileSizeX)
	}
	if q.TileSizeY != 455 {
		t.Errorf("TileSizeY = %d, want 455", q.TileSizeY)
	}
	wantX := float32(5*819) / 4096
	if q.PortionX != wantX {
		t.Errorf("PortionX = %v, want %v", q.PortionX, wantX)
	}
	if q.Waste() <= 0 {
		t.Errorf("Waste() = %v, want > 0", q.Waste())
	}
}

func TestSetupInvariants(t *testing.T) {
	for tilesX := 1; tilesX <= 16; tilesX += 3 {
		for tilesY := 1; tilesY <= 40; tilesY += 7 {
			for _, w := range []int{tilesX, 100, 513, 3360, 4097} {
				for _, h := range []int{tilesY, 99, 1000, 8192} {
					if w < tilesX || h < tilesY {
						continue
					}
					q := New("", tilesX, tilesY, w, h)
					if q.TileSizeX*q.TilesX > q.QuiltW {
						t.Fatalf("%v: tiles overflow quilt width", q)
					}
					if q.TileSizeY*q.TilesY > q.QuiltH {
						t.Fatalf("%v: tiles overflow quilt height", q)
					}
					if q.PortionX <= 0 || q.PortionX > 1 {
						t.Fatalf("%v: PortionX = %v out of (0, 1]", q, q.PortionX)
					}
					if q.PortionY <= 0 || q.PortionY > 1 {
						t.Fatalf("%v: PortionY = %v out of (0, 1]", q, q.PortionY)
					}
				}
			}
		}
	}
}

func TestEqualIgnoresLabelAndOverscan(t *testing.T) {
	a := New("first", 8, 6, 3360, 3360)
	b := New("second", 8, 6, 3360, 3360)
	b.Overscan = true
	b.Editable = true

	if !a.Equal(a) {
		t.Error("Equal is not reflexive")
	}
	if !a.Equal(b) || !b.Equal(a) {
		t.Error("qualities with the same geometry should compare equal both ways")
	}

	tests := []struct {
		name string
		q    Quality
	}{
		{"tilesX", New("first", 7, 6, 3360, 3360)},
		{"tilesY", New("first", 8, 5, 3360, 3360)},
		{"quiltW", New("first", 8, 6, 3361, 3360)},
		{"quiltH", New("first", 8, 6, 3360, 3840)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a.Equal(tt.q) || tt.q.Equal(a) {
				t.Errorf("qualities differing in %s compare equal", tt.name)
			}
		})
	}
}

func TestTileRectRowMajor(t *testing.T) {
	q := New("", 2, 2, 100, 100)

	want := []image.Rectangle{
		image.Rect(0, 0, 50, 50),
		image.Rect(50, 0, 100, 50),
		image.Rect(0, 50, 50, 100),
		image.Rect(50, 50, 100, 100),
	}
	for i, w := range want {
		if got := q.TileRect(i); got != w {
			t.Errorf("TileRect(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestClamp(t *testing.T) {
	q := Quality{TilesX: 0, TilesY: 500, QuiltW: 100, QuiltH: 10000}
	q.Clamp()

	if q.TilesX != MinTilesX || q.TilesY != MaxTilesY {
		t.Errorf("tiles = %dx%d, want %dx%d", q.TilesX, q.TilesY, MinTilesX, MaxTilesY)
	}
	if q.QuiltW != MinQuilt || q.QuiltH != MaxQuilt {
		t.Errorf("quilt = %dx%d, want %dx%d", q.QuiltW, q.QuiltH, MinQuilt, MaxQuilt)
	}
	if q.TileSizeX != MinQuilt {
		t.Errorf("TileSizeX = %d, want %d (Setup not called)", q.TileSizeX, MinQuilt)
	}
}

func TestPresets(t *testing.T) {
	tests := []struct {
		preset         Preset
		tilesX, tilesY int
		quilt          int
		label          string
	}{
		{Automatic, 8, 6, 3360, "Automatic"},
		{Portrait, 8, 6, 3360, "Portrait"},
		{PortraitHiRes, 8, 6, 3840, "Portrait HiRes"},
		{FourK, 5, 9, 4096, "4K Res"},
		{EightK, 5, 9, 8192, "8K Res"},
		{EightNineLegacy, 5, 9, 4096, "Extra Low"},
		{Custom, 8, 6, 3360, "Custom"},
	}
	for _, tt := range tests {
		t.Run(tt.preset.String(), func(t *testing.T) {
			q := tt.preset.Quality()
			if q.TilesX != tt.tilesX || q.TilesY != tt.tilesY {
				t.Errorf("tiles = %dx%d, want %dx%d", q.TilesX, q.TilesY, tt.tilesX, tt.tilesY)
			}
			if q.QuiltW != tt.quilt || q.QuiltH != tt.quilt {
				t.Errorf("quilt = %dx%d, want %d", q.QuiltW, q.QuiltH, tt.quilt)
			}
			if q.Label != tt.label {
				t.Errorf("Label = %q, want %q", q.Label, tt.label)
			}
			if q.Editable != (tt.preset == Custom) {
				t.Errorf("Editable = %v", q.Editable)
			}
		})
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    Preset
		wantErr bool
	}{
		{"Automatic", Automatic, false},
		{"fourk", FourK, false},
		{"EIGHTK", EightK, false},
		{"EightNineLegacy", EightNineLegacy, false},
		{"Custom", Custom, false},
		{"Huge", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePreset(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePreset(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParsePreset(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPresetTextRoundTrip(t *testing.T) {
	b, err := PortraitHiRes.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var p Preset
	if err := p.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if p != PortraitHiRes {
		t.Errorf("round trip = %v, want PortraitHiRes", p)
	}
	if err := p.UnmarshalText([]byte("nope")); err == nil {
		t.Error("UnmarshalText accepted an unknown preset")
	}
}
