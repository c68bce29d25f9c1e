// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package tiling

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnknownPreset is returned by ParsePreset for an unrecognised name.
var ErrUnknownPreset = errors.New("tiling: unknown preset")

// Preset selects one of the named tiling qualities.
type Preset uint8

// Presets, in the order they are offered to the user.
const (
	Automatic Preset = iota
	Portrait
	PortraitHiRes
	FourK
	EightK
	EightNineLegacy
	Custom
)

var presetNames = [...]string{
	Automatic:       "Automatic",
	Portrait:        "Portrait",
	PortraitHiRes:   "PortraitHiRes",
	FourK:           "FourK",
	EightK:          "EightK",
	EightNineLegacy: "EightNineLegacy",
	Custom:          "Custom",
}

// String returns the command token of the preset.
func (p Preset) String() string {
	if int(p) < len(presetNames) {
		return presetNames[p]
	}
	return "Preset(" + strconv.Itoa(int(p)) + ")"
}

// Quality returns the tiling quality of the preset.
// Custom returns the default starting point for user edits.
func (p Preset) Quality() Quality {
	switch p {
	case Automatic:
		return New("Automatic", 8, 6, 3360, 3360)
	case Portrait:
		return New("Portrait", 8, 6, 3360, 3360)
	case PortraitHiRes:
		return New("Portrait HiRes", 8, 6, 3840, 3840)
	case FourK:
		return New("4K Res", 5, 9, 4096, 4096)
	case EightK:
		return New("8K Res", 5, 9, 8192, 8192)
	case EightNineLegacy:
		return New("Extra Low", 5, 9, 4096, 4096)
	default:
		q := New("Custom", 8, 6, 3360, 3360)
		q.Editable = true
		return q
	}
}

// Selectable reports whether the preset can be chosen by name from the
// command surface. Custom is edited, not selected.
func (p Preset) Selectable() bool {
	return p < Custom
}

// ParsePreset returns the preset with the given name, ignoring case.
func ParsePreset(name string) (Preset, error) {
	for i, n := range presetNames {
		if strings.EqualFold(n, name) {
			return Preset(i), nil
		}
	}
	return 0, ErrUnknownPreset
}

// MarshalText implements encoding.TextMarshaler.
func (p Preset) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Preset) UnmarshalText(b []byte) error {
	v, err := ParsePreset(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
