// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// ParseResolution parses "WIDTHxHEIGHT" into x and y. The separator is
// case-insensitive and surrounding space is ignored. Fractional values are
// truncated and negative values clamp to zero. On failure x and y are left
// unchanged.
func ParseResolution(s string, x, y *int) bool {
	s = strings.TrimSpace(cases.Fold().String(s))
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return false
	}
	w, h = strings.TrimSpace(w), strings.TrimSpace(h)
	if w == "" || h == "" {
		return false
	}
	xv, ok := parseDim(w)
	if !ok {
		return false
	}
	yv, ok := parseDim(h)
	if !ok {
		return false
	}
	*x, *y = xv, yv
	return true
}

func parseDim(s string) (int, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt32 {
		return 0, false
	}
	return int(max(v, 0)), true
}
