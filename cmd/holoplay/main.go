// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command holoplay runs the lenticular quilt player.
//
// Usage:
//
//	holoplay run [--listen :8080]
//	holoplay render --frames 1 --quilt-screenshot quilt
//	holoplay exec "HoloPlay.Tiling FourK"
//	holoplay shader -o lenticular.spv
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
