//go:build nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"

	"github.com/gogpu/holoplay/render"
)

func newNoopMirror(*app) (render.Mirror, func(), error) {
	return nil, nil, errors.New("built without GPU support (nogpu)")
}
