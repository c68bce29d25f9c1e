//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/holoplay/internal/gpu"
	"github.com/gogpu/holoplay/render"
)

// newNoopMirror creates a quilt mirror on the noop backend and compiles the
// lenticular shader module on the same device. It exercises the upload path
// without a GPU.
func newNoopMirror(a *app) (render.Mirror, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("gpu instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, errors.New("gpu: no adapters")
	}
	dev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("gpu device: %w", err)
	}
	shader, err := gpu.NewLenticularShader(dev.Device)
	if err != nil {
		dev.Device.Destroy()
		instance.Destroy()
		return nil, nil, err
	}
	m := gpu.NewQuiltMirror(dev.Device, dev.Queue, gpu.WithLogger(a.logger))
	release := func() {
		a.logger.Debug("quilt mirror", "uploads", m.Uploads())
		m.Destroy()
		shader.Destroy()
		dev.Device.Destroy()
		instance.Destroy()
	}
	return m, release, nil
}
