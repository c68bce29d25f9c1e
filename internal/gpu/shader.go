//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/holoplay/lenticular"
)

// ErrEmptyShader is returned when the embedded shader source is missing.
var ErrEmptyShader = errors.New("gpu: lenticular shader source is empty")

// LenticularShader is the compiled lenticular interleave shader.
type LenticularShader struct {
	device hal.Device
	module hal.ShaderModule
}

// NewLenticularShader compiles the lenticular shader on device.
func NewLenticularShader(device hal.Device) (*LenticularShader, error) {
	src := lenticular.ShaderSource()
	if src == "" {
		return nil, ErrEmptyShader
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "lenticular_shader",
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: compile lenticular shader: %w", err)
	}
	return &LenticularShader{device: device, module: module}, nil
}

// Module returns the shader module, or nil after Destroy.
func (s *LenticularShader) Module() hal.ShaderModule {
	return s.module
}

// Destroy releases the shader module.
func (s *LenticularShader) Destroy() {
	if s.module != nil {
		s.device.DestroyShaderModule(s.module)
		s.module = nil
	}
}
