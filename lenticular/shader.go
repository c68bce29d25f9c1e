// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package lenticular

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/naga"
)

//go:embed shaders/lenticular.wgsl
var lenticularWGSL string

// ShaderSource returns the WGSL source of the interleave pass.
func ShaderSource() string {
	return lenticularWGSL
}

// CompileShader compiles the interleave pass to SPIR-V words.
func CompileShader() ([]uint32, error) {
	spirv, err := naga.Compile(lenticularWGSL)
	if err != nil {
		return nil, fmt.Errorf("lenticular: compile shader: %w", err)
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

// UniformSize is the size in bytes of the shader's Uniforms struct.
const UniformSize = 64

// UniformBytes packs p into the layout of the shader's Uniforms struct for
// a surface of outW x outH pixels.
func UniformBytes(p Params, outW, outH int) []byte {
	u := p.Uniforms
	outAspect := float32(1)
	if outH > 0 {
		outAspect = float32(outW) / float32(outH)
	}
	vals := [UniformSize / 4]float32{
		u.Pitch, u.Tilt, u.Center, u.Subp,
		u.Aspect, outAspect, boolf(u.FlipX), boolf(u.InvView),
		float32(p.Tiling.TilesX), float32(p.Tiling.TilesY),
		p.Tiling.PortionX, p.Tiling.PortionY,
		boolf(p.QuiltMode),
	}
	buf := make([]byte, UniformSize)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
