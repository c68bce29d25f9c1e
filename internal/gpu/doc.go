//go:build !nogpu

// Package gpu keeps GPU copies of the CPU render targets.
//
// The CPU pipeline stays authoritative: views are rendered, composited and
// interleaved in memory. This package mirrors the finished quilt into a
// wgpu texture and compiles the lenticular shader for hosts that present
// on the GPU.
//
// # Usage
//
//	mirror := gpu.NewQuiltMirror(device, queue)
//	p, err := holoplay.New(store, holoplay.WithMirror(mirror))
//
// Building with the nogpu tag removes the package.
package gpu
