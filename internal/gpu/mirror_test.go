//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/holoplay/render"
	"github.com/gogpu/holoplay/tiling"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func TestQuiltMirrorLifecycle(t *testing.T) {
	device, queue := createNoopDevice(t)
	m := NewQuiltMirror(device, queue)

	if m.View() != nil {
		t.Error("view allocated before Ensure")
	}
	if err := m.Upload(render.NewTarget("quilt", 4, 4, render.FormatRGBA16)); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("Upload before Ensure: err = %v", err)
	}
	if _, err := m.Readback(); !errors.Is(err, ErrNotAllocated) {
		t.Errorf("Readback before Ensure: err = %v", err)
	}

	if err := m.Ensure(8, 4); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	view := m.View()
	if view == nil {
		t.Fatal("no view after Ensure")
	}
	if err := m.Ensure(8, 4); err != nil || m.View() != view {
		t.Error("same-size Ensure recreated the texture")
	}
	if err := m.Ensure(0, 4); err == nil {
		t.Error("zero width accepted")
	}

	if err := m.Upload(render.NewTarget("quilt", 4, 4, render.FormatRGBA16)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("mismatched Upload: err = %v", err)
	}
	if err := m.Upload(render.NewTarget("quilt", 8, 4, render.FormatRGBA16)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if m.Uploads() != 1 {
		t.Errorf("uploads = %d", m.Uploads())
	}

	img, err := m.Readback()
	if err != nil {
		t.Fatalf("Readback: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 8, 4) {
		t.Errorf("readback bounds = %v", img.Bounds())
	}

	m.Destroy()
	if w, h := m.Size(); w != 0 || h != 0 || m.View() != nil {
		t.Error("Destroy kept the texture")
	}
	m.Destroy()
}

func TestQuiltMirrorWithManager(t *testing.T) {
	device, queue := createNoopDevice(t)
	m := NewQuiltMirror(device, queue)
	mgr := render.NewManager(render.WithMirror(m))

	q := tiling.New("", 2, 2, 512, 256)
	if _, _, err := mgr.EnsureQuiltTarget(q); err != nil {
		t.Fatal(err)
	}
	if w, h := m.Size(); w != 512 || h != 256 {
		t.Errorf("mirror size = %dx%d, want the quilt size", w, h)
	}
	if err := mgr.SyncMirror(); err != nil {
		t.Fatalf("SyncMirror: %v", err)
	}
	if m.Uploads() != 1 {
		t.Errorf("uploads = %d", m.Uploads())
	}
	mgr.Close()
	if m.View() != nil {
		t.Error("manager Close did not destroy the mirror")
	}
}

// patternDevice fills every mapped buffer with a known byte pattern and
// counts unmaps.
type patternDevice struct {
	hal.Device
	maps, unmaps int
}

func (d *patternDevice) MapBuffer(buffer hal.Buffer, offset, size uint64) (hal.BufferMapping, error) {
	mapping, err := d.Device.MapBuffer(buffer, offset, size)
	if err != nil {
		return mapping, err
	}
	data := unsafe.Slice((*byte)(mapping.Ptr), size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	d.maps++
	return mapping, nil
}

func (d *patternDevice) UnmapBuffer(buffer hal.Buffer) error {
	d.unmaps++
	return d.Device.UnmapBuffer(buffer)
}

// stalledQueue never reports a submission as completed.
type stalledQueue struct {
	hal.Queue
}

func (stalledQueue) PollCompleted() uint64 { return 0 }

func TestQuiltMirrorReadbackRows(t *testing.T) {
	device, queue := createNoopDevice(t)
	dev := &patternDevice{Device: device}
	m := NewQuiltMirror(dev, queue)
	defer m.Destroy()

	if err := m.Ensure(8, 4); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	img, err := m.Readback()
	if err != nil {
		t.Fatalf("Readback: %v", err)
	}
	if dev.maps != 1 || dev.unmaps != 1 {
		t.Errorf("maps = %d, unmaps = %d, want 1 each", dev.maps, dev.unmaps)
	}
	// Rows are read at the 256-byte copy pitch and packed tightly.
	for y := range 4 {
		for k := range 8 * 4 {
			want := byte((y*copyPitchAlignment + k) % 251)
			if got := img.Pix[y*img.Stride+k]; got != want {
				t.Fatalf("pix[%d][%d] = %d, want %d", y, k, got, want)
			}
		}
	}
}

func TestQuiltMirrorReadbackTimeout(t *testing.T) {
	device, queue := createNoopDevice(t)
	m := NewQuiltMirror(device, stalledQueue{Queue: queue})

	idx, err := queue.Submit(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.waitSubmission(idx, 10*time.Millisecond); !errors.Is(err, ErrReadbackTimeout) {
		t.Errorf("stalled queue: err = %v", err)
	}
	if err := NewQuiltMirror(device, queue).waitSubmission(idx, time.Second); err != nil {
		t.Errorf("completed submission: err = %v", err)
	}
}

func TestPackRGBA8(t *testing.T) {
	c := color.RGBA64{R: 0xff00, G: 0x8000, B: 0x0100, A: 0xffff}
	src64 := image.NewRGBA64(image.Rect(0, 0, 2, 1))
	src64.SetRGBA64(0, 0, c)
	src64.SetRGBA64(1, 0, c)

	dst := make([]byte, 8)
	packRGBA8(dst, src64)
	want := []byte{0xff, 0x80, 0x01, 0xff}
	for i := range 8 {
		if dst[i] != want[i%4] {
			t.Fatalf("RGBA64 packed = %v", dst)
		}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, 3, 3))
	rgba.SetRGBA(1, 1, color.RGBA{1, 2, 3, 4})
	sub := rgba.SubImage(image.Rect(1, 1, 2, 2))
	dst = make([]byte, 4)
	packRGBA8(dst, sub)
	if dst[0] != 1 || dst[3] != 4 {
		t.Errorf("sub-image packed = %v", dst)
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, color.Gray{Y: 0x40})
	packRGBA8(dst, gray)
	if dst[0] != 0x40 || dst[3] != 0xff {
		t.Errorf("gray packed = %v", dst)
	}
}

func TestLenticularShader(t *testing.T) {
	device, _ := createNoopDevice(t)
	s, err := NewLenticularShader(device)
	if err != nil {
		t.Fatalf("NewLenticularShader: %v", err)
	}
	if s.Module() == nil {
		t.Error("nil module")
	}
	s.Destroy()
	s.Destroy()
	if s.Module() != nil {
		t.Error("module kept after Destroy")
	}
}
