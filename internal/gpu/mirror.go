//go:build !nogpu

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/render"
)

// Mirror errors.
var (
	// ErrNotAllocated is returned when the mirror has no texture yet.
	ErrNotAllocated = errors.New("gpu: quilt texture not allocated")

	// ErrSizeMismatch is returned when a target does not match the texture.
	ErrSizeMismatch = errors.New("gpu: target size does not match quilt texture")

	// ErrReadbackTimeout is returned when the readback copy did not finish in time.
	ErrReadbackTimeout = errors.New("gpu: readback timed out")
)

// copyPitchAlignment is the row alignment required for texture to buffer
// copies.
const copyPitchAlignment = 256

// readbackTimeout bounds how long Readback waits for the copy.
const readbackTimeout = 5 * time.Second

// QuiltMirror keeps a GPU texture in sync with the CPU quilt so a GPU
// presenter can sample it. It implements render.Mirror.
//
// The texture is RGBA8; 16-bit quilts are narrowed on upload.
type QuiltMirror struct {
	device hal.Device
	queue  hal.Queue
	logger *slog.Logger

	mu      sync.Mutex
	tex     hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
	staging []byte
	uploads int
}

var _ render.Mirror = (*QuiltMirror)(nil)

// MirrorOption configures a QuiltMirror.
type MirrorOption func(*QuiltMirror)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) MirrorOption {
	return func(m *QuiltMirror) {
		m.logger = logging.OrNop(l)
	}
}

// NewQuiltMirror creates a mirror on device. The texture is created by the
// first Ensure.
func NewQuiltMirror(device hal.Device, queue hal.Queue, opts ...MirrorOption) *QuiltMirror {
	m := &QuiltMirror{
		device: device,
		queue:  queue,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure (re)creates the texture when the quilt size changed.
func (m *QuiltMirror) Ensure(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("gpu: invalid quilt size %dx%d", width, height)
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // checked positive above

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tex != nil && m.width == w && m.height == h {
		return nil
	}
	m.destroyLocked()

	format := render.FormatRGBA8.TextureFormat()
	tex, err := m.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "quilt",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("gpu: create quilt texture: %w", err)
	}
	view, err := m.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "quilt_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		m.device.DestroyTexture(tex)
		return fmt.Errorf("gpu: create quilt texture view: %w", err)
	}

	m.tex, m.view = tex, view
	m.width, m.height = w, h
	m.staging = make([]byte, int(w)*int(h)*4)
	m.logger.Debug("gpu: quilt texture created", "width", w, "height", h)
	return nil
}

// Upload copies the target pixels into the texture.
func (m *QuiltMirror) Upload(t *render.Target) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tex == nil {
		return ErrNotAllocated
	}
	if t.Width() != int(m.width) || t.Height() != int(m.height) {
		return fmt.Errorf("%w: %dx%d, texture %dx%d", ErrSizeMismatch, t.Width(), t.Height(), m.width, m.height)
	}

	packRGBA8(m.staging, t.Image())
	err := m.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: m.tex, MipLevel: 0},
		m.staging,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  m.width * 4,
			RowsPerImage: m.height,
		},
		&hal.Extent3D{Width: m.width, Height: m.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("gpu: write quilt texture: %w", err)
	}
	m.uploads++
	return nil
}

// Uploads returns the number of completed uploads.
func (m *QuiltMirror) Uploads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploads
}

// View returns the texture view for binding, or nil before Ensure.
func (m *QuiltMirror) View() hal.TextureView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

// Size returns the texture size.
func (m *QuiltMirror) Size() (width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.width), int(m.height)
}

// Readback copies the texture back to the CPU. It blocks until the GPU
// finished the copy.
func (m *QuiltMirror) Readback() (*image.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tex == nil {
		return nil, ErrNotAllocated
	}
	w, h := m.width, m.height
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	size := uint64(alignedBytesPerRow) * uint64(h)

	buf, err := m.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quilt_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create readback buffer: %w", err)
	}
	defer m.device.DestroyBuffer(buf)

	encoder, err := m.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "quilt_readback"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("quilt_readback"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: m.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(m.tex, buf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: m.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: m.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer m.device.FreeCommandBuffer(cmdBuf)

	m.queue.SetSwapchainSuppressed(true)
	idx, err := m.queue.Submit([]hal.CommandBuffer{cmdBuf})
	m.queue.SetSwapchainSuppressed(false)
	if err != nil {
		return nil, fmt.Errorf("gpu: submit: %w", err)
	}
	if err := m.waitSubmission(idx, readbackTimeout); err != nil {
		return nil, err
	}

	mapping, err := m.device.MapBuffer(buf, 0, size)
	if err != nil {
		return nil, fmt.Errorf("gpu: map readback buffer: %w", err)
	}
	defer func() {
		if err := m.device.UnmapBuffer(buf); err != nil {
			m.logger.Warn("gpu: unmap readback buffer", "err", err)
		}
	}()
	data := unsafe.Slice((*byte)(mapping.Ptr), size)

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := range int(h) {
		src := data[y*int(alignedBytesPerRow):]
		copy(img.Pix[y*img.Stride:(y+1)*img.Stride], src[:bytesPerRow])
	}
	return img, nil
}

// waitSubmission blocks until the queue completed submission idx.
func (m *QuiltMirror) waitSubmission(idx uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for m.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d", ErrReadbackTimeout, idx)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Destroy releases the texture. The mirror can be reused by calling Ensure.
func (m *QuiltMirror) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyLocked()
}

func (m *QuiltMirror) destroyLocked() {
	if m.view != nil {
		m.device.DestroyTextureView(m.view)
		m.view = nil
	}
	if m.tex != nil {
		m.device.DestroyTexture(m.tex)
		m.tex = nil
	}
	m.width, m.height = 0, 0
	m.staging = nil
}

// packRGBA8 writes img as tightly packed 8-bit RGBA into dst.
func packRGBA8(dst []byte, img image.Image) {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.RGBA:
		for y := range b.Dy() {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(dst[y*b.Dx()*4:(y+1)*b.Dx()*4], row[:b.Dx()*4])
		}
	case *image.RGBA64:
		i := 0
		for y := range b.Dy() {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			// Keep the high byte of each big-endian channel.
			for x := 0; x < b.Dx()*8; x += 2 {
				dst[i] = row[x]
				i++
			}
		}
	default:
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, a := img.At(x, y).RGBA()
				dst[i+0] = uint8(r >> 8)
				dst[i+1] = uint8(g >> 8)
				dst[i+2] = uint8(bl >> 8)
				dst[i+3] = uint8(a >> 8)
				i += 4
			}
		}
	}
}
