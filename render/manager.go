// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"

	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/tiling"
)

// Manager errors.
var (
	// ErrInvalidSize is returned when a target is requested with a
	// non-positive dimension.
	ErrInvalidSize = errors.New("render: invalid target size")

	// ErrUnknownHandle is returned for a handle that was never allocated or
	// has been released.
	ErrUnknownHandle = errors.New("render: unknown target handle")
)

// QuiltClearColor is the color a freshly allocated quilt is cleared to.
var QuiltClearColor = color.RGBA{R: 255, A: 255}

// Handle identifies a target owned by a Manager. The zero Handle is invalid.
type Handle uint32

// Mirror keeps a GPU-resident copy of the quilt target.
type Mirror interface {
	// Ensure (re)allocates GPU storage for a quilt of the given size.
	Ensure(width, height int) error

	// Upload copies the quilt contents to the GPU.
	Upload(t *Target) error

	// Destroy releases GPU storage.
	Destroy()
}

// EnsureResult reports what EnsureQuiltTarget had to do.
type EnsureResult uint8

// EnsureQuiltTarget results.
const (
	Reused EnsureResult = iota
	Created
	Resized
)

func (r EnsureResult) String() string {
	switch r {
	case Created:
		return "created"
	case Resized:
		return "resized"
	}
	return "reused"
}

// Manager owns the quilt target and the per-view targets.
//
// Other components never keep raw references across frames: the quilt is
// re-fetched with EnsureQuiltTarget every frame and view targets are looked
// up by Handle.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu      sync.Mutex
	quilt   *Target
	targets map[Handle]*Target
	next    Handle
	mirror  Mirror
	logger  *slog.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMirror attaches a GPU mirror for the quilt.
func WithMirror(m Mirror) ManagerOption {
	return func(mgr *Manager) {
		mgr.mirror = m
	}
}

// WithLogger sets the logger. A nil logger keeps the manager silent.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(mgr *Manager) {
		if l != nil {
			mgr.logger = l
		}
	}
}

// NewManager creates an empty Manager. The quilt is allocated lazily.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		targets: make(map[Handle]*Target),
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureQuiltTarget returns the quilt target sized to q.QuiltW x q.QuiltH.
//
// The first call allocates a 16-bit target cleared to QuiltClearColor.
// Later calls reuse it, resizing in place when the dimensions changed.
func (m *Manager) EnsureQuiltTarget(q tiling.Quality) (*Target, EnsureResult, error) {
	if q.QuiltW <= 0 || q.QuiltH <= 0 {
		return nil, Reused, fmt.Errorf("%w: quilt %dx%d", ErrInvalidSize, q.QuiltW, q.QuiltH)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := Reused
	switch {
	case m.quilt == nil:
		m.quilt = NewTarget("quilt", q.QuiltW, q.QuiltH, FormatRGBA16)
		m.quilt.Clear(QuiltClearColor)
		result = Created
	case m.quilt.Resize(q.QuiltW, q.QuiltH):
		m.quilt.Clear(QuiltClearColor)
		result = Resized
	}

	if result != Reused {
		m.logger.Debug("quilt target "+result.String(),
			"width", q.QuiltW, "height", q.QuiltH, "format", FormatRGBA16)
		if m.mirror != nil {
			if err := m.mirror.Ensure(q.QuiltW, q.QuiltH); err != nil {
				m.logger.Warn("quilt mirror allocation failed", "err", err)
			}
		}
	}
	return m.quilt, result, nil
}

// Quilt returns the quilt target, or nil before the first EnsureQuiltTarget.
func (m *Manager) Quilt() *Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quilt
}

// SyncMirror uploads the quilt to the GPU mirror, if any.
// It must only be called after the quilt has been fully written.
func (m *Manager) SyncMirror() error {
	m.mu.Lock()
	quilt, mirror := m.quilt, m.mirror
	m.mu.Unlock()

	if quilt == nil || mirror == nil {
		return nil
	}
	return mirror.Upload(quilt)
}

// Allocate creates a target owned by the manager and returns its handle.
func (m *Manager) Allocate(label string, width, height int, format Format) (Handle, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %s %dx%d", ErrInvalidSize, label, width, height)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.next++
	h := m.next
	m.targets[h] = NewTarget(label, width, height, format)
	return h, nil
}

// Target returns the target for h.
func (m *Manager) Target(h Handle) (*Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[h]
	return t, ok
}

// Resize resizes the target for h in place.
func (m *Manager) Resize(h Handle, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.targets[h]
	if !ok {
		return ErrUnknownHandle
	}
	t.Resize(width, height)
	return nil
}

// Release frees the target for h. Releasing an unknown handle is a no-op.
func (m *Manager) Release(h Handle) {
	m.mu.Lock()
	delete(m.targets, h)
	m.mu.Unlock()
}

// Len returns the number of view targets currently allocated.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.targets)
}

// Close releases every target and the GPU mirror.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.quilt = nil
	clear(m.targets)
	if m.mirror != nil {
		m.mirror.Destroy()
	}
}
