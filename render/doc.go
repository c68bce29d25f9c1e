// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render owns the render targets of the presentation pipeline and
// the render thread that executes work on them.
//
// # Targets
//
// A Target is a CPU image with a pixel format. The quilt uses FormatRGBA16;
// views and output images use FormatRGBA8. Resize keeps the *Target identity
// and replaces the backing image.
//
// # Manager
//
// Manager owns the quilt outright and allocates view targets addressed by
// Handle:
//
//	mgr := render.NewManager()
//	quilt, _, err := mgr.EnsureQuiltTarget(q) // every frame
//	h, err := mgr.Allocate("config0", w, h, render.FormatRGBA8)
//	view, ok := mgr.Target(h)
//
// An optional Mirror keeps a GPU copy of the quilt for hosts that sample it
// on the GPU.
//
// # Thread
//
// Thread runs commands in submission order on one goroutine. The frame
// thread enqueues work and calls Flush as a barrier before it reads back or
// samples anything the commands wrote:
//
//	th := render.NewThread(0, logger)
//	th.Enqueue("copy view 3", func() error { ... })
//	if err := th.Flush(ctx); err != nil { ... }
package render
