// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package holoplay

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/holoplay/internal/logging"
)

// loggerPtr stores the package logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(logging.Nop())
}

// SetLogger configures the default logger for pipelines created afterwards.
// By default, holoplay produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by holoplay:
//   - [slog.LevelDebug]: per-frame diagnostics (target allocation, commands)
//   - [slog.LevelInfo]: lifecycle events (screenshots saved, tiling changes)
//   - [slog.LevelWarn]: non-fatal issues (tile truncation, mirror failures)
//   - [slog.LevelError]: aborted frames and failed screenshots
//
// Example:
//
//	holoplay.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	loggerPtr.Store(logging.OrNop(l))
}

// Logger returns the current package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
