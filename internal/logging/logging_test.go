// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestNopDisabled(t *testing.T) {
	for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if Nop().Enabled(context.Background(), lvl) {
			t.Errorf("Nop logger enabled at %v", lvl)
		}
	}
	if Nop().With("k", "v").Enabled(context.Background(), slog.LevelError) {
		t.Error("derived Nop logger is enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) != Nop() {
		t.Error("OrNop(nil) did not return the silent logger")
	}
	l := slog.Default()
	if OrNop(l) != l {
		t.Error("OrNop replaced a non-nil logger")
	}
}
