// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package holoplay

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/holoplay/settings"
)

func TestLoggerDefaultSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("default logger is enabled")
	}
}

// A pipeline created after SetLogger logs through the package logger;
// SetLogger(nil) silences pipelines created later.
func TestPipelineUsesPackageLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// No scene renderer: the frame is drawn blue and nothing is logged.
	p := newTestPipeline(t, smallSettings())
	if f := p.Draw(context.Background(), NewImageSurface(4, 4)); f != FrameNoCapture {
		t.Fatalf("frame = %v", f)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output:\n%s", buf.String())
	}

	p = newTestPipeline(t, smallSettings(), WithSceneRenderer(&countingScene{}))
	p.Draw(context.Background(), NewImageSurface(4, 4))
	if !strings.Contains(buf.String(), "holoplay: tiling") {
		t.Errorf("tiling change not logged:\n%s", buf.String())
	}

	SetLogger(nil)
	buf.Reset()
	p = newTestPipeline(t, smallSettings(), WithSceneRenderer(&countingScene{}))
	p.Draw(context.Background(), NewImageSurface(4, 4))
	if buf.Len() != 0 {
		t.Errorf("silenced pipeline logged:\n%s", buf.String())
	}
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var pkg, own bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&pkg, nil)))

	store := settings.NewMemory(smallSettings())
	p, err := New(store,
		WithSceneRenderer(&countingScene{}),
		WithLogger(slog.New(slog.NewTextHandler(&own, nil))))
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	p.Draw(context.Background(), NewImageSurface(4, 4))

	if pkg.Len() != 0 {
		t.Errorf("package logger received:\n%s", pkg.String())
	}
	if !strings.Contains(own.String(), "holoplay: tiling") {
		t.Errorf("option logger missing tiling line:\n%s", own.String())
	}
}
