// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/holoplay"
	"github.com/gogpu/holoplay/settings"
	"github.com/gogpu/holoplay/tiling"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	t.Cleanup(func() { holoplay.SetLogger(nil) })
	return out.String(), err
}

// smallConfig writes a settings file with a small custom tiling.
func smallConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store, err := settings.Open(path)
	require.NoError(t, err)
	store.Update(func(s *settings.Settings) {
		s.Tiling.Preset = tiling.Custom
		s.Tiling.Custom = tiling.New("small", 2, 2, 512, 512)
		s.Screenshots.TwoD.Width, s.Screenshots.TwoD.Height = 32, 16
	})
	require.NoError(t, store.Save())
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "holoplay "+holoplay.Version+"\n", out)
}

func TestExec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	_, err := execute(t, "--config", path, "exec", "HoloPlay.Tiling", "FourK")
	require.NoError(t, err)

	store, err := settings.Open(path)
	require.NoError(t, err)
	assert.Equal(t, tiling.FourK, store.Settings().Tiling.Preset)

	_, err = execute(t, "--config", path, "exec", "HoloPlay.Shader Pitch 47.5")
	require.NoError(t, err)
	store, err = settings.Open(path)
	require.NoError(t, err)
	assert.Equal(t, float32(47.5), store.Settings().Calibration.Pitch)
	assert.Equal(t, tiling.FourK, store.Settings().Tiling.Preset)
}

func TestExecErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	_, err := execute(t, "--config", path, "exec", "HoloPlay.Tiling", "Bogus")
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "rejected command wrote the settings file")

	_, err = execute(t, "--config", path, "--log-level", "loud", "exec", "HoloPlay.Tiling", "FourK")
	assert.Error(t, err)
}

func TestExecList(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "s.yaml"), "exec", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "HoloPlay.Shader")
	assert.Contains(t, out, "HoloPlay.LenticularScreenshot")
}

func TestRender(t *testing.T) {
	path := smallConfig(t)
	dir := t.TempDir()
	quilt := filepath.Join(dir, "quilt")
	flat := filepath.Join(dir, "flat.png")

	out, err := execute(t, "--config", path, "render",
		"--width", "24", "--height", "24", "--mirror",
		"--quilt-screenshot", quilt, "--2d-screenshot", flat)
	require.NoError(t, err)

	assert.Contains(t, out, "quilt\t512x512\t"+quilt+".png")
	assert.Contains(t, out, "2d\t32x16\t"+flat)
	for _, name := range []string{quilt + ".png", flat} {
		_, err := os.Stat(name)
		assert.NoError(t, err, name)
	}
}

func TestRenderPendingScreenshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	store, err := settings.Open(path)
	require.NoError(t, err)
	store.Update(func(s *settings.Settings) {
		s.Tiling.Preset = tiling.Custom
		s.Tiling.Custom = tiling.New("small", 1, 1, 512, 512)
		s.Screenshots.TwoD.Width = 0
	})
	require.NoError(t, store.Save())

	_, err = execute(t, "--config", path, "render", "--width", "8", "--height", "8",
		"--2d-screenshot", filepath.Join(t.TempDir(), "flat"))
	require.ErrorIs(t, err, errPending)
}
