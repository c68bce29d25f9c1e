// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/holoplay"
	"github.com/gogpu/holoplay/capture"
	"github.com/gogpu/holoplay/internal/host"
	"github.com/gogpu/holoplay/internal/remote"
	"github.com/gogpu/holoplay/settings"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the player window",
		Long: `run opens the output window on the display and presents the test
pattern scene. Escape closes the window; the screenshot hotkeys from the
settings file are active.

With --listen, commands can also be sent over HTTP:
  curl -d '{"command":"HoloPlay.Tiling FourK"}' localhost:8080/commands`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openSettings()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			labels, _ := cmd.Flags().GetBool("labels")
			var (
				p    *holoplay.Pipeline
				game *host.Game
			)
			p, err = holoplay.New(store,
				holoplay.WithSceneRenderer(capture.TestPattern{Labels: labels}, capture.WithLogger(a.logger)),
				holoplay.WithLogger(a.logger),
				holoplay.WithOnStop(func() { game.Stop() }),
				holoplay.WithOnRestart(func() {
					host.Apply(host.WindowFor(store.Settings(), p.Calibration().Snapshot()))
				}),
			)
			if err != nil {
				return err
			}
			defer p.Close()
			if err := loadOverride(cmd, p, a); err != nil {
				return err
			}

			game = host.NewGame(ctx, p, host.WithLogger(a.logger))

			if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
				shutdown := serveRemote(a, p, store, addr)
				defer shutdown()
			}
			return host.Run(game, host.WindowFor(store.Settings(), p.Calibration().Snapshot()))
		},
	}
	cmd.Flags().String("listen", "", "serve the remote control API on this address")
	cmd.Flags().Bool("labels", true, "draw view numbers in the test pattern")
	cmd.Flags().String("quilt", "", "show this quilt image instead of rendering views")
	return cmd
}

// serveRemote starts the remote control server and returns its shutdown.
func serveRemote(a *app, p *holoplay.Pipeline, store settings.Provider, addr string) func() {
	srv := remote.NewServer(remote.Config{
		Controller:  p,
		Commands:    p.Router(),
		Settings:    store,
		Screenshots: p.Screenshots(),
	}, remote.WithLogger(a.logger))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("remote control listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("remote control stopped", "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Close()
		if err := httpSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("remote control shutdown", "err", err)
		}
	}
}

// loadOverride installs the --quilt image as the override quilt.
func loadOverride(cmd *cobra.Command, p *holoplay.Pipeline, a *app) error {
	path, _ := cmd.Flags().GetString("quilt")
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	p.Capture().SetOverrideQuilt(img)
	a.logger.Info("override quilt loaded", "path", path, "format", format, "size", img.Bounds().Size())
	return nil
}
