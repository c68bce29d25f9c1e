// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/holoplay"
	"github.com/gogpu/holoplay/capture"
	"github.com/gogpu/holoplay/internal/host"
	"github.com/gogpu/holoplay/screenshot"
)

// errPending is returned when a requested screenshot was never written.
var errPending = errors.New("screenshot still pending")

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames without a window",
		Long: `render runs the frame pipeline off screen at the display resolution and
writes the requested screenshots. Names without a directory are placed in
the screenshot directory from the settings file.

Example:
  holoplay render --quilt-screenshot quilt --lenticular-screenshot out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openSettings()
			if err != nil {
				return err
			}
			labels, _ := cmd.Flags().GetBool("labels")
			opts := []holoplay.Option{
				holoplay.WithSceneRenderer(capture.TestPattern{Labels: labels}, capture.WithLogger(a.logger)),
				holoplay.WithLogger(a.logger),
			}
			if mirror, _ := cmd.Flags().GetBool("mirror"); mirror {
				m, release, err := newNoopMirror(a)
				if err != nil {
					return err
				}
				defer release()
				opts = append(opts, holoplay.WithMirror(m))
			}
			p, err := holoplay.New(store, opts...)
			if err != nil {
				return err
			}
			defer p.Close()
			if err := loadOverride(cmd, p, a); err != nil {
				return err
			}

			var written []screenshot.Result
			cancel := p.Screenshots().Subscribe(func(r screenshot.Result) {
				written = append(written, r)
			})
			defer cancel()

			for _, req := range []struct {
				flag string
				kind screenshot.Kind
			}{
				{"lenticular-screenshot", screenshot.Lenticular},
				{"quilt-screenshot", screenshot.Quilt},
				{"2d-screenshot", screenshot.TwoD},
			} {
				if name, _ := cmd.Flags().GetString(req.flag); name != "" {
					p.RequestScreenshot(req.kind, name, false, false)
				}
			}

			win := host.WindowFor(store.Settings(), p.Calibration().Snapshot())
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			if width <= 0 || height <= 0 {
				width, height = win.Width, win.Height
			}
			surf := holoplay.NewImageSurface(width, height)

			frames, _ := cmd.Flags().GetInt("frames")
			for i := range max(frames, 1) {
				frame := p.Draw(cmd.Context(), surf)
				a.logger.Debug("frame", "n", i, "mode", frame.String())
				if frame == holoplay.FrameAborted {
					return fmt.Errorf("frame %d aborted", i)
				}
			}

			var errs []error
			for _, r := range written {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("%s screenshot: %w", r.Kind, r.Err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%dx%d\t%s\n", r.Kind, r.Width, r.Height, r.Filename)
			}
			for _, k := range screenshot.Kinds() {
				if _, ok := p.Screenshots().Pending(k); ok {
					errs = append(errs, fmt.Errorf("%s: %w", k, errPending))
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().Int("frames", 1, "number of frames to render")
	cmd.Flags().Int("width", 0, "output width (default: window size from the settings)")
	cmd.Flags().Int("height", 0, "output height (default: window size from the settings)")
	cmd.Flags().Bool("labels", true, "draw view numbers in the test pattern")
	cmd.Flags().String("quilt", "", "present this quilt image instead of rendering views")
	cmd.Flags().String("lenticular-screenshot", "", "write the interleaved output to this file")
	cmd.Flags().String("quilt-screenshot", "", "write the quilt to this file")
	cmd.Flags().String("2d-screenshot", "", "write a flat 2D view to this file")
	cmd.Flags().Bool("mirror", false, "mirror the quilt into a texture on the noop GPU backend")
	return cmd
}
