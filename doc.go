// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package holoplay drives a lenticular multi-view display.
//
// # Overview
//
// A lenticular display shows a different image to each viewing angle. Every
// frame, holoplay renders the scene from an array of cameras, packs the
// views into a tiled "quilt" image and interleaves the quilt into the
// subpixel pattern of the panel using the display calibration.
//
// # Quick Start
//
//	store, _ := settings.Open("holoplay.yaml")
//	p, err := holoplay.New(store,
//	    holoplay.WithSceneRenderer(capture.TestPattern{Labels: true}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Close()
//
//	surface := holoplay.NewImageSurface(1536, 2048)
//	p.Draw(ctx, surface)
//
// # Frame pipeline
//
// Draw runs these stages in order:
//   - ensure the quilt target matches the tiling quality
//   - render every view into its rendering config target
//   - copy each view into its quilt tile on the render thread
//   - wait for the render thread (the quilt is complete after this point)
//   - service a pending quilt screenshot
//   - interleave the quilt onto the surface
//   - service a pending lenticular screenshot
//
// In 2D mode a single centre view is rendered straight to the surface and
// the quilt stages are skipped.
//
// Configuration problems never stop the frame loop. A frame that cannot be
// drawn is cleared to a diagnostic colour: blue when no capture component
// is attached, green when there are no rendering configs.
//
// # Packages
//
//   - tiling: quilt layout presets and tile sizes
//   - calibration: display optics and interleave uniforms
//   - settings: user settings and their YAML store
//   - render: render targets and the render thread
//   - capture: camera array and view rendering
//   - quilt: view to tile copies
//   - lenticular: the interleave pass
//   - screenshot: deferred screenshot requests
//   - command: the HoloPlay.* text commands
package holoplay

// Version is the current version of the module.
const Version = "0.1.0"
