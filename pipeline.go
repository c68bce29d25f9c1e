// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package holoplay

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"golang.org/x/image/draw"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/capture"
	"github.com/gogpu/holoplay/command"
	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/lenticular"
	"github.com/gogpu/holoplay/quilt"
	"github.com/gogpu/holoplay/render"
	"github.com/gogpu/holoplay/screenshot"
	"github.com/gogpu/holoplay/settings"
	"github.com/gogpu/holoplay/tiling"
)

// Pipeline errors.
var (
	// ErrNoSettings is returned by New without a settings store.
	ErrNoSettings = errors.New("holoplay: nil settings store")

	// ErrClosed is returned when a command is queued on a closed pipeline.
	ErrClosed = errors.New("holoplay: pipeline closed")
)

// Frame clear colours.
var (
	ClearColor     = color.RGBA{A: 0xff}
	NoCaptureColor = color.RGBA{B: 0xff, A: 0xff}
	NoConfigsColor = color.RGBA{G: 0xff, A: 0xff}
)

// MaxTileWaste is the fraction of unused quilt pixels above which a tiling
// change is logged as a warning.
const MaxTileWaste = 0.01

// Compositor copies one view into its quilt tile.
type Compositor interface {
	CopyToQuilt(cc quilt.CopyContext) error
}

// Presenter draws the quilt onto the output image.
type Presenter interface {
	Present(dst draw.Image, quilt image.Image, params lenticular.Params) error
}

// Pipeline runs the per-frame quilt and lenticular pipeline. It implements
// Client and is the target of the HoloPlay commands.
//
// Draw, HandleInput and HandleCommand must be called from one goroutine,
// the frame thread. QueueCommand may be called from any goroutine.
type Pipeline struct {
	store      settings.Store
	cal        *calibration.Store
	ownsCal    bool
	mgr        *render.Manager
	thread     *render.Thread
	capture    *capture.Component
	compositor Compositor
	presenter  Presenter
	shots      *screenshot.Capturer
	router     *command.Router
	logger     *slog.Logger

	scene       capture.SceneRenderer
	captureOpts []capture.Option
	mirror      render.Mirror
	onStop      func()
	onRestart   func()

	cmds      chan queuedCommand
	done      chan struct{}
	closeOnce sync.Once

	// Frame thread state.
	tiling    tiling.Quality
	aspect    float32
	viewCone  float32
	setUp     bool
	lastAbort string
}

var (
	_ Client         = (*Pipeline)(nil)
	_ command.Target = (*Pipeline)(nil)
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSceneRenderer attaches a capture component drawing views with scene.
// Without one every frame is cleared to NoCaptureColor.
func WithSceneRenderer(scene capture.SceneRenderer, opts ...capture.Option) Option {
	return func(p *Pipeline) {
		p.scene = scene
		p.captureOpts = opts
	}
}

// WithCalibration shares a calibration store, normally owned by the display
// manager. By default the calibration follows the settings: edits made
// through the settings store take effect on the next frame.
func WithCalibration(s *calibration.Store) Option {
	return func(p *Pipeline) {
		p.cal = s
	}
}

// WithScreenshots sets the screenshot capturer.
func WithScreenshots(c *screenshot.Capturer) Option {
	return func(p *Pipeline) {
		p.shots = c
	}
}

// WithCompositor replaces the quilt compositor.
func WithCompositor(c Compositor) Option {
	return func(p *Pipeline) {
		p.compositor = c
	}
}

// WithPresenter replaces the lenticular presenter.
func WithPresenter(pr Presenter) Option {
	return func(p *Pipeline) {
		p.presenter = pr
	}
}

// WithMirror keeps a GPU copy of the quilt in sync with every frame.
func WithMirror(m render.Mirror) Option {
	return func(p *Pipeline) {
		p.mirror = m
	}
}

// WithLogger sets the logger. The default is Logger().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrNop(l)
	}
}

// WithOnStop sets the callback run when the user asks to stop (Escape).
func WithOnStop(fn func()) Option {
	return func(p *Pipeline) {
		p.onStop = fn
	}
}

// WithOnRestart sets the callback run when a command needs the display
// window reopened.
func WithOnRestart(fn func()) Option {
	return func(p *Pipeline) {
		p.onRestart = fn
	}
}

type queuedCommand struct {
	line   string
	result chan bool
}

// New creates a pipeline reading its settings from store.
func New(store settings.Store, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrNoSettings
	}
	p := &Pipeline{
		store:  store,
		logger: Logger(),
		cmds:   make(chan queuedCommand, 16),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.cal == nil {
		p.cal = calibration.NewStore(store.Settings().Calibration)
		p.ownsCal = true
	}
	mgrOpts := []render.ManagerOption{render.WithLogger(p.logger)}
	if p.mirror != nil {
		mgrOpts = append(mgrOpts, render.WithMirror(p.mirror))
	}
	p.mgr = render.NewManager(mgrOpts...)
	if p.scene != nil {
		copts := append([]capture.Option{capture.WithLogger(p.logger)}, p.captureOpts...)
		p.capture = capture.NewComponent(p.mgr, p.scene, copts...)
	}
	if p.compositor == nil {
		p.compositor = quilt.NewCompositor(quilt.WithLogger(p.logger))
	}
	if p.presenter == nil {
		p.presenter = lenticular.NewPresenter(lenticular.WithLogger(p.logger))
	}
	if p.shots == nil {
		p.shots = screenshot.NewCapturer(screenshot.WithLogger(p.logger))
	}
	p.router = command.NewRouter(command.WithLogger(p.logger))
	if err := command.Register(p.router, p, p.logger); err != nil {
		return nil, fmt.Errorf("holoplay: register commands: %w", err)
	}
	p.thread = render.NewThread(0, p.logger)
	return p, nil
}

// Settings returns the settings store.
func (p *Pipeline) Settings() settings.Store { return p.store }

// Calibration returns the calibration store.
func (p *Pipeline) Calibration() *calibration.Store { return p.cal }

// Manager returns the render target manager.
func (p *Pipeline) Manager() *render.Manager { return p.mgr }

// Capture returns the capture component, or nil without a scene renderer.
func (p *Pipeline) Capture() *capture.Component { return p.capture }

// Screenshots returns the screenshot capturer.
func (p *Pipeline) Screenshots() *screenshot.Capturer { return p.shots }

// Router returns the command router.
func (p *Pipeline) Router() *command.Router { return p.router }

// Draw renders one frame onto s. Failures abort the frame and are logged;
// they never prevent the next frame from drawing.
func (p *Pipeline) Draw(ctx context.Context, s Surface) Frame {
	p.drainCommands()

	cfg := p.store.Settings()
	if p.ownsCal && p.cal.Snapshot() != cfg.Calibration {
		p.cal.Set(cfg.Calibration)
	}
	cal := p.cal.Snapshot()
	dst := s.Image()
	fill(dst, ClearColor)

	if p.capture == nil {
		fill(dst, NoCaptureColor)
		return FrameNoCapture
	}

	q := cfg.Tiling.Quality()
	quiltTarget, _, err := p.mgr.EnsureQuiltTarget(q)
	if err != nil {
		return p.abort("quilt target", err)
	}

	params := lenticular.NewParams(cfg.Rendering, cal, q, p.logger)
	if err := p.setupCapture(q, cal, params.Uniforms.Aspect); err != nil {
		return p.abort("capture setup", err)
	}
	if len(p.capture.Configs()) == 0 {
		p.logger.Error("holoplay: no rendering configs")
		fill(dst, NoConfigsColor)
		return FrameNoConfigs
	}
	p.configureScreenshots(cfg.Screenshots)

	if cfg.Rendering.Render2D {
		return p.draw2D(ctx, dst)
	}

	p.processScreenshot2D(ctx, cfg.Screenshots.TwoD)

	override := p.capture.OverrideQuilt()
	if override == nil {
		if err := p.renderQuilt(ctx, quiltTarget.Image(), q); err != nil {
			return p.abort("render quilt", err)
		}
	} else if err := p.thread.Flush(ctx); err != nil {
		return p.abort("flush", err)
	}

	if err := p.mgr.SyncMirror(); err != nil {
		p.logger.Warn("holoplay: quilt mirror upload failed", "err", err)
	}

	var src image.Image = quiltTarget.Image()
	if override != nil {
		src = override
	}
	p.shots.Process(screenshot.Quilt, src)

	if err := p.presenter.Present(dst, src, params); err != nil {
		return p.abort("present", err)
	}
	p.processLenticular(s, dst)

	p.lastAbort = ""
	return FrameLenticular
}

// renderQuilt renders every view and copies it into the quilt on the
// render thread, then waits for the thread. Configuration errors are found
// before any work is queued.
func (p *Pipeline) renderQuilt(ctx context.Context, dst draw.Image, q tiling.Quality) error {
	sources, err := p.capture.Sources()
	if err != nil {
		return err
	}
	plan, err := quilt.Plan(dst, q, sources)
	if err != nil {
		return err
	}

	// frameErr is only touched on the render thread until Flush returns.
	var frameErr error
	if err := p.thread.Enqueue("RenderViews", func() error {
		frameErr = p.capture.RenderViews(ctx)
		return frameErr
	}); err != nil {
		return err
	}
	for _, cc := range plan {
		if err := p.thread.Enqueue("CopyToQuilt", func() error {
			if frameErr != nil {
				return nil
			}
			if err := p.compositor.CopyToQuilt(cc); err != nil {
				frameErr = fmt.Errorf("copy view %d: %w", cc.GlobalIndex, err)
				return err
			}
			return nil
		}); err != nil {
			return err
		}
	}
	if err := p.thread.Flush(ctx); err != nil {
		return err
	}
	return frameErr
}

func (p *Pipeline) draw2D(ctx context.Context, dst draw.Image) Frame {
	b := dst.Bounds()
	tgt, err := p.capture.Render2DView(ctx, b.Dx(), b.Dy())
	if err != nil {
		return p.abort("render 2D", err)
	}
	draw.Draw(dst, b, tgt.Image(), image.Point{}, draw.Src)
	// The screenshot reuses this frame's render, cropped to its resolution.
	if _, ok := p.shots.Pending(screenshot.TwoD); ok {
		p.shots.Process(screenshot.TwoD, tgt.Image())
	}
	p.lastAbort = ""
	return Frame2D
}

// setupCapture rebuilds the rendering configs when the tiling or camera
// changed.
func (p *Pipeline) setupCapture(q tiling.Quality, cal calibration.Calibration, aspect float32) error {
	if p.setUp && q.Equal(p.tiling) && aspect == p.aspect && cal.ViewCone == p.viewCone {
		return nil
	}
	cam := capture.DefaultCamera(aspect)
	if cal.ViewCone > 0 {
		cam.ViewCone = cal.ViewCone
	}
	if err := p.capture.Setup(q, cam); err != nil {
		return err
	}

	if !p.setUp || !q.Equal(p.tiling) {
		if w := q.Waste(); w > MaxTileWaste {
			p.logger.Warn("holoplay: quilt tiles leave pixels unused",
				"tiling", q.String(), "tile", fmt.Sprintf("%dx%d", q.TileSizeX, q.TileSizeY),
				"waste", fmt.Sprintf("%.1f%%", w*100))
		} else {
			p.logger.Info("holoplay: tiling", "tiling", q.String())
		}
	}
	p.tiling, p.aspect, p.viewCone, p.setUp = q, aspect, cal.ViewCone, true
	return nil
}

func (p *Pipeline) configureScreenshots(ss settings.ScreenshotSettings) {
	p.shots.SetCrop(screenshot.Quilt, cropRect(ss.Quilt))
	p.shots.SetCrop(screenshot.Lenticular, cropRect(ss.Lenticular))
	p.shots.SetCrop(screenshot.TwoD, cropRect(ss.TwoD))
}

func cropRect(shot settings.ScreenshotConfig) image.Rectangle {
	if shot.Width <= 0 || shot.Height <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, shot.Width, shot.Height)
}

// processScreenshot2D renders the pending 2D screenshot at its own
// resolution. Without a resolution the request stays pending.
func (p *Pipeline) processScreenshot2D(ctx context.Context, shot settings.ScreenshotConfig) {
	req, ok := p.shots.Pending(screenshot.TwoD)
	if !ok {
		return
	}
	if req.Filename == "" {
		p.shots.Process(screenshot.TwoD, nil)
		return
	}
	if shot.Width <= 0 || shot.Height <= 0 {
		p.logger.Debug("holoplay: 2D screenshot has no resolution", "width", shot.Width, "height", shot.Height)
		return
	}
	tgt, err := p.capture.Render2DView(ctx, shot.Width, shot.Height)
	if err != nil {
		p.shots.Fail(screenshot.TwoD, err)
		return
	}
	p.shots.Process(screenshot.TwoD, tgt.Image())
}

func (p *Pipeline) processLenticular(s Surface, dst image.Image) {
	req, ok := p.shots.Pending(screenshot.Lenticular)
	if !ok {
		return
	}
	img := dst
	if wc, ok := s.(WindowCapturer); ok && req.ShowUI {
		w, err := wc.CaptureWindow()
		if err != nil {
			p.shots.Fail(screenshot.Lenticular, err)
			return
		}
		img = w
	}
	p.shots.Process(screenshot.Lenticular, img)
}

// abort logs a failed stage. Repeats of the same failure are logged at
// debug level so a persistent problem does not flood the log.
func (p *Pipeline) abort(stage string, err error) Frame {
	msg := stage + ": " + err.Error()
	if msg != p.lastAbort {
		p.logger.Error("holoplay: frame aborted", "stage", stage, "err", err)
		p.lastAbort = msg
	} else {
		p.logger.Debug("holoplay: frame aborted", "stage", stage, "err", err)
	}
	return FrameAborted
}

// Close stops the render thread and releases every render target.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.thread.Close()
		if p.capture != nil {
			p.capture.Close()
		}
		p.mgr.Close()
	})
}

func fill(dst draw.Image, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
