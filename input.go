// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package holoplay

import (
	"context"
	"strings"

	"github.com/gogpu/holoplay/calibration"
	"github.com/gogpu/holoplay/screenshot"
	"github.com/gogpu/holoplay/settings"
)

// StopKey stops the player.
const StopKey = "Escape"

// HandleInput handles the stop key and the screenshot hotkeys configured in
// the settings.
func (p *Pipeline) HandleInput(ev KeyEvent) bool {
	if !ev.Pressed || ev.Key == "" {
		return false
	}
	if strings.EqualFold(ev.Key, StopKey) {
		p.logger.Debug("holoplay: stop requested")
		if p.onStop != nil {
			p.onStop()
		}
		return true
	}

	ss := p.store.Settings().Screenshots
	hotkeys := []struct {
		kind screenshot.Kind
		shot settings.ScreenshotConfig
	}{
		{screenshot.Lenticular, ss.Lenticular},
		{screenshot.Quilt, ss.Quilt},
		{screenshot.TwoD, ss.TwoD},
	}
	handled := false
	for _, hk := range hotkeys {
		if hk.shot.Key != "" && strings.EqualFold(ev.Key, hk.shot.Key) {
			p.RequestScreenshot(hk.kind, hk.shot.FileName, false, true)
			handled = true
		}
	}
	return handled
}

// HandleCommand runs a command line on the frame thread.
func (p *Pipeline) HandleCommand(line string) bool {
	return p.router.Exec(line)
}

// QueueCommand hands line to the frame thread, which runs it at the start
// of the next Draw, and waits for the result.
func (p *Pipeline) QueueCommand(ctx context.Context, line string) (bool, error) {
	qc := queuedCommand{line: line, result: make(chan bool, 1)}
	select {
	case p.cmds <- qc:
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.done:
		return false, ErrClosed
	}
	select {
	case ok := <-qc.result:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-p.done:
		return false, ErrClosed
	}
}

func (p *Pipeline) drainCommands() {
	for {
		select {
		case qc := <-p.cmds:
			qc.result <- p.HandleCommand(qc.line)
		default:
			return
		}
	}
}

// RequestScreenshot queues a screenshot for the next frame. Bare filenames
// are placed in the configured screenshot directory.
func (p *Pipeline) RequestScreenshot(kind screenshot.Kind, name string, showUI, addSuffix bool) bool {
	ss := p.store.Settings().Screenshots
	p.shots.SetDir(ss.Dir)
	p.configureScreenshots(ss)
	return p.shots.Prepare(kind, name, showUI, addSuffix)
}

// UpdateSettings changes the settings; the change applies from the next
// frame.
func (p *Pipeline) UpdateSettings(fn func(*settings.Settings)) {
	p.store.Update(fn)
}

// UpdateCalibration changes the live calibration and records it in the
// settings so it is saved.
func (p *Pipeline) UpdateCalibration(fn func(*calibration.Calibration)) {
	p.cal.Update(fn)
	c := p.cal.Snapshot()
	p.store.Update(func(s *settings.Settings) {
		s.Calibration = c
	})
}

// Restart asks the host to reopen the display window.
func (p *Pipeline) Restart() {
	p.logger.Info("holoplay: restart requested")
	if p.onRestart != nil {
		p.onRestart()
	}
}

// SaveSettings persists the settings.
func (p *Pipeline) SaveSettings() error {
	return p.store.Save()
}
