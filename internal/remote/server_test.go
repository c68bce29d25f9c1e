// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/holoplay/screenshot"
	"github.com/gogpu/holoplay/settings"
)

type fakeController struct {
	mu    sync.Mutex
	lines []string
	ok    bool
	err   error
}

func (c *fakeController) set(ok bool, err error) {
	c.mu.Lock()
	c.ok, c.err = ok, err
	c.mu.Unlock()
}

func (c *fakeController) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *fakeController) QueueCommand(_ context.Context, line string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
	return c.ok, c.err
}

type fakeCommands struct{}

func (fakeCommands) Names() []string      { return []string{"HoloPlay.Shader", "HoloPlay.Tiling"} }
func (fakeCommands) Help(n string) string { return "help for " + n }

type fakeScreenshots struct {
	mu sync.Mutex
	fn func(screenshot.Result)
}

func (f *fakeScreenshots) Subscribe(fn func(screenshot.Result)) func() {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.fn = nil
		f.mu.Unlock()
	}
}

func (f *fakeScreenshots) publish(r screenshot.Result) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(r)
	}
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func postCommand(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url+"/commands", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestPostCommand(t *testing.T) {
	ctl := &fakeController{ok: true}
	_, ts := newTestServer(t, Config{Controller: ctl})

	resp, out := postCommand(t, ts.URL, `{"command":"HoloPlay.Shader Pitch 40"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, true, out["handled"])
	assert.Equal(t, []string{"HoloPlay.Shader Pitch 40"}, ctl.calls())

	ctl.set(false, nil)
	resp, out = postCommand(t, ts.URL, `{"command":"Nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, out["handled"])
}

func TestPostCommandErrors(t *testing.T) {
	ctl := &fakeController{}
	_, ts := newTestServer(t, Config{Controller: ctl})

	resp, out := postCommand(t, ts.URL, `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out["error"], "JSON")

	resp, _ = postCommand(t, ts.URL, `{"command":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, ctl.calls())

	ctl.set(false, errors.New("pipeline closed"))
	resp, out = postCommand(t, ts.URL, `{"command":"HoloPlay.Tiling FourK"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "pipeline closed", out["error"])

	ctl.set(false, context.DeadlineExceeded)
	resp, _ = postCommand(t, ts.URL, `{"command":"HoloPlay.Tiling FourK"}`)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	_, bare := newTestServer(t, Config{})
	resp, _ = postCommand(t, bare.URL, `{"command":"HoloPlay.Tiling FourK"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestGetSettingsAndCommands(t *testing.T) {
	s := settings.Default()
	s.Calibration.Pitch = 52.5
	_, ts := newTestServer(t, Config{
		Settings: settings.NewMemory(s),
		Commands: fakeCommands{},
	})

	resp, err := http.Get(ts.URL + "/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got settings.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, float32(52.5), got.Calibration.Pitch)
	assert.Equal(t, s.Tiling.Preset, got.Tiling.Preset)

	resp, err = http.Get(ts.URL + "/commands")
	require.NoError(t, err)
	defer resp.Body.Close()
	var infos []CommandInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&infos))
	require.Len(t, infos, 2)
	assert.Equal(t, CommandInfo{Name: "HoloPlay.Shader", Help: "help for HoloPlay.Shader"}, infos[0])

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSettingsMissing(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/settings")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventsBroadcastScreenshots(t *testing.T) {
	shots := &fakeScreenshots{}
	s, ts := newTestServer(t, Config{Screenshots: shots})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "hello", ev.Type)

	shots.publish(screenshot.Result{Kind: screenshot.Quilt, Filename: "q.png", Width: 4096, Height: 4096})
	shots.publish(screenshot.Result{Kind: screenshot.TwoD, Err: errors.New("disk full")})

	require.NoError(t, conn.ReadJSON(&ev))
	require.NotNil(t, ev.Screenshot)
	assert.Equal(t, "screenshot", ev.Type)
	assert.Equal(t, ScreenshotEvent{Kind: screenshot.Quilt, Filename: "q.png", Width: 4096, Height: 4096}, *ev.Screenshot)

	ev = Event{}
	require.NoError(t, conn.ReadJSON(&ev))
	require.NotNil(t, ev.Screenshot)
	assert.Equal(t, screenshot.TwoD, ev.Screenshot.Kind)
	assert.Equal(t, "disk full", ev.Screenshot.Error)

	s.Close()
	shots.mu.Lock()
	assert.Nil(t, shots.fn, "Close kept the subscription")
	shots.mu.Unlock()
}
