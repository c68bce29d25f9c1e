// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package remote serves the player's command surface over HTTP.
//
// Commands posted to /commands are queued for the frame thread and answered
// once the next frame has run them. Screenshot results are pushed to
// websocket clients on /events.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/gogpu/holoplay/internal/logging"
	"github.com/gogpu/holoplay/screenshot"
	"github.com/gogpu/holoplay/settings"
)

// DefaultTimeout bounds how long a request waits for the frame thread.
const DefaultTimeout = 5 * time.Second

const writeWait = 200 * time.Millisecond

// Controller runs command lines on the frame thread.
type Controller interface {
	QueueCommand(ctx context.Context, line string) (bool, error)
}

// Commands lists the registered command names.
type Commands interface {
	Names() []string
	Help(name string) string
}

// Screenshots publishes finished screenshots.
type Screenshots interface {
	Subscribe(fn func(screenshot.Result)) (cancel func())
}

// Config wires a Server to the player.
type Config struct {
	Controller  Controller
	Commands    Commands
	Settings    settings.Provider
	Screenshots Screenshots
}

// Server is the remote control HTTP server.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	cancel  func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrNop(l)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer creates a server and subscribes to screenshot results.
func NewServer(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logging.Nop(),
		timeout: DefaultTimeout,
		clients: make(map[*websocket.Conn]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Screenshots != nil {
		s.cancel = cfg.Screenshots.Subscribe(s.broadcastScreenshot)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/events", s.handleEvents)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Get("/health", s.handleHealth)
		r.Get("/settings", s.handleSettings)
		r.Get("/commands", s.handleListCommands)
		r.Post("/commands", s.handleCommand)
	})
	return r
}

// Close cancels the screenshot subscription and disconnects event clients.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for c := range s.clients {
		c.Close()
	}
	clear(s.clients)
}

// CommandRequest is the body of POST /commands.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse reports whether a command was handled.
type CommandResponse struct {
	Command string `json:"command"`
	Handled bool   `json:"handled"`
}

// CommandInfo describes one registered command.
type CommandInfo struct {
	Name string `json:"name"`
	Help string `json:"help"`
}

// Event is a message pushed to /events clients.
type Event struct {
	Type       string           `json:"type"`
	Screenshot *ScreenshotEvent `json:"screenshot,omitempty"`
}

// ScreenshotEvent reports a finished screenshot.
type ScreenshotEvent struct {
	Kind     screenshot.Kind `json:"kind"`
	Filename string          `json:"filename,omitempty"`
	Width    int             `json:"width,omitempty"`
	Height   int             `json:"height,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSettings(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.Settings == nil {
		writeError(w, http.StatusNotFound, "no settings")
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.Settings.Settings())
}

func (s *Server) handleListCommands(w http.ResponseWriter, _ *http.Request) {
	infos := []CommandInfo{}
	if s.cfg.Commands != nil {
		for _, name := range s.cfg.Commands.Names() {
			infos = append(infos, CommandInfo{Name: name, Help: s.cfg.Commands.Help(name)})
		}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, "missing command")
		return
	}
	if s.cfg.Controller == nil {
		writeError(w, http.StatusServiceUnavailable, "no player")
		return
	}

	ok, err := s.cfg.Controller.QueueCommand(r.Context(), req.Command)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		s.logger.Warn("remote: command not run", "command", req.Command, "err", err)
		writeError(w, status, err.Error())
		return
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusUnprocessableEntity
	}
	s.logger.Debug("remote: command", "command", req.Command, "handled", ok)
	writeJSON(w, status, CommandResponse{Command: req.Command, Handled: ok})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("remote: websocket upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.send(conn, Event{Type: "hello"})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) broadcastScreenshot(r screenshot.Result) {
	ev := &ScreenshotEvent{Kind: r.Kind, Filename: r.Filename, Width: r.Width, Height: r.Height}
	if r.Err != nil {
		ev.Error = r.Err.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.send(c, Event{Type: "screenshot", Screenshot: ev})
	}
}

// send writes ev to c. The caller holds s.mu, which also serialises writes.
func (s *Server) send(c *websocket.Conn, ev Event) {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.WriteJSON(ev); err != nil {
		s.logger.Debug("remote: write event", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
