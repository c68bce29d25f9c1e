// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package command implements the HoloPlay text command surface.
//
// Commands are lines of space separated words, quoted as in a POSIX shell:
//
//	HoloPlay.ScreenshotQuilt "my quilt" -nosuffix
//	HoloPlay.Window ClientSize 1280x720
//	HoloPlay.Shader Pitch 49.8
//
// Names and sub-command words are matched case-insensitively.
package command

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/shlex"
	"golang.org/x/text/cases"

	"github.com/gogpu/holoplay/internal/logging"
)

// ErrDuplicate is returned when a command name is registered twice.
var ErrDuplicate = errors.New("command: duplicate command")

// HandlerFunc runs a command with the words that followed its name. It
// reports whether the command was handled.
type HandlerFunc func(args []string) bool

type entry struct {
	name string
	help string
	fn   HandlerFunc
}

// Router dispatches command lines to registered handlers.
type Router struct {
	logger *slog.Logger

	mu       sync.RWMutex
	handlers map[string]entry
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logging.OrNop(l)
	}
}

// NewRouter returns an empty Router.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		logger:   logging.Nop(),
		handlers: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a command.
func (r *Router) Register(name, help string, fn HandlerFunc) error {
	key := fold(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.handlers[key] = entry{name: name, help: help, fn: fn}
	return nil
}

// Exec tokenises line and runs the matching command. It returns false for
// an empty or malformed line, an unknown command, or a command that
// rejected its arguments.
func (r *Router) Exec(line string) bool {
	words, err := shlex.Split(line)
	if err != nil {
		r.logger.Warn("command: malformed line", "line", line, "err", err)
		return false
	}
	if len(words) == 0 {
		return false
	}

	r.mu.RLock()
	e, ok := r.handlers[fold(words[0])]
	r.mu.RUnlock()
	if !ok {
		r.logger.Debug("command: unknown", "name", words[0])
		return false
	}

	handled := e.fn(words[1:])
	r.logger.Debug("command", "name", e.name, "args", words[1:], "handled", handled)
	return handled
}

// Names returns the registered command names, sorted.
func (r *Router) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for _, e := range r.handlers {
		names = append(names, e.name)
	}
	slices.Sort(names)
	return names
}

// Help returns the help text of a command.
func (r *Router) Help(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.handlers[fold(name)]
	return e.help, ok
}

func fold(s string) string {
	return cases.Fold().String(s)
}

// equal reports whether two words match case-insensitively.
func equal(a, b string) bool {
	return fold(a) == fold(b)
}
