// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/holoplay/internal/logging"
)

// ErrThreadClosed is returned when work is submitted to a closed Thread.
var ErrThreadClosed = errors.New("render: thread closed")

// command is one unit of render work.
type command struct {
	name  string
	fn    func() error
	fence chan struct{}
}

// Thread executes render commands in submission order on a single
// goroutine, the way a render thread consumes commands enqueued by the
// frame thread.
//
// Commands run asynchronously. The producer must call Flush before reading
// anything a command writes. Submitted commands always run to completion;
// there is no cancellation.
//
// Thread safety: Thread is safe for concurrent use, but ordering is only
// guaranteed between commands submitted from the same goroutine.
type Thread struct {
	queue  chan command
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
	logger *slog.Logger

	executed atomic.Uint64
	failed   atomic.Uint64
}

// NewThread starts a render thread with the given queue depth.
// A depth of 0 or less uses 64.
func NewThread(depth int, logger *slog.Logger) *Thread {
	if depth <= 0 {
		depth = 64
	}
	t := &Thread{
		queue:  make(chan command, depth),
		done:   make(chan struct{}),
		logger: logging.OrNop(logger),
	}
	go t.run()
	return t
}

func (t *Thread) run() {
	defer close(t.done)
	for cmd := range t.queue {
		if cmd.fence != nil {
			close(cmd.fence)
			continue
		}
		if err := cmd.fn(); err != nil {
			t.failed.Add(1)
			t.logger.Error("render command failed", "command", cmd.name, "err", err)
		}
		t.executed.Add(1)
	}
}

// Enqueue submits fn to run after every previously submitted command.
// Enqueue blocks while the queue is full.
func (t *Thread) Enqueue(name string, fn func() error) error {
	if fn == nil {
		return nil
	}
	return t.submit(command{name: name, fn: fn})
}

func (t *Thread) submit(cmd command) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return ErrThreadClosed
	}
	t.queue <- cmd
	return nil
}

// Flush blocks until every command submitted before the call has finished.
// It returns ctx.Err() if the context ends first; the commands still run.
func (t *Thread) Flush(ctx context.Context) error {
	fence := make(chan struct{})
	if err := t.submit(command{name: "flush", fence: fence}); err != nil {
		return err
	}
	select {
	case <-fence:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Executed returns the number of commands run so far, fences excluded.
func (t *Thread) Executed() uint64 {
	return t.executed.Load()
}

// Failed returns the number of commands that returned an error.
func (t *Thread) Failed() uint64 {
	return t.failed.Load()
}

// Close stops accepting commands, runs the ones already queued and waits
// for the thread to exit. Close is safe to call multiple times.
func (t *Thread) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}
