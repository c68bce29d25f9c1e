// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestThreadOrder(t *testing.T) {
	th := NewThread(4, nil)
	defer th.Close()

	var mu sync.Mutex
	var got []int
	for i := range 100 {
		err := th.Enqueue("step", func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if err := th.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 100 {
		t.Fatalf("ran %d commands before Flush returned, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("command %d ran at position %d", v, i)
		}
	}
	if th.Executed() != 100 {
		t.Errorf("Executed() = %d, want 100", th.Executed())
	}
}

func TestThreadFailureDoesNotStop(t *testing.T) {
	th := NewThread(0, nil)
	defer th.Close()

	ran := false
	_ = th.Enqueue("bad", func() error { return errors.New("boom") })
	_ = th.Enqueue("good", func() error { ran = true; return nil })
	if err := th.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("command after a failure did not run")
	}
	if th.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", th.Failed())
	}
}

func TestThreadFlushContext(t *testing.T) {
	th := NewThread(0, nil)
	defer th.Close()

	release := make(chan struct{})
	_ = th.Enqueue("slow", func() error { <-release; return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := th.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Flush = %v, want deadline exceeded", err)
	}
	close(release)
	if err := th.Flush(context.Background()); err != nil {
		t.Errorf("second Flush = %v", err)
	}
}

func TestThreadClose(t *testing.T) {
	th := NewThread(0, nil)

	ran := false
	_ = th.Enqueue("last", func() error { ran = true; return nil })
	th.Close()
	th.Close()

	if !ran {
		t.Error("Close dropped queued work")
	}
	if err := th.Enqueue("late", func() error { return nil }); !errors.Is(err, ErrThreadClosed) {
		t.Errorf("Enqueue after Close = %v, want ErrThreadClosed", err)
	}
	if err := th.Flush(context.Background()); !errors.Is(err, ErrThreadClosed) {
		t.Errorf("Flush after Close = %v, want ErrThreadClosed", err)
	}
}
