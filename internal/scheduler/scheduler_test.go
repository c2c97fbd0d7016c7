package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"newsbeam/internal/scheduler"
)

type countingRefresher struct {
	calls atomic.Int32
	done  chan struct{}
	err   error
}

func (c *countingRefresher) Refresh(context.Context) error {
	if c.calls.Add(1) == 1 {
		close(c.done)
	}

	return c.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRefreshesImmediately(t *testing.T) {
	for _, refreshErr := range []error{nil, errors.New("feed down")} {
		r := &countingRefresher{done: make(chan struct{}), err: refreshErr}

		s := scheduler.New(context.Background(), "", r, discardLogger())
		if err := s.Start(); err != nil {
			t.Fatalf("start: %v", err)
		}

		select {
		case <-r.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("expected an immediate refresh")
		}

		s.Stop()

		if got := r.calls.Load(); got < 1 {
			t.Fatalf("expected at least one refresh, got %d", got)
		}
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	r := &countingRefresher{done: make(chan struct{})}

	s := scheduler.New(context.Background(), "not a cron spec", r, discardLogger())
	if err := s.Start(); err == nil {
		t.Fatalf("expected invalid spec error")
	}

	if got := r.calls.Load(); got != 0 {
		t.Fatalf("expected no refresh, got %d", got)
	}
}

func TestCanceledContextSkipsRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &countingRefresher{done: make(chan struct{})}

	s := scheduler.New(ctx, scheduler.HourlyRefreshSpec, r, discardLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()

	if got := r.calls.Load(); got != 0 {
		t.Fatalf("expected no refresh with canceled context, got %d", got)
	}
}
