package ratelimiter_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"newsbeam/internal/ratelimiter"
)

func newTestLimiter(t *testing.T, privateRate time.Duration, groupRate time.Duration) *ratelimiter.RateLimiter {
	t.Helper()

	rl := ratelimiter.New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		ratelimiter.WithRates(privateRate, groupRate),
	)
	t.Cleanup(rl.Stop)

	return rl
}

func TestSendReturnsSendError(t *testing.T) {
	rl := newTestLimiter(t, 0, 0)
	sendErr := errors.New("chat not found")

	err := rl.Send(context.Background(), 42, func(context.Context) error {
		return sendErr
	})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestSendPacesSameChat(t *testing.T) {
	const rate = 100 * time.Millisecond

	rl := newTestLimiter(t, rate, 3*rate)

	var (
		mu    sync.Mutex
		times []time.Time
	)
	record := func(context.Context) error {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		return nil
	}

	for range 2 {
		if err := rl.Send(context.Background(), 7, record); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	if gap := times[1].Sub(times[0]); gap < rate-10*time.Millisecond {
		t.Fatalf("expected messages to be spaced by %s, got %s", rate, gap)
	}
}

func TestSendDoesNotPaceDifferentChats(t *testing.T) {
	rl := newTestLimiter(t, time.Hour, time.Hour)

	start := time.Now()
	for chatID := range int64(3) {
		if err := rl.Send(context.Background(), chatID+1, func(context.Context) error { return nil }); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected distinct chats to be sent immediately, took %s", elapsed)
	}
}

func TestSendCanceledWhileWaiting(t *testing.T) {
	rl := newTestLimiter(t, time.Hour, time.Hour)
	noop := func(context.Context) error { return nil }

	if err := rl.Send(context.Background(), -100, noop); err != nil {
		t.Fatalf("send: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	called := false
	err := rl.Send(ctx, -100, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	// The worker drops the paced message once its context is done.
	if err = rl.Send(context.Background(), 1, noop); err != nil {
		t.Fatalf("send after cancel: %v", err)
	}

	if called {
		t.Fatalf("expected canceled message not to be sent")
	}
}

func TestSendAfterStop(t *testing.T) {
	rl := ratelimiter.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	rl.Stop()

	err := rl.Send(context.Background(), 1, func(context.Context) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}
