package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
	queueSize       = 1000
)

// SendFunc delivers one message to its chat.
type SendFunc func(ctx context.Context) error

type request struct {
	ctx      context.Context
	chatID   int64
	send     SendFunc
	response chan error
}

type Option func(*RateLimiter)

// WithRates overrides the minimum spacing between two messages of one chat.
func WithRates(privateChat time.Duration, groupChat time.Duration) Option {
	return func(rl *RateLimiter) {
		rl.privateRate = privateChat
		rl.groupRate = groupChat
	}
}

// RateLimiter serializes outgoing messages and paces them per chat. Group
// chats have negative IDs and a slower rate.
type RateLimiter struct {
	queue       chan request
	lastSent    map[int64]time.Time
	mu          sync.Mutex
	privateRate time.Duration
	groupRate   time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	done        chan struct{}
	log         *slog.Logger
}

func New(log *slog.Logger, opts ...Option) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	rl := &RateLimiter{
		queue:       make(chan request, queueSize),
		lastSent:    make(map[int64]time.Time),
		privateRate: privateChatRate,
		groupRate:   groupChatRate,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
		log:         log,
	}

	for _, opt := range opts {
		opt(rl)
	}

	go rl.processQueue()

	return rl
}

// Send queues send for chatID and waits until it ran.
func (rl *RateLimiter) Send(ctx context.Context, chatID int64, send SendFunc) error {
	req := request{
		ctx:      ctx,
		chatID:   chatID,
		send:     send,
		response: make(chan error, 1),
	}

	select {
	case rl.queue <- req:
	case <-rl.ctx.Done():
		return rl.ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.response:
		return err
	case <-rl.done:
		select {
		case err := <-req.response:
			return err
		default:
			return rl.ctx.Err()
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop fails queued messages and waits for the queue worker to exit.
func (rl *RateLimiter) Stop() {
	rl.cancel()
	<-rl.done
}

func (rl *RateLimiter) processQueue() {
	defer close(rl.done)

	for {
		select {
		case req := <-rl.queue:
			rl.handleRequest(req)
		case <-rl.ctx.Done():
			for {
				select {
				case req := <-rl.queue:
					req.response <- rl.ctx.Err()
				default:
					return
				}
			}
		}
	}
}

func (rl *RateLimiter) handleRequest(req request) {
	if err := req.ctx.Err(); err != nil {
		req.response <- err
		return
	}

	rl.mu.Lock()
	lastSent, exists := rl.lastSent[req.chatID]
	rl.mu.Unlock()

	if exists {
		delay := rl.delay(req.chatID, lastSent)

		if delay > 0 {
			rl.log.DebugContext(req.ctx, "Rate limiting message",
				"chatID", req.chatID,
				"delay", delay,
				"queueLen", len(rl.queue))

			select {
			case <-time.After(delay):
			case <-req.ctx.Done():
				req.response <- req.ctx.Err()
				return
			case <-rl.ctx.Done():
				req.response <- rl.ctx.Err()
				return
			}
		}
	}

	err := req.send(req.ctx)

	rl.mu.Lock()
	rl.lastSent[req.chatID] = time.Now()
	rl.mu.Unlock()

	req.response <- err
}

func (rl *RateLimiter) delay(chatID int64, lastSent time.Time) time.Duration {
	elapsed := time.Since(lastSent)

	return max(rl.rate(chatID)-elapsed, 0)
}

func (rl *RateLimiter) rate(chatID int64) time.Duration {
	if chatID < 0 {
		return rl.groupRate
	}
	return rl.privateRate
}
