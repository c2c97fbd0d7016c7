package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	HourlyRefreshSpec     = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	refreshNewsTimeout    = 15 * time.Minute
)

// Refresher reloads the news catalog.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	spec      string
	refresher Refresher
	running   sync.WaitGroup
	log       *slog.Logger
}

func New(ctx context.Context, spec string, refresher Refresher, log *slog.Logger) *Scheduler {
	if spec == "" {
		spec = HourlyRefreshSpec
	}

	c := cron.New(
		cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		spec:      spec,
		refresher: refresher,
		log:       log,
	}
}

// Start schedules the refresh job and runs it once right away.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refreshNews); err != nil {
		return fmt.Errorf("add cron job (spec = %s): %w", s.spec, err)
	}

	s.cron.Start()

	s.running.Go(s.refreshNews)

	return nil
}

// Stop stops scheduling and waits for running refreshes.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.running.Wait()
}

func (s *Scheduler) refreshNews() {
	ctx, cancel := context.WithTimeout(s.ctx, refreshNewsTimeout)
	defer cancel()

	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	default:
	}

	startedAt := time.Now()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to refresh news",
			"error", err,
			"spec", s.spec,
			"duration", time.Since(startedAt))
		return
	}

	s.log.InfoContext(ctx, "News is refreshed",
		"spec", s.spec,
		"duration", time.Since(startedAt))
}
