// Package scheduler runs periodic knowledge base reloads on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type ReloadFunc func(ctx context.Context) error

type Scheduler struct {
	cron     *cron.Cron
	schedule string
	reload   ReloadFunc
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// New returns a scheduler for the given cron expression. An empty schedule
// yields a scheduler whose Start is a no-op.
func New(schedule string, reload ReloadFunc, logger zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		schedule: schedule,
		reload:   reload,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Debug().Msg("No reload schedule configured")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.schedule).Msg("Scheduled knowledge base reloads")
	return nil
}

func (s *Scheduler) run() {
	start := time.Now()
	if err := s.reload(s.ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled reload failed")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("Scheduled reload complete")
}

// Stop waits for a running reload to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cancel()
}

func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
