// Package scheduler drives the periodic background work: the capitulation
// refresh and the moving-average alert sweep. Each job runs once at startup
// and then on its own ticker until the context is cancelled.
package scheduler

import (
	"context"
	"sync"
	"time"
)

type Refresher interface {
	Refresh(ctx context.Context)
}

type AlertChecker interface {
	CheckAll(ctx context.Context)
}

type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

type Scheduler struct {
	refresher       Refresher
	checker         AlertChecker
	logger          Logger
	refreshInterval time.Duration
	alertInterval   time.Duration
}

func New(refresher Refresher, checker AlertChecker, logger Logger, refreshInterval, alertInterval time.Duration) *Scheduler {
	return &Scheduler{
		refresher:       refresher,
		checker:         checker,
		logger:          logger,
		refreshInterval: refreshInterval,
		alertInterval:   alertInterval,
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started",
		"refresh_interval", s.refreshInterval.String(),
		"alert_interval", s.alertInterval.String())

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		s.loop(ctx, s.refreshInterval, func(ctx context.Context) {
			s.refresher.Refresh(ctx)
		})
	}()

	go func() {
		defer wg.Done()
		s.loop(ctx, s.alertInterval, func(ctx context.Context) {
			s.checker.CheckAll(ctx)
		})
	}()

	wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, job func(context.Context)) {
	job(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job(ctx)
		}
	}
}
