package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"site-checker/internal/domain"
	"site-checker/internal/interfaces"
)

type Scheduler = interfaces.Scheduler

type defaultScheduler struct {
	interval    time.Duration
	sendTimeout time.Duration
	sites       []domain.WatchedSite
	logger      *zap.Logger
	metrics     domain.MetricsCollector
	mu          sync.RWMutex
	stopping    bool
}

func NewScheduler(
	interval time.Duration,
	sites []domain.WatchedSite,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Scheduler {
	return &defaultScheduler{
		interval:    interval,
		sendTimeout: 5 * time.Second,
		sites:       sites,
		logger:      logger.With(zap.String("component", "scheduler")),
		metrics:     metrics,
	}
}

// Start hands every site to the workers immediately and then once per
// interval until ctx is cancelled.
func (s *defaultScheduler) Start(ctx context.Context, jobs chan<- domain.WatchedSite) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if err := s.sendJobs(ctx, jobs); err != nil {
		s.logger.Error("failed to send initial jobs", zap.Error(err))
	}

	for {
		select {
		case <-ticker.C:
			if err := s.sendJobs(ctx, jobs); err != nil {
				s.logger.Error("failed to send jobs", zap.Error(err))
				continue
			}
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped", zap.Error(ctx.Err()))
			return
		}
	}
}

func (s *defaultScheduler) sendJobs(ctx context.Context, jobs chan<- domain.WatchedSite) error {
	s.mu.RLock()
	if s.stopping {
		s.mu.RUnlock()
		return fmt.Errorf("scheduler is stopping")
	}
	s.mu.RUnlock()

	for _, site := range s.sites {
		select {
		case jobs <- site:
			s.logger.Debug("sent job",
				zap.String("site", string(site.Name)))
			s.metrics.RecordSchedulerJob(string(site.Name))
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.sendTimeout):
			return fmt.Errorf("timed out sending job for site %s", site.Name)
		}
	}
	return nil
}

func (s *defaultScheduler) Stop() error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()
	return nil
}

func (s *defaultScheduler) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.stopping
}
