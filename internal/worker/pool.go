package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/interfaces"
)

var _ interfaces.WorkerPool = (*Pool)(nil)

type Pool struct {
	workers         []Worker
	scheduler       Scheduler
	jobs            chan domain.WatchedSite
	logger          *zap.Logger
	wg              sync.WaitGroup
	cancel          context.CancelFunc
	mu              sync.Mutex
	metrics         domain.MetricsCollector
	isStarted       bool
	shutdownTimeout time.Duration
}

type PoolConfig struct {
	WorkerCount     int
	JobBufferSize   int
	CheckTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func NewPool(
	cfg *config.Config,
	sites []domain.WatchedSite,
	assessor interfaces.Assessor,
	exporters map[domain.SiteName][]domain.Exporter,
	scheduler Scheduler,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) (*Pool, error) {
	poolConfig := PoolConfig{
		WorkerCount:     cfg.Monitor.Workers,
		JobBufferSize:   len(sites) * 2,
		CheckTimeout:    cfg.Probes.Timeout * 4,
		ShutdownTimeout: 30 * time.Second,
	}
	if poolConfig.WorkerCount < 1 {
		return nil, fmt.Errorf("worker count must be positive, got %d", poolConfig.WorkerCount)
	}

	jobs := make(chan domain.WatchedSite, poolConfig.JobBufferSize)
	workers := make([]Worker, poolConfig.WorkerCount)

	for i := 0; i < poolConfig.WorkerCount; i++ {
		workers[i] = NewWorker(
			i,
			jobs,
			assessor,
			exporters,
			poolConfig.CheckTimeout,
			metrics,
			logger,
		)
	}

	return &Pool{
		workers:         workers,
		scheduler:       scheduler,
		jobs:            jobs,
		logger:          logger.With(zap.String("component", "pool")),
		metrics:         metrics,
		shutdownTimeout: poolConfig.ShutdownTimeout,
	}, nil
}

// Start launches the scheduler and workers. They run until Stop is called;
// ctx only bounds the start itself.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isStarted {
		return fmt.Errorf("worker pool already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	p.isStarted = true

	p.logger.Debug("starting worker pool")

	poolCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.scheduler.Start(poolCtx, p.jobs)
	}()

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(worker Worker) {
			defer p.wg.Done()
			p.runWorker(poolCtx, worker)
		}(w)
	}

	p.logger.Info("worker pool started",
		zap.Int("worker_count", len(p.workers)),
		zap.Int("job_buffer_size", cap(p.jobs)))

	return nil
}

// runWorker restarts a worker that panicked until the pool is stopped.
func (p *Pool) runWorker(ctx context.Context, w Worker) {
	for {
		panicked := func() (panicked bool) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("worker panic recovered",
						zap.Any("panic", r),
						zap.Stack("stack"))
					panicked = true
				}
			}()
			w.Start(ctx)
			return false
		}()

		if !panicked || ctx.Err() != nil {
			return
		}
		p.logger.Info("restarting worker after panic")
	}
}

func (p *Pool) Stop() error {
	p.mu.Lock()
	if !p.isStarted {
		p.mu.Unlock()
		return nil
	}
	p.isStarted = false
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	p.logger.Debug("stopping worker pool")

	_ = p.scheduler.Stop()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Debug("worker pool stopped gracefully")
	case <-time.After(p.shutdownTimeout):
		return fmt.Errorf("worker pool shutdown timed out")
	}

	return nil
}
