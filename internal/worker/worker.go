package worker

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"site-checker/internal/domain"
	"site-checker/internal/interfaces"
)

// Worker represents a single worker that assesses watched sites
type Worker interface {
	Start(context.Context)
	Stop()
}

type workerConfig struct {
	checkTimeout time.Duration
}

type worker struct {
	id        int
	jobs      <-chan domain.WatchedSite
	assessor  interfaces.Assessor
	exporters map[domain.SiteName][]domain.Exporter
	logger    *zap.Logger
	stopOnce  sync.Once
	stopChan  chan struct{}
	config    workerConfig
	metrics   domain.MetricsCollector
}

func NewWorker(
	id int,
	jobs <-chan domain.WatchedSite,
	assessor interfaces.Assessor,
	exporters map[domain.SiteName][]domain.Exporter,
	checkTimeout time.Duration,
	metrics domain.MetricsCollector,
	logger *zap.Logger,
) Worker {
	return &worker{
		id:        id,
		jobs:      jobs,
		assessor:  assessor,
		exporters: exporters,
		logger:    logger.With(zap.Int("worker_id", id)),
		stopChan:  make(chan struct{}),
		config: workerConfig{
			checkTimeout: checkTimeout,
		},
		metrics: metrics,
	}
}

func (w *worker) Start(ctx context.Context) {
	id := strconv.Itoa(w.id)
	w.metrics.RecordWorkerStart(id)
	defer w.metrics.RecordWorkerStop(id)

	w.logger.Debug("worker started")
	defer w.logger.Debug("worker stopped")

	for {
		select {
		case site, ok := <-w.jobs:
			if !ok {
				w.logger.Info("jobs channel closed")
				return
			}
			w.processCheck(ctx, site)
		case <-ctx.Done():
			w.logger.Info("context cancelled",
				zap.Error(ctx.Err()))
			return
		case <-w.stopChan:
			w.logger.Info("received stop signal")
			return
		}
	}
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
	})
}

// processCheck assesses one site once. Failed checks are not retried; the
// scheduler will hand the site out again on the next interval.
func (w *worker) processCheck(ctx context.Context, site domain.WatchedSite) {
	result := domain.CheckResult{Site: site}
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, w.config.checkTimeout)
	defer cancel()

	assessment, err := w.assessor.Assess(ctx, site.URL)
	if err != nil {
		result.Error = err
		w.logger.Error("check processing failed",
			zap.String("site", string(site.Name)),
			zap.Error(err))
	} else {
		result.Assessment = assessment
		w.logger.Info("site checked",
			zap.String("site", string(site.Name)),
			zap.String("verdict", string(assessment.Verdict)))
	}

	result.Duration = time.Since(start)
	result.Completed = time.Now()

	w.exportResult(result)
	w.metrics.RecordCheck(result)
}

func (w *worker) exportResult(result domain.CheckResult) {
	for _, exporter := range w.exporters[result.Site.Name] {
		if err := exporter.Export(result); err != nil {
			w.logger.Error("failed to export result",
				zap.String("site", string(result.Site.Name)),
				zap.Error(err),
			)
		}
	}
}
