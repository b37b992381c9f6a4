package worker

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
)

var Module = fx.Options(
	fx.Provide(NewPool),
	fx.Provide(func(cfg *config.Config, sites []domain.WatchedSite, metrics domain.MetricsCollector, logger *zap.Logger) Scheduler {
		return NewScheduler(
			cfg.Monitor.CheckInterval,
			sites,
			metrics,
			logger,
		)
	}),
	fx.Invoke(registerHooks),
)

func registerHooks(lc fx.Lifecycle, pool *Pool, sites []domain.WatchedSite, logger *zap.Logger) {
	if len(sites) == 0 {
		logger.Info("no sites configured, monitor disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pool.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop()
		},
	})
}
