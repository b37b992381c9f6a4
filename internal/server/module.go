package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/interfaces"
	"site-checker/internal/metrics"
)

var Module = fx.Options(
	fx.Provide(NewFromConfig),
	fx.Invoke(registerHooks),
)

func NewFromConfig(cfg *config.Config, assessor interfaces.Assessor, collector *metrics.Collector, logger *zap.Logger) *Server {
	return New(assessor, Options{
		RateLimit:         cfg.Server.RateLimit,
		RateBurst:         cfg.Server.RateBurst,
		TrustForwardedFor: cfg.Server.TrustForwardedFor,
		Metrics:           collector.Handler(),
	}, logger)
}

func registerHooks(lc fx.Lifecycle, cfg *config.Config, srv *Server, logger *zap.Logger) {
	httpServer := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", httpServer.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", zap.String("addr", ln.Addr().String()))

			go func() {
				if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}
