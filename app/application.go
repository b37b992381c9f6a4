package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/common"
	"site-checker/internal/interfaces"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// Application is the long running service: the HTTP API plus the monitor of
// watched sites.
type Application struct {
	app    *fx.App
	logger *zap.Logger
	env    string
}

func NewApplication(opts ...common.Option) *Application {
	options := common.Apply(opts...)

	app := &Application{
		logger: options.Logger,
		env:    options.Env,
	}

	app.app = fx.New(
		coreModules(options),
		serviceModules,

		fx.StopTimeout(stopTimeout),
		fx.StartTimeout(startTimeout),

		fx.Invoke(registerHooks),
		fx.Invoke(app.registerHooks),
	)

	return app
}

// Err reports a dependency graph that could not be built, such as an invalid
// configuration.
func (a *Application) Err() error {
	return a.app.Err()
}

func (a *Application) Start(ctx context.Context) error {
	return a.app.Start(ctx)
}

func (a *Application) Stop(ctx context.Context) error {
	return a.app.Stop(ctx)
}

func (a *Application) registerHooks(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			a.logger.Info("starting application", zap.String("env", a.env))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			a.logger.Info("stopping application")
			return nil
		},
	})
}

// Run builds only the checking graph, hands its assessor to fn and stops the
// graph once fn returns. It backs the one-shot commands.
func Run(ctx context.Context, fn func(context.Context, interfaces.Assessor) error, opts ...common.Option) error {
	options := common.Apply(opts...)

	var assessor interfaces.Assessor
	fxApp := fx.New(
		coreModules(options),
		fx.Populate(&assessor),
		fx.StartTimeout(startTimeout),
		fx.StopTimeout(stopTimeout),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	runErr := fn(ctx, assessor)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer stopCancel()
	if err := fxApp.Stop(stopCtx); err != nil && runErr == nil {
		return fmt.Errorf("failed to stop: %w", err)
	}
	return runErr
}
