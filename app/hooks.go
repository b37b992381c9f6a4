package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
)

type hookParams struct {
	fx.In

	Logger    *zap.Logger
	Config    *config.Config
	Lifecycle fx.Lifecycle
}

func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("configuration loaded",
				zap.String("listen", p.Config.Server.Listen),
				zap.Int("sites", len(p.Config.Sites)),
				zap.Int("exporters", len(p.Config.Exporters)),
				zap.String("narrative_provider", p.Config.Narrative.Provider),
				zap.Bool("domain_age", p.Config.Whois.Enabled),
			)
			return nil
		},
	})
}
