package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"site-checker/internal/aggregator"
	"site-checker/internal/checker"
	"site-checker/internal/common"
	"site-checker/internal/config"
	"site-checker/internal/exporter"
	"site-checker/internal/geoip"
	"site-checker/internal/httpclient"
	"site-checker/internal/metrics"
	"site-checker/internal/narrative"
	"site-checker/internal/probe"
	"site-checker/internal/safebrowsing"
	"site-checker/internal/server"
	"site-checker/internal/target"
	"site-checker/internal/whois"
	"site-checker/internal/worker"
)

// coreModules is everything needed to assess and compare URLs.
func coreModules(options *common.ServiceOptions) fx.Option {
	return fx.Options(
		fx.Supply(options.Logger),
		configModule(options),

		httpclient.Module,
		geoip.Module,
		safebrowsing.Module,
		whois.Module,
		probe.Module,
		metrics.Module,
		checker.Module,
		narrative.Module,
		aggregator.Module,

		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
	)
}

// serviceModules adds the long running surfaces on top of coreModules.
var serviceModules = fx.Options(
	target.Module,
	exporter.Module,
	worker.Module,
	server.Module,
)

func configModule(options *common.ServiceOptions) fx.Option {
	if options.Config != nil {
		return fx.Supply(options.Config)
	}
	return fx.Options(
		fx.Supply(options.ConfigPath),
		fx.Provide(config.NewConfig),
	)
}
