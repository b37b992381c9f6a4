package common

import (
	"go.uber.org/zap"
	"site-checker/internal/config"
)

// ServiceOptions defines common options for building the application graph
type ServiceOptions struct {
	Logger     *zap.Logger
	Config     *config.Config
	ConfigPath config.Path
	Env        string
}

// Option defines a service option modifier
type Option func(*ServiceOptions)

func WithLogger(logger *zap.Logger) Option {
	return func(o *ServiceOptions) {
		o.Logger = logger
	}
}

// WithConfig supplies an already loaded configuration. It takes precedence
// over WithConfigPath.
func WithConfig(cfg *config.Config) Option {
	return func(o *ServiceOptions) {
		o.Config = cfg
	}
}

func WithConfigPath(path string) Option {
	return func(o *ServiceOptions) {
		o.ConfigPath = config.Path(path)
	}
}

func WithEnv(env string) Option {
	return func(o *ServiceOptions) {
		o.Env = env
	}
}

// Apply builds ServiceOptions from opts, defaulting to a no-op logger.
func Apply(opts ...Option) *ServiceOptions {
	options := &ServiceOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	return options
}
