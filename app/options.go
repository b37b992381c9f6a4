package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const EnvProduction = "production"

// NewLogger builds a JSON logger for production and a console logger
// otherwise. Both write to stderr so stdout stays free for reports and MCP
// traffic.
func NewLogger(env string, verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if env == EnvProduction {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
