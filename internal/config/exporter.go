package config

import (
	"github.com/go-playground/validator/v10"
	"site-checker/internal/domain"
)

const (
	ExporterTypeUptimeKuma = "uptime-kuma"
	ExporterTypeWebhook    = "webhook"
)

// ExporterConfig selects an exporter and the watched sites it receives
// results for. Type specific settings stay in Options and are decoded by the
// exporter itself.
type ExporterConfig struct {
	Type    string                 `mapstructure:"type" validate:"required,exporterType"`
	Watches []domain.SiteName      `mapstructure:"watches" validate:"required,dive,required"`
	Options map[string]interface{} `mapstructure:",remain"`
}

func validateExporterType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case ExporterTypeUptimeKuma, ExporterTypeWebhook:
		return true
	default:
		return false
	}
}
