package exporter

import (
	"fmt"
	"net/http"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/exporter/uptimekuma"
	"site-checker/internal/exporter/webhook"
)

// Module exports the exporter module
var Module = fx.Options(
	fx.Provide(NewManager),
	fx.Provide(func(m *Manager) map[domain.SiteName][]domain.Exporter {
		return m.Exporters()
	}),
)

type Manager struct {
	exporters map[domain.SiteName][]domain.Exporter
	logger    *zap.Logger
}

func NewManager(
	cfg *config.Config,
	sites []domain.WatchedSite,
	client *http.Client,
	logger *zap.Logger,
) (*Manager, error) {
	manager := &Manager{
		exporters: make(map[domain.SiteName][]domain.Exporter),
		logger:    logger.With(zap.String("component", "exporter")),
	}

	known := lo.Map(sites, func(s domain.WatchedSite, _ int) domain.SiteName { return s.Name })

	for _, expCfg := range cfg.Exporters {
		exporter, err := createExporter(expCfg, client)
		if err != nil {
			return nil, fmt.Errorf("failed to create exporter %s: %w", expCfg.Type, err)
		}

		for _, watch := range lo.Uniq(expCfg.Watches) {
			if !lo.Contains(known, watch) {
				return nil, fmt.Errorf("exporter %s watches unknown site %q", expCfg.Type, watch)
			}
			manager.exporters[watch] = append(
				manager.exporters[watch],
				exporter,
			)
		}
	}

	return manager, nil
}

func (m *Manager) Exporters() map[domain.SiteName][]domain.Exporter {
	return m.exporters
}

// Export hands result to every exporter watching its site. Failures are
// logged and do not stop the remaining exporters.
func (m *Manager) Export(result domain.CheckResult) {
	for _, exporter := range m.exporters[result.Site.Name] {
		if err := exporter.Export(result); err != nil {
			m.logger.Error("failed to export check",
				zap.String("site", string(result.Site.Name)),
				zap.Error(err),
			)
		}
	}
}

func createExporter(cfg config.ExporterConfig, client *http.Client) (domain.Exporter, error) {
	switch cfg.Type {
	case config.ExporterTypeUptimeKuma:
		return uptimekuma.New(cfg.Options, client)
	case config.ExporterTypeWebhook:
		return webhook.New(cfg.Options, client)
	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.Type)
	}
}
