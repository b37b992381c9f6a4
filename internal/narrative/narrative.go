package narrative

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
)

var Module = fx.Options(
	fx.Provide(New),
)

// Client turns probe reports into prose. A single-site narrative starts with
// the verdict word.
type Client interface {
	DescribeSite(ctx context.Context, report domain.SiteReport) (string, error)
	CompareSites(ctx context.Context, report domain.ComparativeReport, firstNarrative, secondNarrative string) (string, error)
}

// New selects the configured narrative provider.
func New(cfg *config.Config, client *http.Client, logger *zap.Logger) (Client, error) {
	switch cfg.Narrative.Provider {
	case "", ProviderOffline:
		return NewOffline(), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg.Narrative, client, logger), nil
	default:
		return nil, fmt.Errorf("unknown narrative provider: %q", cfg.Narrative.Provider)
	}
}

const (
	ProviderOffline = "offline"
	ProviderOpenAI  = "openai"
)
