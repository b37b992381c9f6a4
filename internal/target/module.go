package target

import (
	"fmt"

	"go.uber.org/fx"
	"site-checker/internal/config"
	"site-checker/internal/domain"
)

var Module = fx.Provide(ProvideWatchedSites)

// ProvideWatchedSites validates the sites configured for monitoring.
func ProvideWatchedSites(cfg *config.Config) ([]domain.WatchedSite, error) {
	sites := make([]domain.WatchedSite, 0, len(cfg.Sites))
	seen := make(map[domain.SiteName]struct{}, len(cfg.Sites))

	for _, site := range cfg.Sites {
		if site.Name == "" {
			return nil, fmt.Errorf("site name is required in configuration")
		}
		if _, exists := seen[site.Name]; exists {
			return nil, fmt.Errorf("duplicate site name found: %s", site.Name)
		}
		seen[site.Name] = struct{}{}

		if _, err := Parse(site.URL); err != nil {
			return nil, fmt.Errorf("failed to parse site %s: %w", site.Name, err)
		}

		sites = append(sites, site)
	}

	return sites, nil
}
