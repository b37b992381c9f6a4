package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"site-checker/internal/domain"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		configYAML  string
		envVars     map[string]string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name:       "Defaults only",
			configYAML: `{}`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 15*time.Second, cfg.Probes.Timeout)
				assert.Equal(t, 443, cfg.Probes.TLSPort)
				assert.Equal(t, "offline", cfg.Narrative.Provider)
				assert.Equal(t, "127.0.0.1:8080", cfg.Server.Listen)
				assert.False(t, cfg.Server.TrustForwardedFor)
				assert.False(t, cfg.Whois.Enabled)
				assert.Empty(t, cfg.Sites)
			},
		},
		{
			name: "Valid config",
			configYAML: `
probes:
  timeout: 3s
  tls_port: 8443
narrative:
  provider: openai
  api_key: sk-test
monitor:
  workers: 4
  check_interval: 10m
sites:
  - name: example
    url: https://example.com
exporters:
  - type: webhook
    watches: [example]
    url: http://hooks.local/site
`,
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3*time.Second, cfg.Probes.Timeout)
				assert.Equal(t, 8443, cfg.Probes.TLSPort)
				assert.Equal(t, "openai", cfg.Narrative.Provider)
				assert.Equal(t, 4, cfg.Monitor.Workers)
				assert.Equal(t, 10*time.Minute, cfg.Monitor.CheckInterval)
				require.Len(t, cfg.Sites, 1)
				assert.Equal(t, domain.SiteName("example"), cfg.Sites[0].Name)
				require.Len(t, cfg.Exporters, 1)
				assert.Equal(t, ExporterTypeWebhook, cfg.Exporters[0].Type)
				assert.Equal(t, "http://hooks.local/site", cfg.Exporters[0].Options["url"])
			},
		},
		{
			name:       "Environment overrides",
			configYAML: `{}`,
			envVars: map[string]string{
				"SITECHECK_REPUTATION_API_KEY": "gsb-key",
				"SITECHECK_PROBES_TIMEOUT":     "2s",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "gsb-key", cfg.Reputation.APIKey)
				assert.Equal(t, 2*time.Second, cfg.Probes.Timeout)
			},
		},
		{
			name: "Openai provider without key",
			configYAML: `
narrative:
  provider: openai
`,
			expectError: true,
		},
		{
			name: "Unknown narrative provider",
			configYAML: `
narrative:
  provider: llama
`,
			expectError: true,
		},
		{
			name: "Invalid worker count",
			configYAML: `
monitor:
  workers: 0
`,
			expectError: true,
		},
		{
			name: "Site without url",
			configYAML: `
sites:
  - name: example
`,
			expectError: true,
		},
		{
			name: "Unknown exporter type",
			configYAML: `
exporters:
  - type: carrier-pigeon
    watches: [example]
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configPath, []byte(tt.configYAML), 0644)
			require.NoError(t, err)

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(configPath)
			if tt.expectError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestNewConfigUsesConfigPathEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  listen: 0.0.0.0:9000\n"), 0644))
	t.Setenv("CONFIG_PATH", configPath)

	cfg, err := NewConfig("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
