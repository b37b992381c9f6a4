package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"site-checker/internal/domain"
)

// AppName names the XDG config directory and the env prefix.
const AppName = "site-checker"

var (
	validate *validator.Validate

	ErrInvalidConfig = errors.New("invalid configuration")
)

// Path is the explicit config file location. Empty means CONFIG_PATH, then the
// XDG config directory, then defaults only.
type Path string

type Config struct {
	Probes      Probes               `mapstructure:"probes"`
	Geolocation Geolocation          `mapstructure:"geolocation"`
	Reputation  Reputation           `mapstructure:"reputation"`
	Whois       Whois                `mapstructure:"whois"`
	Narrative   Narrative            `mapstructure:"narrative"`
	Server      Server               `mapstructure:"server"`
	Monitor     Monitor              `mapstructure:"monitor"`
	Sites       []domain.WatchedSite `mapstructure:"sites" validate:"dive"`
	Exporters   []ExporterConfig     `mapstructure:"exporters" validate:"dive"`
}

type Probes struct {
	Timeout          time.Duration `mapstructure:"timeout" validate:"required,gt=0"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout" validate:"required,gt=0"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" validate:"required,gt=0"`
	TLSPort          int           `mapstructure:"tls_port" validate:"min=1,max=65535"`
}

type Geolocation struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
}

type Reputation struct {
	Endpoint      string `mapstructure:"endpoint" validate:"required,url"`
	APIKey        string `mapstructure:"api_key"`
	ClientID      string `mapstructure:"client_id" validate:"required"`
	ClientVersion string `mapstructure:"client_version" validate:"required"`
}

type Whois struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url" validate:"required_if=Enabled true,omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
}

type Narrative struct {
	Provider              string `mapstructure:"provider" validate:"oneof=offline openai"`
	Endpoint              string `mapstructure:"endpoint" validate:"required_if=Provider openai,omitempty,url"`
	APIKey                string `mapstructure:"api_key" validate:"required_if=Provider openai"`
	Model                 string `mapstructure:"model" validate:"required_if=Provider openai"`
	CompareModel          string `mapstructure:"compare_model"`
	MaxTokens             int    `mapstructure:"max_tokens" validate:"min=1"`
	CompareMaxTokens      int    `mapstructure:"compare_max_tokens" validate:"min=1"`
	IncludeSiteNarratives bool   `mapstructure:"include_site_narratives"`
}

type Server struct {
	Listen            string  `mapstructure:"listen" validate:"required,hostname_port"`
	RateLimit         float64 `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst         int     `mapstructure:"rate_burst" validate:"min=0"`
	TrustForwardedFor bool    `mapstructure:"trust_forwarded_for"`
}

type Monitor struct {
	Workers       int           `mapstructure:"workers" validate:"min=1"`
	CheckInterval time.Duration `mapstructure:"check_interval" validate:"required,gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("probes.timeout", 15*time.Second)
	v.SetDefault("probes.connect_timeout", 5*time.Second)
	v.SetDefault("probes.handshake_timeout", 5*time.Second)
	v.SetDefault("probes.tls_port", 443)

	v.SetDefault("geolocation.base_url", "http://api.ipstack.com")
	v.SetDefault("geolocation.api_key", "")

	v.SetDefault("reputation.endpoint", "https://safebrowsing.googleapis.com/v4/threatMatches:find")
	v.SetDefault("reputation.api_key", "")
	v.SetDefault("reputation.client_id", "URL Safety Checker")
	v.SetDefault("reputation.client_version", "1.0")

	v.SetDefault("whois.enabled", false)
	v.SetDefault("whois.base_url", "https://www.whoisxmlapi.com/whoisserver/WhoisService")
	v.SetDefault("whois.api_key", "")

	v.SetDefault("narrative.provider", "offline")
	v.SetDefault("narrative.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("narrative.api_key", "")
	v.SetDefault("narrative.model", "gpt-4o")
	v.SetDefault("narrative.compare_model", "gpt-4")
	v.SetDefault("narrative.max_tokens", 500)
	v.SetDefault("narrative.compare_max_tokens", 700)
	v.SetDefault("narrative.include_site_narratives", true)

	v.SetDefault("server.listen", "127.0.0.1:8080")
	v.SetDefault("server.rate_limit", 1.0)
	v.SetDefault("server.rate_burst", 5)
	v.SetDefault("server.trust_forwarded_for", false)

	v.SetDefault("monitor.workers", 2)
	v.SetDefault("monitor.check_interval", time.Hour)
}

// NewConfig loads the configuration for the given path and validates it.
func NewConfig(path Path) (*Config, error) {
	return Load(string(path))
}

// Load reads an optional config file, applies SITECHECK_* environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SITECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	for _, site := range cfg.Sites {
		if site.Name == "" {
			return nil, fmt.Errorf("%w: site name is required", ErrInvalidConfig)
		}
		if site.URL == "" {
			return nil, fmt.Errorf("%w: URL is required for site %s", ErrInvalidConfig, site.Name)
		}
	}

	if err := validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, formatValidationErrors(validationErrors)
		}
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// resolvePath returns the file to read, or "" when running on defaults.
func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env, nil
	}

	found, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.yaml"))
	if err != nil {
		return "", nil
	}
	return found, nil
}

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("exporterType", validateExporterType); err != nil {
		panic(fmt.Sprintf("failed to register exporter type validator: %v", err))
	}
}

// formatValidationErrors formats validation errors into a user-friendly error message
func formatValidationErrors(errs validator.ValidationErrors) error {
	var errMsgs []string
	for _, err := range errs {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"field '%s' failed validation: %s",
			err.Namespace(),
			err.Tag(),
		))
	}
	return fmt.Errorf("%w: validation errors: %v", ErrInvalidConfig, errMsgs)
}
