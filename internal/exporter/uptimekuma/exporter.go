package uptimekuma

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	. "site-checker/internal/domain"
)

type Config struct {
	MonitorURL string `mapstructure:"monitor_url" validate:"required,url"`
}

// UptimeKuma reports watched sites to an Uptime Kuma push monitor. A Safe
// verdict is pushed as up, anything else as down.
type UptimeKuma struct {
	monitorURL string
	client     *http.Client
}

func New(options map[string]interface{}, client *http.Client) (Exporter, error) {
	var cfg Config
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return nil, fmt.Errorf("invalid uptime kuma config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid uptime kuma config: %w", err)
	}

	return NewWithURL(cfg.MonitorURL, client), nil
}

func NewWithURL(monitorURL string, client *http.Client) Exporter {
	if client == nil {
		client = http.DefaultClient
	}
	return &UptimeKuma{
		monitorURL: monitorURL,
		client:     client,
	}
}

func (u *UptimeKuma) Export(result CheckResult) error {
	push, err := url.Parse(u.monitorURL)
	if err != nil {
		return fmt.Errorf("invalid monitor url: %w", err)
	}

	status, msg := "down", "error"
	if result.Error != nil {
		msg = result.Error.Error()
	}
	if result.Assessment != nil {
		msg = string(result.Assessment.Verdict)
		if result.Assessment.Verdict == VerdictSafe {
			status = "up"
		}
	}

	q := push.Query()
	q.Set("status", status)
	q.Set("msg", msg)
	q.Set("ping", strconv.FormatInt(result.Duration.Milliseconds(), 10))
	push.RawQuery = q.Encode()

	resp, err := u.client.Get(push.String())
	if err != nil {
		return fmt.Errorf("failed to push to uptime kuma: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("uptime kuma returned status %d", resp.StatusCode)
	}
	return nil
}
