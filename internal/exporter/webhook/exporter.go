package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"site-checker/internal/domain"
)

type Config struct {
	URL     string            `mapstructure:"url" validate:"required,url"`
	Headers map[string]string `mapstructure:"headers"`
}

// Webhook posts every check result of its watched sites as JSON.
type Webhook struct {
	cfg    Config
	client *http.Client
}

type Payload struct {
	Site       domain.SiteName    `json:"site"`
	URL        string             `json:"url"`
	Verdict    domain.Verdict     `json:"verdict,omitempty"`
	Error      string             `json:"error,omitempty"`
	Duration   float64            `json:"duration_seconds"`
	Completed  time.Time          `json:"completed_at"`
	Assessment *domain.Assessment `json:"assessment,omitempty"`
}

func New(options map[string]interface{}, client *http.Client) (domain.Exporter, error) {
	var cfg Config
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid webhook config: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Webhook{cfg: cfg, client: client}, nil
}

func (w *Webhook) Export(result domain.CheckResult) error {
	payload := Payload{
		Site:       result.Site.Name,
		URL:        result.Site.URL,
		Duration:   result.Duration.Seconds(),
		Completed:  result.Completed,
		Assessment: result.Assessment,
	}
	if result.Assessment != nil {
		payload.Verdict = result.Assessment.Verdict
	}
	if result.Error != nil {
		payload.Error = result.Error.Error()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
