package whois

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/httpclient"
)

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(New, fx.As(new(Registry))),
	),
)

// UnknownDate is reported when the registry has no creation date.
const UnknownDate = "Unknown"

var ErrNotConfigured = errors.New("whois service is not configured")

// Registry looks up registration data for a registrable domain.
type Registry interface {
	CreatedDate(ctx context.Context, domain string) (string, error)
}

type UpstreamError struct {
	StatusCode int
	Reason     string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("whois service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("whois service error: %s", e.Reason)
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg *config.Config, client *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.Whois.BaseURL,
		apiKey:  cfg.Whois.APIKey,
		client:  client,
		logger:  logger.With(zap.String("component", "whois")),
	}
}

type whoisResponse struct {
	WhoisRecord *struct {
		CreatedDate string `json:"createdDate"`
	} `json:"WhoisRecord"`
}

// CreatedDate returns the domain's creation date as reported by the registry,
// or UnknownDate when the record has none.
func (c *Client) CreatedDate(ctx context.Context, domain string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid whois endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("apiKey", c.apiKey)
	q.Set("domainName", domain)
	q.Set("outputFormat", "JSON")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query whois service: %w", httpclient.RedactError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Upstream rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	var parsed whoisResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &UpstreamError{Reason: "malformed response"}
	}
	if parsed.WhoisRecord == nil || parsed.WhoisRecord.CreatedDate == "" {
		return UnknownDate, nil
	}

	return parsed.WhoisRecord.CreatedDate, nil
}
