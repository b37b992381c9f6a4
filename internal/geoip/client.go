package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/httpclient"
)

var Module = fx.Options(
	fx.Provide(
		fx.Annotate(New, fx.As(new(Locator))),
	),
)

// ErrNotConfigured is returned when no access key is configured.
var ErrNotConfigured = errors.New("geolocation service is not configured")

// Locator resolves an IP address to its approximate location.
type Locator interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

type Location struct {
	IP        string   `json:"ip"`
	Country   *string  `json:"country_name"`
	Region    *string  `json:"region_name"`
	City      *string  `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpstreamError is an answer from the geolocation service that could not be
// used. Body is kept for debug logging only.
type UpstreamError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("geolocation service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("geolocation service error: %s", e.Reason)
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg *config.Config, client *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Geolocation.BaseURL, "/"),
		apiKey:  cfg.Geolocation.APIKey,
		client:  client,
		logger:  logger.With(zap.String("component", "geoip")),
	}
}

type lookupResponse struct {
	Location
	Success *bool `json:"success"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
}

func (c *Client) Lookup(ctx context.Context, ip string) (Location, error) {
	if c.apiKey == "" {
		return Location{}, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/%s?access_key=%s", c.baseURL, url.PathEscape(ip), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("failed to query geolocation service: %w", httpclient.RedactError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Upstream rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return Location{}, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Location{}, &UpstreamError{Reason: "malformed response", Body: string(body)}
	}
	if parsed.Success != nil && !*parsed.Success {
		reason := "request rejected"
		if parsed.Error != nil && parsed.Error.Type != "" {
			reason = parsed.Error.Type
		}
		return Location{}, &UpstreamError{Reason: reason, Body: string(body)}
	}

	loc := parsed.Location
	if loc.IP == "" {
		loc.IP = ip
	}
	return loc, nil
}
