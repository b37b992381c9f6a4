package safebrowsing

import (
	"bytes"
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
		fx.Annotate(New, fx.As(new(Lookup))),
	),
)

var ErrNotConfigured = errors.New("reputation service is not configured")

var (
	ThreatTypes = []string{
		"MALWARE",
		"SOCIAL_ENGINEERING",
		"UNWANTED_SOFTWARE",
		"POTENTIALLY_HARMFUL_APPLICATION",
	}
	PlatformTypes    = []string{"ANY_PLATFORM"}
	ThreatEntryTypes = []string{"URL"}
)

// Lookup checks a URL against the threat lists.
type Lookup interface {
	Find(ctx context.Context, rawURL string) ([]Match, error)
}

type Match struct {
	ThreatType      string `json:"threatType"`
	PlatformType    string `json:"platformType"`
	ThreatEntryType string `json:"threatEntryType"`
	Threat          struct {
		URL string `json:"url"`
	} `json:"threat"`
}

type UpstreamError struct {
	StatusCode int
	Reason     string
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("reputation service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("reputation service error: %s", e.Reason)
}

type clientInfo struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type threatEntry struct {
	URL string `json:"url"`
}

type threatInfo struct {
	ThreatTypes      []string      `json:"threatTypes"`
	PlatformTypes    []string      `json:"platformTypes"`
	ThreatEntryTypes []string      `json:"threatEntryTypes"`
	ThreatEntries    []threatEntry `json:"threatEntries"`
}

type findRequest struct {
	Client     clientInfo `json:"client"`
	ThreatInfo threatInfo `json:"threatInfo"`
}

type findResponse struct {
	Matches []Match `json:"matches"`
}

type Client struct {
	endpoint string
	apiKey   string
	identity clientInfo
	client   *http.Client
	logger   *zap.Logger
}

func New(cfg *config.Config, client *http.Client, logger *zap.Logger) *Client {
	return &Client{
		endpoint: cfg.Reputation.Endpoint,
		apiKey:   cfg.Reputation.APIKey,
		identity: clientInfo{
			ClientID:      cfg.Reputation.ClientID,
			ClientVersion: cfg.Reputation.ClientVersion,
		},
		client: client,
		logger: logger.With(zap.String("component", "safebrowsing")),
	}
}

// Find returns the threat matches for rawURL. An empty slice means the service
// answered and the URL is not listed.
func (c *Client) Find(ctx context.Context, rawURL string) ([]Match, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(findRequest{
		Client: c.identity,
		ThreatInfo: threatInfo{
			ThreatTypes:      ThreatTypes,
			PlatformTypes:    PlatformTypes,
			ThreatEntryTypes: ThreatEntryTypes,
			ThreatEntries:    []threatEntry{{URL: rawURL}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid reputation endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", c.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query reputation service: %w", httpclient.RedactError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("Upstream rejected request",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed findResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &UpstreamError{Reason: "malformed response", Body: string(body)}
	}
	if parsed.Matches == nil {
		parsed.Matches = []Match{}
	}

	return parsed.Matches, nil
}
