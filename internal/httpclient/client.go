package httpclient

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/motemen/go-loghttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(New),
)

// Query parameters that carry credentials for the upstream services.
var secretParams = []string{"key", "apiKey", "access_key"}

// New returns the HTTP client shared by every upstream service. Requests and
// responses are logged at debug level with credentials removed from the URL.
func New(logger *zap.Logger) *http.Client {
	return NewWithTransport(logger, http.DefaultTransport)
}

func NewWithTransport(logger *zap.Logger, base http.RoundTripper) *http.Client {
	logger = logger.With(zap.String("component", "http"))

	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &loghttp.Transport{
			Transport: base,
			LogRequest: func(req *http.Request) {
				logger.Debug("Outbound request",
					zap.String("method", req.Method),
					zap.String("url", Redact(req.URL)))
			},
			LogResponse: func(resp *http.Response) {
				logger.Debug("Upstream response",
					zap.String("url", Redact(resp.Request.URL)),
					zap.Int("status", resp.StatusCode))
			},
		},
	}
}

// Redact returns u with the values of credential query parameters masked.
func Redact(u *url.URL) string {
	if u == nil {
		return ""
	}

	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return u.String()
	}

	redacted := *u
	redacted.RawQuery = q.Encode()
	return redacted.String()
}

// RedactError masks credentials in the URL that http.Client.Do puts into its
// *url.Error. Other errors are returned unchanged.
func RedactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	u, parseErr := url.Parse(urlErr.URL)
	if parseErr != nil {
		return &url.Error{Op: urlErr.Op, URL: "REDACTED", Err: urlErr.Err}
	}
	return &url.Error{Op: urlErr.Op, URL: Redact(u), Err: urlErr.Err}
}
