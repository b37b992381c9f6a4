package target

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"site-checker/internal/domain"
)

// ErrInvalidURL is returned for input that cannot be turned into a scheme and host.
var ErrInvalidURL = errors.New("invalid URL")

// Parse validates a user supplied URL. A missing scheme is tolerated and left
// empty on the returned target; any scheme other than http or https is rejected.
func Parse(raw string) (domain.Target, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Target{}, fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	declared := ""
	toParse := trimmed
	if idx := strings.Index(trimmed, "://"); idx > 0 {
		declared = strings.ToLower(trimmed[:idx])
	} else {
		toParse = "http://" + trimmed
	}

	switch declared {
	case "", "http", "https":
	default:
		return domain.Target{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, declared)
	}

	u, err := url.Parse(toParse)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return domain.Target{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	host := u.Hostname()
	if host == "" {
		return domain.Target{}, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if strings.ContainsAny(host, " \t") {
		return domain.Target{}, fmt.Errorf("%w: invalid host %q", ErrInvalidURL, host)
	}

	return domain.Target{
		Raw:    trimmed,
		Scheme: declared,
		Host:   strings.ToLower(host),
		Port:   u.Port(),
	}, nil
}
