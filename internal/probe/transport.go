package probe

import (
	"context"
	"strings"

	"site-checker/internal/domain"
)

// Transport reports whether the target declares a secure scheme. It does no I/O.
type Transport struct{}

func NewTransport() *Transport {
	return &Transport{}
}

func (Transport) Name() domain.ProbeName {
	return domain.ProbeTransport
}

func (Transport) Check(_ context.Context, target domain.Target) (bool, error) {
	if target.Host == "" {
		return false, NewError(domain.KindParse, "URL has no host", nil)
	}
	return strings.EqualFold(target.Scheme, "https"), nil
}
