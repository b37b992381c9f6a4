package probe

import (
	"context"
	"errors"
	"net"

	"golang.org/x/net/publicsuffix"
	"site-checker/internal/domain"
	"site-checker/internal/whois"
)

// DomainAge reports when the registrable domain of the target was created.
type DomainAge struct {
	registry whois.Registry
}

func NewDomainAge(registry whois.Registry) *DomainAge {
	return &DomainAge{registry: registry}
}

func (d *DomainAge) Name() domain.ProbeName {
	return domain.ProbeDomainAge
}

func (d *DomainAge) Check(ctx context.Context, target domain.Target) (domain.DomainAge, error) {
	if net.ParseIP(target.Host) != nil {
		return domain.DomainAge{}, NewError(domain.KindParse, "IP addresses have no registrable domain", nil)
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(target.Host)
	if err != nil {
		return domain.DomainAge{}, NewError(domain.KindParse, "host has no registrable domain", err)
	}

	created, err := d.registry.CreatedDate(ctx, registrable)
	if err != nil {
		var upstream *whois.UpstreamError
		switch {
		case errors.Is(err, whois.ErrNotConfigured):
			return domain.DomainAge{}, NewError(domain.KindUpstreamAPI, "whois service is not configured", err)
		case errors.As(err, &upstream):
			return domain.DomainAge{}, NewError(domain.KindUpstreamAPI, upstream.Error(), err)
		}
		return domain.DomainAge{}, Classify(err)
	}

	return domain.DomainAge{
		Domain:      registrable,
		CreatedDate: created,
		Known:       created != whois.UnknownDate,
	}, nil
}
