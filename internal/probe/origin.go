package probe

import (
	"context"
	"errors"
	"net"

	"site-checker/internal/domain"
	"site-checker/internal/geoip"
)

// Resolver is the subset of net.Resolver the origin probe needs.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Origin resolves the target host and geolocates the resulting address.
type Origin struct {
	resolver Resolver
	locator  geoip.Locator
}

func NewOrigin(resolver Resolver, locator geoip.Locator) *Origin {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Origin{resolver: resolver, locator: locator}
}

func (o *Origin) Name() domain.ProbeName {
	return domain.ProbeOrigin
}

func (o *Origin) Check(ctx context.Context, target domain.Target) (domain.GeoRecord, error) {
	if target.Host == "" {
		return domain.GeoRecord{}, NewError(domain.KindParse, "URL has no host", nil)
	}

	ip, err := o.resolve(ctx, target.Host)
	if err != nil {
		return domain.GeoRecord{}, err
	}

	loc, err := o.locator.Lookup(ctx, ip)
	if err != nil {
		return domain.GeoRecord{}, classifyLocator(err)
	}

	return domain.GeoRecord{
		IP:        ip,
		Country:   loc.Country,
		Region:    loc.Region,
		City:      loc.City,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
	}, nil
}

// resolve returns the first IPv4 address of host, falling back to IPv6.
func (o *Origin) resolve(ctx context.Context, host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	addrs, err := o.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		var dnsErr *net.DNSError
		if !errors.As(err, &dnsErr) && !errors.Is(err, context.DeadlineExceeded) {
			err = &net.DNSError{Err: err.Error(), Name: host}
		}
		return "", Classify(err)
	}
	if len(addrs) == 0 {
		return "", NewError(domain.KindDNSResolution, "host has no addresses", nil)
	}

	for _, addr := range addrs {
		if v4 := addr.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}

func classifyLocator(err error) error {
	var upstream *geoip.UpstreamError
	switch {
	case errors.Is(err, geoip.ErrNotConfigured):
		return NewError(domain.KindUpstreamAPI, "geolocation service is not configured", err)
	case errors.As(err, &upstream):
		return NewError(domain.KindUpstreamAPI, upstream.Error(), err)
	}
	return Classify(err)
}
