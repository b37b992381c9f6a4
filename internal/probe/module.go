package probe

import (
	"net"

	"go.uber.org/fx"
	"site-checker/internal/config"
	"site-checker/internal/geoip"
	"site-checker/internal/safebrowsing"
	"site-checker/internal/whois"
)

var Module = fx.Options(
	fx.Provide(NewSet),
)

// NewSet wires the probes from configuration and the upstream clients.
func NewSet(
	cfg *config.Config,
	locator geoip.Locator,
	lookup safebrowsing.Lookup,
	registry whois.Registry,
) Set {
	set := Set{
		Transport: NewTransport(),
		Certificate: NewCertificate(CertificateOptions{
			Port:             cfg.Probes.TLSPort,
			ConnectTimeout:   cfg.Probes.ConnectTimeout,
			HandshakeTimeout: cfg.Probes.HandshakeTimeout,
		}),
		Origin:     NewOrigin(net.DefaultResolver, locator),
		Reputation: NewReputation(lookup),
	}
	if cfg.Whois.Enabled {
		set.DomainAge = NewDomainAge(registry)
	}
	return set
}
