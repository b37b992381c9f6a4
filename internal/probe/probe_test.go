package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
	"site-checker/internal/geoip"
	"site-checker/internal/safebrowsing"
	"site-checker/internal/whois"
)

func TestTransport(t *testing.T) {
	tests := []struct {
		name    string
		target  domain.Target
		want    bool
		wantErr bool
	}{
		{"https", domain.Target{Scheme: "https", Host: "example.com"}, true, false},
		{"http", domain.Target{Scheme: "http", Host: "example.com"}, false, false},
		{"no scheme", domain.Target{Host: "example.com"}, false, false},
		{"no host", domain.Target{Scheme: "https"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTransport().Check(context.Background(), tt.target)
			if tt.wantErr {
				requireKind(t, err, domain.KindParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type fakeResolver struct {
	addrs []net.IPAddr
	err   error
}

func (f fakeResolver) LookupIPAddr(context.Context, string) ([]net.IPAddr, error) {
	return f.addrs, f.err
}

type countingLocator struct {
	calls atomic.Int32
	loc   geoip.Location
	err   error
	gotIP string
}

func (c *countingLocator) Lookup(_ context.Context, ip string) (geoip.Location, error) {
	c.calls.Add(1)
	c.gotIP = ip
	return c.loc, c.err
}

func TestOriginUnresolvableHostSkipsGeolocation(t *testing.T) {
	locator := &countingLocator{}
	p := NewOrigin(fakeResolver{err: &net.DNSError{Err: "no such host", Name: "nope.invalid", IsNotFound: true}}, locator)

	_, err := p.Check(context.Background(), domain.Target{Host: "nope.invalid"})

	requireKind(t, err, domain.KindDNSResolution)
	assert.Zero(t, locator.calls.Load())
}

func TestOriginPrefersIPv4(t *testing.T) {
	country := "Netherlands"
	locator := &countingLocator{loc: geoip.Location{Country: &country}}
	p := NewOrigin(fakeResolver{addrs: []net.IPAddr{
		{IP: net.ParseIP("2001:db8::1")},
		{IP: net.ParseIP("192.0.2.10")},
	}}, locator)

	rec, err := p.Check(context.Background(), domain.Target{Host: "example.com"})
	require.NoError(t, err)

	assert.Equal(t, "192.0.2.10", locator.gotIP)
	assert.Equal(t, "192.0.2.10", rec.IP)
	require.NotNil(t, rec.Country)
	assert.Equal(t, "Netherlands", *rec.Country)
	assert.Nil(t, rec.City)
}

func TestOriginIPLiteralSkipsDNS(t *testing.T) {
	locator := &countingLocator{}
	p := NewOrigin(fakeResolver{err: errors.New("resolver must not be used")}, locator)

	rec, err := p.Check(context.Background(), domain.Target{Host: "203.0.113.7"})
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", rec.IP)
	assert.EqualValues(t, 1, locator.calls.Load())
}

func TestOriginLocatorErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"upstream", &geoip.UpstreamError{StatusCode: 500}, domain.KindUpstreamAPI},
		{"not configured", geoip.ErrNotConfigured, domain.KindUpstreamAPI},
		{"deadline", fmt.Errorf("failed to query geolocation service: %w", context.DeadlineExceeded), domain.KindTimeout},
		{"refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), domain.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewOrigin(fakeResolver{}, &countingLocator{err: tt.err})
			_, err := p.Check(context.Background(), domain.Target{Host: "198.51.100.1"})
			requireKind(t, err, tt.kind)
		})
	}
}

func TestOriginUpstreamThroughClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	locator := geoip.New(&config.Config{Geolocation: config.Geolocation{BaseURL: srv.URL, APIKey: "k"}}, srv.Client(), zap.NewNop())
	_, err := NewOrigin(nil, locator).Check(context.Background(), domain.Target{Host: "198.51.100.1"})

	classified := requireKind(t, err, domain.KindUpstreamAPI)
	assert.NotContains(t, classified.Message, "quota exceeded")
}

func newReputationProbe(t *testing.T, handler http.HandlerFunc, apiKey string) *Reputation {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{Reputation: config.Reputation{
		Endpoint:      srv.URL,
		APIKey:        apiKey,
		ClientID:      "URL Safety Checker",
		ClientVersion: "1.0",
	}}
	return NewReputation(safebrowsing.New(cfg, srv.Client(), zap.NewNop()))
}

func TestReputation(t *testing.T) {
	target := domain.Target{Raw: "https://example.com/login", Scheme: "https", Host: "example.com"}

	t.Run("empty match list is a success", func(t *testing.T) {
		p := newReputationProbe(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}, "key")

		verdict, err := p.Check(context.Background(), target)
		require.NoError(t, err)
		assert.False(t, verdict.Flagged)
		assert.NotNil(t, verdict.Matches)
		assert.Empty(t, verdict.Matches)
	})

	t.Run("matches flag the url", func(t *testing.T) {
		p := newReputationProbe(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"matches":[{"threatType":"SOCIAL_ENGINEERING","platformType":"ANY_PLATFORM","threat":{"url":"https://example.com/login"}}]}`))
		}, "key")

		verdict, err := p.Check(context.Background(), target)
		require.NoError(t, err)
		assert.True(t, verdict.Flagged)
		assert.Equal(t, []domain.ThreatMatch{{
			ThreatType:   "SOCIAL_ENGINEERING",
			PlatformType: "ANY_PLATFORM",
			URL:          "https://example.com/login",
		}}, verdict.Matches)
	})

	t.Run("non 2xx is an upstream failure", func(t *testing.T) {
		p := newReputationProbe(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}, "key")

		_, err := p.Check(context.Background(), target)
		requireKind(t, err, domain.KindUpstreamAPI)
	})

	t.Run("missing key is never a success", func(t *testing.T) {
		p := newReputationProbe(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}, "")

		_, err := p.Check(context.Background(), target)
		classified := requireKind(t, err, domain.KindUpstreamAPI)
		assert.Equal(t, "reputation service is not configured", classified.Message)
	})
}

type fakeRegistry struct {
	domain  string
	created string
	err     error
}

func (f *fakeRegistry) CreatedDate(_ context.Context, d string) (string, error) {
	f.domain = d
	return f.created, f.err
}

func TestDomainAge(t *testing.T) {
	t.Run("queries the registrable domain", func(t *testing.T) {
		registry := &fakeRegistry{created: "2001-03-02T00:00:00Z"}
		age, err := NewDomainAge(registry).Check(context.Background(), domain.Target{Host: "www.shop.example.co.uk"})
		require.NoError(t, err)

		assert.Equal(t, "example.co.uk", registry.domain)
		assert.Equal(t, domain.DomainAge{Domain: "example.co.uk", CreatedDate: "2001-03-02T00:00:00Z", Known: true}, age)
	})

	t.Run("unknown date", func(t *testing.T) {
		age, err := NewDomainAge(&fakeRegistry{created: whois.UnknownDate}).Check(context.Background(), domain.Target{Host: "example.com"})
		require.NoError(t, err)
		assert.False(t, age.Known)
	})

	t.Run("ip literal", func(t *testing.T) {
		_, err := NewDomainAge(&fakeRegistry{}).Check(context.Background(), domain.Target{Host: "192.0.2.1"})
		requireKind(t, err, domain.KindParse)
	})

	t.Run("upstream", func(t *testing.T) {
		_, err := NewDomainAge(&fakeRegistry{err: &whois.UpstreamError{StatusCode: 401}}).Check(context.Background(), domain.Target{Host: "example.com"})
		requireKind(t, err, domain.KindUpstreamAPI)
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"dns", &net.DNSError{Err: "no such host", IsNotFound: true}, domain.KindDNSResolution},
		{"dns timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, domain.KindTimeout},
		{"deadline", context.DeadlineExceeded, domain.KindTimeout},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, domain.KindNetwork},
		{"already classified", NewError(domain.KindUpstreamAPI, "x", nil), domain.KindUpstreamAPI},
		{"other", errors.New("boom"), domain.KindNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, Classify(tt.err).Kind)
		})
	}

	assert.Nil(t, Classify(nil))
}

func TestNewSetDomainAgeOptional(t *testing.T) {
	cfg := &config.Config{}
	set := NewSet(cfg, &countingLocator{}, nil, &fakeRegistry{})
	assert.Nil(t, set.DomainAge)
	assert.NotNil(t, set.Transport)

	cfg.Whois.Enabled = true
	set = NewSet(cfg, &countingLocator{}, nil, &fakeRegistry{})
	assert.NotNil(t, set.DomainAge)
}
