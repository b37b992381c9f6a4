package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"site-checker/internal/config"
	"site-checker/internal/domain"
)

func safeReport(url string) domain.SiteReport {
	return domain.SiteReport{
		URL:         url,
		Transport:   domain.Success(true),
		Certificate: domain.Success(domain.CertificateInfo{Subject: "CN=" + url}),
		Origin:      domain.Success(domain.GeoRecord{IP: "192.0.2.1"}),
		Reputation:  domain.Success(domain.ReputationVerdict{Matches: []domain.ThreatMatch{}}),
	}
}

func TestOfflineDescribeSite(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.SiteReport)
		verdict domain.Verdict
		contain string
	}{
		{
			name:    "all clear",
			mutate:  func(*domain.SiteReport) {},
			verdict: domain.VerdictSafe,
		},
		{
			name: "plain http",
			mutate: func(r *domain.SiteReport) {
				r.Transport = domain.Success(false)
			},
			verdict: domain.VerdictUnsafe,
			contain: "does not use HTTPS",
		},
		{
			name: "expired certificate",
			mutate: func(r *domain.SiteReport) {
				r.Certificate = domain.Failure[domain.CertificateInfo](domain.KindCertificateInvalid, "certificate has expired or is not yet valid")
			},
			verdict: domain.VerdictUnsafe,
			contain: "certificate has expired",
		},
		{
			name: "flagged",
			mutate: func(r *domain.SiteReport) {
				r.Reputation = domain.Success(domain.ReputationVerdict{Flagged: true, Matches: []domain.ThreatMatch{{ThreatType: "MALWARE"}}})
			},
			verdict: domain.VerdictUnsafe,
			contain: "flagged for MALWARE",
		},
		{
			name: "reputation unavailable leaves no verdict",
			mutate: func(r *domain.SiteReport) {
				r.Reputation = domain.Failure[domain.ReputationVerdict](domain.KindUpstreamAPI, "reputation service is not configured")
			},
			verdict: domain.VerdictUnknown,
			contain: "reputation check could not be performed",
		},
		{
			name: "certificate unreachable leaves no verdict",
			mutate: func(r *domain.SiteReport) {
				r.Certificate = domain.Failure[domain.CertificateInfo](domain.KindNetwork, "connection refused")
			},
			verdict: domain.VerdictUnknown,
			contain: "certificate could not be checked (connection refused)",
		},
		{
			name: "origin failure alone is only noted",
			mutate: func(r *domain.SiteReport) {
				r.Origin = domain.Failure[domain.GeoRecord](domain.KindUpstreamAPI, "geolocation service is not configured")
			},
			verdict: domain.VerdictSafe,
			contain: "Note: the origin could not be located",
		},
		{
			name: "unresolvable host with every check failing",
			mutate: func(r *domain.SiteReport) {
				r.URL = "https://this-domain-does-not-exist.invalid"
				r.Certificate = domain.Failure[domain.CertificateInfo](domain.KindDNSResolution, "could not resolve host")
				r.Origin = domain.Failure[domain.GeoRecord](domain.KindDNSResolution, "could not resolve host")
				r.Reputation = domain.Failure[domain.ReputationVerdict](domain.KindUpstreamAPI, "reputation service is not configured")
			},
			verdict: domain.VerdictUnknown,
			contain: "could not be verified",
		},
		{
			name: "flagged wins over unverified checks",
			mutate: func(r *domain.SiteReport) {
				r.Transport = domain.Success(false)
				r.Certificate = domain.Failure[domain.CertificateInfo](domain.KindTimeout, "check timed out")
			},
			verdict: domain.VerdictUnsafe,
			contain: "does not use HTTPS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := safeReport("https://example.com")
			tt.mutate(&report)

			text, err := NewOffline().DescribeSite(context.Background(), report)
			require.NoError(t, err)
			assert.Equal(t, tt.verdict, domain.ParseVerdict(text))
			assert.Contains(t, text, tt.contain)
		})
	}
}

func TestOfflineCompareSites(t *testing.T) {
	unsafe := safeReport("http://example.org")
	unsafe.Transport = domain.Success(false)

	text, err := NewOffline().CompareSites(context.Background(), domain.ComparativeReport{
		First:  unsafe,
		Second: safeReport("https://example.com"),
	}, "", "")
	require.NoError(t, err)
	assert.Contains(t, text, "Website 2 (https://example.com) is safer.")

	text, err = NewOffline().CompareSites(context.Background(), domain.ComparativeReport{
		First:  safeReport("https://a.example"),
		Second: safeReport("https://b.example"),
	}, "", "")
	require.NoError(t, err)
	assert.Contains(t, text, "equally safe")

	unchecked := safeReport("https://c.example")
	unchecked.Reputation = domain.Failure[domain.ReputationVerdict](domain.KindUpstreamAPI, "reputation service is not configured")
	other := safeReport("https://d.example")
	other.Reputation = unchecked.Reputation

	text, err = NewOffline().CompareSites(context.Background(), domain.ComparativeReport{
		First:  unchecked,
		Second: other,
	}, "", "")
	require.NoError(t, err)
	assert.NotContains(t, text, "equally safe")
	assert.Contains(t, text, "could not be fully verified")
	assert.Contains(t, text, "do not show either website to be safer")
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenAI(config.Narrative{
		Provider:         ProviderOpenAI,
		Endpoint:         srv.URL + "/v1/chat/completions",
		APIKey:           "sk-test",
		Model:            "gpt-4o",
		CompareModel:     "gpt-4",
		MaxTokens:        500,
		CompareMaxTokens: 700,
	}, srv.Client(), zap.NewNop())
}

func TestOpenAIDescribeSite(t *testing.T) {
	var got chatRequest
	var auth string
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Safe. The site uses HTTPS.  "}}]}`))
	})

	text, err := client.DescribeSite(context.Background(), safeReport("https://example.com"))
	require.NoError(t, err)

	assert.Equal(t, "Safe. The site uses HTTPS.", text)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, siteSystemPrompt, got.Messages[0].Content)
	assert.Contains(t, got.Messages[1].Content, "URL: https://example.com")
	assert.Contains(t, got.Messages[1].Content, `HTTPS Check: {"status":"success","value":true}`)
	assert.Contains(t, got.Messages[1].Content, `must start with either "Safe" or "Unsafe"`)
}

func TestOpenAICompareSites(t *testing.T) {
	var got chatRequest
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"Website 1 is safer."}}]}`))
	})

	text, err := client.CompareSites(context.Background(), domain.ComparativeReport{
		First:  safeReport("https://a.example"),
		Second: safeReport("https://b.example"),
	}, "Safe. A is fine.", "Unsafe. B is not.")
	require.NoError(t, err)

	assert.Equal(t, "Website 1 is safer.", text)
	assert.Equal(t, "gpt-4", got.Model)
	assert.Equal(t, 700, got.MaxTokens)
	prompt := got.Messages[1].Content
	assert.Less(t, strings.Index(prompt, "https://a.example"), strings.Index(prompt, "https://b.example"))
	assert.Contains(t, prompt, "Analysis: Unsafe. B is not.")
}

func TestOpenAIErrors(t *testing.T) {
	t.Run("non 2xx", func(t *testing.T) {
		client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		})
		_, err := client.DescribeSite(context.Background(), safeReport("https://example.com"))
		assert.ErrorContains(t, err, "status 429")
	})

	t.Run("no choices", func(t *testing.T) {
		client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		})
		_, err := client.DescribeSite(context.Background(), safeReport("https://example.com"))
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}

func TestNewSelectsProvider(t *testing.T) {
	cfg := &config.Config{Narrative: config.Narrative{Provider: ProviderOffline}}
	client, err := New(cfg, http.DefaultClient, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &Offline{}, client)

	cfg.Narrative.Provider = ProviderOpenAI
	client, err = New(cfg, http.DefaultClient, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, client)

	cfg.Narrative.Provider = "llama"
	_, err = New(cfg, http.DefaultClient, zap.NewNop())
	assert.Error(t, err)
}
