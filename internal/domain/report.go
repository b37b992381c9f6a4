package domain

import "time"

type ProbeName string

const (
	ProbeTransport   ProbeName = "transport"
	ProbeCertificate ProbeName = "certificate"
	ProbeOrigin      ProbeName = "origin"
	ProbeReputation  ProbeName = "reputation"
	ProbeDomainAge   ProbeName = "domain_age"
)

// CoreProbes lists the probes every SiteReport must have resolved.
var CoreProbes = []ProbeName{ProbeTransport, ProbeCertificate, ProbeOrigin, ProbeReputation}

type Target struct {
	Raw    string
	Scheme string
	Host   string
	Port   string
}

type CertificateInfo struct {
	Subject            string    `json:"subject" yaml:"subject"`
	Issuer             string    `json:"issuer" yaml:"issuer"`
	SerialNumber       string    `json:"serial_number" yaml:"serial_number"`
	NotBefore          time.Time `json:"not_before" yaml:"not_before"`
	NotAfter           time.Time `json:"not_after" yaml:"not_after"`
	DNSNames           []string  `json:"dns_names,omitempty" yaml:"dns_names,omitempty"`
	SignatureAlgorithm string    `json:"signature_algorithm" yaml:"signature_algorithm"`
	PublicKeyAlgorithm string    `json:"public_key_algorithm" yaml:"public_key_algorithm"`
	SelfSigned         bool      `json:"self_signed" yaml:"self_signed"`
	TLSVersion         string    `json:"tls_version" yaml:"tls_version"`
	CipherSuite        string    `json:"cipher_suite" yaml:"cipher_suite"`
	Chain              []string  `json:"chain,omitempty" yaml:"chain,omitempty"`
}

type GeoRecord struct {
	IP        string   `json:"ip" yaml:"ip"`
	Country   *string  `json:"country,omitempty" yaml:"country,omitempty"`
	Region    *string  `json:"region,omitempty" yaml:"region,omitempty"`
	City      *string  `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
}

type ThreatMatch struct {
	ThreatType   string `json:"threat_type" yaml:"threat_type"`
	PlatformType string `json:"platform_type" yaml:"platform_type"`
	URL          string `json:"url" yaml:"url"`
}

// ReputationVerdict with no matches means the URL is not flagged. It is only
// produced when the reputation service actually answered.
type ReputationVerdict struct {
	Flagged bool          `json:"flagged" yaml:"flagged"`
	Matches []ThreatMatch `json:"matches" yaml:"matches"`
}

type DomainAge struct {
	Domain      string `json:"domain" yaml:"domain"`
	CreatedDate string `json:"created_date" yaml:"created_date"`
	Known       bool   `json:"known" yaml:"known"`
}

// SiteReport holds one outcome per probe for a single URL.
type SiteReport struct {
	URL         string                     `json:"url" yaml:"url"`
	Transport   Outcome[bool]              `json:"transport" yaml:"transport"`
	Certificate Outcome[CertificateInfo]   `json:"certificate" yaml:"certificate"`
	Origin      Outcome[GeoRecord]         `json:"origin" yaml:"origin"`
	Reputation  Outcome[ReputationVerdict] `json:"reputation" yaml:"reputation"`
	DomainAge   *Outcome[DomainAge]        `json:"domain_age,omitempty" yaml:"domain_age,omitempty"`
}

// Complete reports whether every core slot is resolved.
func (r SiteReport) Complete() bool {
	return r.Transport.Resolved() &&
		r.Certificate.Resolved() &&
		r.Origin.Resolved() &&
		r.Reputation.Resolved() &&
		(r.DomainAge == nil || r.DomainAge.Resolved())
}

// Failures returns the error detail of every failed probe keyed by probe name.
func (r SiteReport) Failures() map[ProbeName]ErrorDetail {
	failures := make(map[ProbeName]ErrorDetail)
	if d, ok := r.Transport.Err(); ok {
		failures[ProbeTransport] = d
	}
	if d, ok := r.Certificate.Err(); ok {
		failures[ProbeCertificate] = d
	}
	if d, ok := r.Origin.Err(); ok {
		failures[ProbeOrigin] = d
	}
	if d, ok := r.Reputation.Err(); ok {
		failures[ProbeReputation] = d
	}
	if r.DomainAge != nil {
		if d, ok := r.DomainAge.Err(); ok {
			failures[ProbeDomainAge] = d
		}
	}
	return failures
}

type ComparativeReport struct {
	First  SiteReport `json:"first" yaml:"first"`
	Second SiteReport `json:"second" yaml:"second"`
}

func (c ComparativeReport) Complete() bool {
	return c.First.Complete() && c.Second.Complete()
}
