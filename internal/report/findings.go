package report

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"site-checker/internal/domain"
)

type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusInfo  Status = "info"
	StatusError Status = "error"
)

// Finding is the one-line summary of a probe outcome.
type Finding struct {
	Check  string
	Status Status
	Detail string
}

// Summarize lists one finding per probe in report order.
func Summarize(r domain.SiteReport) []Finding {
	findings := []Finding{
		transportFinding(r.Transport),
		certificateFinding(r.Certificate),
		originFinding(r.Origin),
		reputationFinding(r.Reputation),
	}
	if r.DomainAge != nil {
		findings = append(findings, domainAgeFinding(*r.DomainAge))
	}
	return findings
}

func failed(check string, d domain.ErrorDetail) Finding {
	return Finding{Check: check, Status: StatusError, Detail: d.String()}
}

func transportFinding(o domain.Outcome[bool]) Finding {
	const check = "HTTPS"
	if d, ok := o.Err(); ok {
		return failed(check, d)
	}
	if https, _ := o.Value(); https {
		return Finding{check, StatusPass, "served over HTTPS"}
	}
	return Finding{check, StatusFail, "not served over HTTPS"}
}

func certificateFinding(o domain.Outcome[domain.CertificateInfo]) Finding {
	const check = "Certificate"
	if d, ok := o.Err(); ok {
		if d.Kind == domain.KindCertificateInvalid {
			return Finding{check, StatusFail, d.Message}
		}
		return failed(check, d)
	}
	info, _ := o.Value()
	detail := fmt.Sprintf("%s, issued by %s, valid until %s", info.Subject, info.Issuer, info.NotAfter.Format("2006-01-02"))
	if info.TLSVersion != "" {
		detail += " (" + info.TLSVersion + ")"
	}
	return Finding{check, StatusPass, detail}
}

func originFinding(o domain.Outcome[domain.GeoRecord]) Finding {
	const check = "Origin"
	if d, ok := o.Err(); ok {
		return failed(check, d)
	}
	rec, _ := o.Value()
	place := lo.FilterMap([]*string{rec.City, rec.Region, rec.Country}, func(s *string, _ int) (string, bool) {
		return lo.FromPtr(s), s != nil && *s != ""
	})
	if len(place) == 0 {
		return Finding{check, StatusInfo, rec.IP}
	}
	return Finding{check, StatusInfo, fmt.Sprintf("%s (%s)", rec.IP, strings.Join(place, ", "))}
}

func reputationFinding(o domain.Outcome[domain.ReputationVerdict]) Finding {
	const check = "Reputation"
	if d, ok := o.Err(); ok {
		return failed(check, d)
	}
	v, _ := o.Value()
	if !v.Flagged {
		return Finding{check, StatusPass, "not listed as unsafe"}
	}
	threats := lo.Uniq(lo.Map(v.Matches, func(m domain.ThreatMatch, _ int) string { return m.ThreatType }))
	return Finding{check, StatusFail, "flagged for " + strings.Join(threats, ", ")}
}

func domainAgeFinding(o domain.Outcome[domain.DomainAge]) Finding {
	const check = "Domain age"
	if d, ok := o.Err(); ok {
		return failed(check, d)
	}
	age, _ := o.Value()
	if !age.Known {
		return Finding{check, StatusInfo, age.Domain + ": creation date unknown"}
	}
	return Finding{check, StatusInfo, age.Domain + " created " + age.CreatedDate}
}
