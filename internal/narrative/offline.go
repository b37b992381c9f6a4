package narrative

import (
	"context"
	"fmt"
	"strings"

	"site-checker/internal/domain"
)

// Offline writes rule based narratives without calling any service. Its
// output depends only on the report.
type Offline struct{}

func NewOffline() *Offline {
	return &Offline{}
}

func (Offline) DescribeSite(_ context.Context, report domain.SiteReport) (string, error) {
	concerns, unverified, notes := assess(report)

	var b strings.Builder
	switch {
	case len(concerns) > 0:
		fmt.Fprintf(&b, "Unsafe. %s raises concerns: %s.", report.URL, strings.Join(concerns, "; "))
	case len(unverified) > 0:
		// No verdict word: a site that could not be checked is never called safe.
		fmt.Fprintf(&b, "Inconclusive. The safety of %s could not be verified: %s.", report.URL, strings.Join(unverified, "; "))
	default:
		fmt.Fprintf(&b, "Safe. No check found a safety concern for %s.", report.URL)
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, " Note: %s.", strings.Join(notes, "; "))
	}
	return b.String(), nil
}

func (Offline) CompareSites(_ context.Context, report domain.ComparativeReport, _, _ string) (string, error) {
	first, second := score(report.First), score(report.Second)

	var b strings.Builder
	verified := true
	for i, r := range []domain.SiteReport{report.First, report.Second} {
		concerns, unverified, _ := assess(r)
		switch {
		case len(concerns) > 0:
			fmt.Fprintf(&b, "Website %d (%s): %s. ", i+1, r.URL, strings.Join(concerns, "; "))
		case len(unverified) > 0:
			verified = false
			fmt.Fprintf(&b, "Website %d (%s) could not be fully verified: %s. ", i+1, r.URL, strings.Join(unverified, "; "))
		default:
			fmt.Fprintf(&b, "Website %d (%s) shows no safety concerns. ", i+1, r.URL)
		}
	}

	switch {
	case first > second:
		fmt.Fprintf(&b, "Website 1 (%s) is safer.", report.First.URL)
	case second > first:
		fmt.Fprintf(&b, "Website 2 (%s) is safer.", report.Second.URL)
	case !verified:
		b.WriteString("The available checks do not show either website to be safer.")
	default:
		b.WriteString("Both websites are equally safe based on the available checks.")
	}
	return b.String(), nil
}

// assess splits a report into findings that make a site unsafe, safety
// checks that could not run, and informational gaps.
func assess(report domain.SiteReport) (concerns, unverified, notes []string) {
	if https, ok := report.Transport.Value(); ok && !https {
		concerns = append(concerns, "it does not use HTTPS")
	} else if detail, failed := report.Transport.Err(); failed {
		unverified = append(unverified, "the transport could not be checked ("+detail.Message+")")
	}

	if detail, failed := report.Certificate.Err(); failed {
		if detail.Kind == domain.KindCertificateInvalid {
			concerns = append(concerns, "its certificate is invalid ("+detail.Message+")")
		} else {
			unverified = append(unverified, "the certificate could not be checked ("+detail.Message+")")
		}
	}

	if verdict, ok := report.Reputation.Value(); ok && verdict.Flagged {
		types := make([]string, 0, len(verdict.Matches))
		for _, m := range verdict.Matches {
			types = append(types, m.ThreatType)
		}
		concerns = append(concerns, "it is flagged for "+strings.Join(types, ", "))
	} else if detail, failed := report.Reputation.Err(); failed {
		unverified = append(unverified, "the reputation check could not be performed ("+detail.Message+")")
	}

	if detail, failed := report.Origin.Err(); failed {
		notes = append(notes, "the origin could not be located ("+detail.Message+")")
	}

	return concerns, unverified, notes
}

func score(report domain.SiteReport) int {
	s := 0
	if https, ok := report.Transport.Value(); ok && https {
		s++
	}
	if report.Certificate.IsSuccess() {
		s++
	}
	if verdict, ok := report.Reputation.Value(); ok && !verdict.Flagged {
		s += 2
	}
	return s
}
