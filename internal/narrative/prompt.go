package narrative

import (
	"encoding/json"
	"fmt"
	"strings"

	"site-checker/internal/domain"
)

const (
	siteSystemPrompt    = "You are a security expert providing detailed analysis of website safety."
	compareSystemPrompt = "You are a security expert providing detailed comparative analysis."
)

func sitePrompt(report domain.SiteReport) string {
	var b strings.Builder
	b.WriteString("Analyze the safety and security of the following website based on the provided details:\n\n")
	fmt.Fprintf(&b, "URL: %s\n", report.URL)
	writeFindings(&b, report)
	b.WriteString(`
Based on this data, provide a detailed, firm analysis of whether the website is safe or unsafe. Your response must start with either "Safe" or "Unsafe", followed by a detailed explanation in paragraph form. If the Google Safe Browsing result is empty, assume it is not flagged in the database, but base your determination of safety on the other aspects provided (HTTPS check, SSL certificate, and geolocation). A check marked as a failure could not be performed; say so instead of guessing its result.

Do not use phrases like "further analysis is required" or "maybe." If any aspect of the data suggests the website is unsafe, state "Unsafe" and provide a clear explanation. If all aspects indicate the website is safe, state "Safe" and explain why. Avoid hallucinating data or providing assumptions not explicitly based on the provided input.

Your analysis must be clear, professional, and concise but elaborate enough to provide a 250-word assessment.
`)
	return b.String()
}

func comparePrompt(report domain.ComparativeReport, firstNarrative, secondNarrative string) string {
	var b strings.Builder
	b.WriteString("Compare the safety and security of the following two websites based on their analyses and results:\n")

	for i, side := range []struct {
		report    domain.SiteReport
		narrative string
	}{
		{report.First, firstNarrative},
		{report.Second, secondNarrative},
	} {
		fmt.Fprintf(&b, "\nWebsite %d: %s\n", i+1, side.report.URL)
		if side.narrative != "" {
			fmt.Fprintf(&b, "Analysis: %s\n", side.narrative)
		}
		writeFindings(&b, side.report)
	}

	b.WriteString("\nHighlight patterns, similarities, and differences in their safety features. Conclude with a clear statement on which website is safer and why, or if they are equally safe/unsafe.\n")
	return b.String()
}

func writeFindings(b *strings.Builder, report domain.SiteReport) {
	fmt.Fprintf(b, "HTTPS Check: %s\n", compact(report.Transport))
	fmt.Fprintf(b, "SSL Certificate Validation: %s\n", compact(report.Certificate))
	fmt.Fprintf(b, "Geolocation: %s\n", compact(report.Origin))
	fmt.Fprintf(b, "Google Safe Browsing Result: %s\n", compact(report.Reputation))
	if report.DomainAge != nil {
		fmt.Fprintf(b, "Domain Age: %s\n", compact(*report.DomainAge))
	}
}

func compact(v json.Marshaler) string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "unavailable"
	}
	return string(data)
}
