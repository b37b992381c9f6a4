package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"site-checker/internal/domain"
)

var (
	colorPass  = color.New(color.FgGreen).SprintFunc()
	colorFail  = color.New(color.FgRed).SprintFunc()
	colorInfo  = color.New(color.FgCyan).SprintFunc()
	colorWarn  = color.New(color.FgYellow).SprintFunc()
	colorTitle = color.New(color.Bold).SprintFunc()
)

func colorStatus(s Status) string {
	label := fmt.Sprintf("%-5s", strings.ToUpper(string(s)))
	switch s {
	case StatusPass:
		return colorPass(label)
	case StatusFail:
		return colorFail(label)
	case StatusError:
		return colorWarn(label)
	default:
		return colorInfo(label)
	}
}

func colorVerdict(v domain.Verdict) string {
	switch v {
	case domain.VerdictSafe:
		return colorPass(string(v))
	case domain.VerdictUnsafe:
		return colorFail(string(v))
	default:
		return colorWarn(string(v))
	}
}

func writeAssessmentText(w io.Writer, a *domain.Assessment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", colorTitle("URL:"), a.URL)
	fmt.Fprintf(&b, "%s %s\n\n", colorTitle("Verdict:"), colorVerdict(a.Verdict))
	writeFindingsText(&b, a.Report)
	if a.Narrative != "" {
		fmt.Fprintf(&b, "\n%s\n", a.Narrative)
	}
	writeWarningsText(&b, a.Warnings)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeComparisonText(w io.Writer, c *domain.Comparison) error {
	var b strings.Builder
	for i, side := range []struct {
		url       string
		report    domain.SiteReport
		narrative string
	}{
		{c.FirstURL, c.Report.First, c.FirstNarrative},
		{c.SecondURL, c.Report.Second, c.SecondNarrative},
	} {
		fmt.Fprintf(&b, "%s %s\n", colorTitle(fmt.Sprintf("Website %d:", i+1)), side.url)
		writeFindingsText(&b, side.report)
		if side.narrative != "" {
			fmt.Fprintf(&b, "\n%s\n", side.narrative)
		}
		b.WriteString("\n")
	}
	if c.Narrative != "" {
		fmt.Fprintf(&b, "%s\n%s\n", colorTitle("Comparison:"), c.Narrative)
	}
	writeWarningsText(&b, c.Warnings)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFindingsText(b *strings.Builder, r domain.SiteReport) {
	for _, f := range Summarize(r) {
		fmt.Fprintf(b, "  %s %-11s %s\n", colorStatus(f.Status), f.Check, f.Detail)
	}
}

func writeWarningsText(b *strings.Builder, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(b, "%s %s\n", colorWarn("warning:"), warning)
	}
}
