package report

import (
	"bytes"
	"fmt"

	"github.com/nao1215/markdown"
	"github.com/samber/lo"
	"site-checker/internal/domain"
)

// AssessmentMarkdown renders a single-site assessment as GitHub flavoured
// markdown.
func AssessmentMarkdown(a *domain.Assessment) (string, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Site safety report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", "`" + a.URL + "`"},
			{"Verdict", "**" + string(a.Verdict) + "**"},
			{"Checked", a.CompletedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")

	writeVerdictAlert(md, a.Verdict)
	writeFindings(md, "Checks", a.Report)
	writeNarrative(md, "Analysis", a.Narrative)
	writeWarnings(md, a.Warnings)

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// ComparisonMarkdown renders a comparison as GitHub flavoured markdown.
func ComparisonMarkdown(c *domain.Comparison) (string, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("Site safety comparison")
	md.PlainText("")

	first, second := Summarize(c.Report.First), Summarize(c.Report.Second)
	rows := make([][]string, 0, len(first))
	for i, f := range first {
		other := "-"
		if i < len(second) {
			other = statusCell(second[i])
		}
		rows = append(rows, []string{f.Check, statusCell(f), other})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Check", c.FirstURL, c.SecondURL},
		Rows:   rows,
	})
	md.PlainText("")

	writeNarrative(md, "Comparison", c.Narrative)
	writeFindings(md, "Website 1: "+c.FirstURL, c.Report.First)
	writeNarrative(md, "Website 1 analysis", c.FirstNarrative)
	writeFindings(md, "Website 2: "+c.SecondURL, c.Report.Second)
	writeNarrative(md, "Website 2 analysis", c.SecondNarrative)
	writeWarnings(md, c.Warnings)

	if err := md.Build(); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

func statusCell(f Finding) string {
	return string(f.Status)
}

func writeVerdictAlert(md *markdown.Markdown, verdict domain.Verdict) {
	switch verdict {
	case domain.VerdictUnsafe:
		md.Cautionf("This site was assessed as %s.", verdict)
	case domain.VerdictSafe:
		md.Tip("No check found a reason to distrust this site.")
	default:
		md.Warningf("No verdict could be determined.")
	}
	md.PlainText("")
}

func writeFindings(md *markdown.Markdown, title string, r domain.SiteReport) {
	md.H2(title)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Result", "Detail"},
		Rows: lo.Map(Summarize(r), func(f Finding, _ int) []string {
			return []string{f.Check, string(f.Status), f.Detail}
		}),
	})
	md.PlainText("")
}

func writeNarrative(md *markdown.Markdown, title, text string) {
	if text == "" {
		return
	}
	md.H2(title)
	md.PlainText("")
	md.PlainText(text)
	md.PlainText("")
}

func writeWarnings(md *markdown.Markdown, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	md.H2("Warnings")
	md.PlainText("")
	md.BulletList(warnings...)
	md.PlainText("")
}
