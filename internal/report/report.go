package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"site-checker/internal/domain"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatPretty   Format = "pretty"
	FormatText     Format = "text"
)

var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown, FormatPretty}

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// WriteAssessment renders a single-site assessment to w.
func WriteAssessment(w io.Writer, format Format, a *domain.Assessment) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, a)
	case FormatYAML:
		return writeYAML(w, a)
	case FormatMarkdown:
		md, err := AssessmentMarkdown(a)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case FormatPretty:
		md, err := AssessmentMarkdown(a)
		if err != nil {
			return err
		}
		return writePretty(w, md)
	case FormatText:
		return writeAssessmentText(w, a)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteComparison renders a comparison to w.
func WriteComparison(w io.Writer, format Format, c *domain.Comparison) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, c)
	case FormatYAML:
		return writeYAML(w, c)
	case FormatMarkdown:
		md, err := ComparisonMarkdown(c)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	case FormatPretty:
		md, err := ComparisonMarkdown(c)
		if err != nil {
			return err
		}
		return writePretty(w, md)
	case FormatText:
		return writeComparisonText(w, c)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
