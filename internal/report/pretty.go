package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

func writePretty(w io.Writer, md string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := renderer.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}
