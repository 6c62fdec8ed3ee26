package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleLocation = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// row is one discovered document as printed in text mode.
type row struct {
	title    string
	location string
}

// writeText prints one "title<TAB>location" line per document.
func writeText(w io.Writer, rows []row) error {
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", styleTitle.Render(r.title), styleLocation.Render(r.location)); err != nil {
			return err
		}
	}
	return nil
}

// writeJSON prints v as an indented JSON document.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
