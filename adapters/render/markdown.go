package render

import (
	"fmt"
	"strings"

	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// Markdown renders a table as a pipe table with footnotes listed below it
func Markdown(t *table.Table) (string, error) {
	if t == nil {
		return "", errors.InvalidArgument("table is required")
	}
	cols := visibleColumns(t)
	if len(cols) == 0 {
		return "", errors.InvalidArgument("table has no visible columns")
	}

	var b strings.Builder

	b.WriteString("|")
	for _, h := range cols {
		label := h.Label
		if label == "" {
			label = h.Column
		}
		fmt.Fprintf(&b, " %s |", label)
	}
	b.WriteString("\n|")
	for range cols {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range t.Body {
		b.WriteString("|")
		for _, h := range cols {
			cell, err := cellValue(row, h)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " %s |", cell)
		}
		b.WriteString("\n")
	}

	for i, note := range footnotes(cols) {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, note)
	}
	return b.String(), nil
}
