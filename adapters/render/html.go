package render

import (
	"fmt"
	"html"
	"strings"

	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// HTML renders a table as a standalone <table> element with footnotes in a
// <tfoot> block
func HTML(t *table.Table) (string, error) {
	if t == nil {
		return "", errors.InvalidArgument("table is required")
	}
	cols := visibleColumns(t)
	if len(cols) == 0 {
		return "", errors.InvalidArgument("table has no visible columns")
	}

	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, h := range cols {
		label := h.Label
		if label == "" {
			label = h.Column
		}
		fmt.Fprintf(&b, "<th>%s</th>", strongToHTML(html.EscapeString(label)))
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")

	for _, row := range t.Body {
		b.WriteString("<tr>")
		for _, h := range cols {
			cell, err := cellValue(row, h)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "<td>%s</td>", strongToHTML(html.EscapeString(cell)))
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n")

	if notes := footnotes(cols); len(notes) > 0 {
		b.WriteString("<tfoot>\n")
		for i, note := range notes {
			fmt.Fprintf(&b, "<tr><td colspan=\"%d\"><sup>%d</sup> %s</td></tr>\n",
				len(cols), i+1, html.EscapeString(note))
		}
		b.WriteString("</tfoot>\n")
	}
	b.WriteString("</table>\n")
	return b.String(), nil
}
