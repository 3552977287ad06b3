// Package render turns summary tables into display formats. Renderers apply
// header labels, column formatters, and footnotes; they never change the
// table itself.
package render

import (
	"strings"

	"tabreport/domain/table"
	"tabreport/internal/errors"
	"tabreport/internal/format"
)

// levelIndent prefixes level and missing rows so they read as children of
// their variable row
const levelIndent = "    "

// visibleColumns returns the header records to render, in header order
func visibleColumns(t *table.Table) []table.HeaderColumn {
	var cols []table.HeaderColumn
	for _, h := range t.Headers {
		if !h.Hidden {
			cols = append(cols, h)
		}
	}
	return cols
}

// cellValue renders one body cell under a column's formatting rules
func cellValue(row table.BodyRow, h table.HeaderColumn) (string, error) {
	if h.Column == table.ColumnLabel {
		if row.Kind == table.RowLabel {
			return row.Label, nil
		}
		return levelIndent + row.Label, nil
	}
	if h.Column == table.ColumnPValue {
		if row.PValue == nil {
			return "", nil
		}
		name := h.Formatter
		if name == "" {
			return "", errors.InvalidArgumentf("column %q has no formatter", h.Column)
		}
		f, ok := format.ByName(name)
		if !ok {
			return "", errors.InvalidArgumentf("unknown p-value formatter %q", name)
		}
		return f(*row.PValue), nil
	}
	return row.Cells[h.Column], nil
}

// footnotes collects the distinct footnote lines of all visible columns, in
// column order
func footnotes(cols []table.HeaderColumn) []string {
	seen := make(map[string]bool)
	var notes []string
	for _, h := range cols {
		for _, note := range h.Footnotes {
			if note != "" && !seen[note] {
				seen[note] = true
				notes = append(notes, note)
			}
		}
	}
	return notes
}

// strongToHTML converts the "**text**" emphasis convention of header labels
// into <strong> tags
func strongToHTML(s string) string {
	for strings.Contains(s, "**") {
		open := strings.Index(s, "**")
		rest := s[open+2:]
		close := strings.Index(rest, "**")
		if close < 0 {
			break
		}
		s = s[:open] + "<strong>" + rest[:close] + "</strong>" + rest[close+2:]
	}
	return s
}
