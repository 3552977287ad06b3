package table

import (
	"strings"
)

// FootnotePrefix opens the footnote documenting which tests produced the
// p-value column.
const FootnotePrefix = "Statistical tests performed: "

// DefaultPValueLabel is the header label applied to a fresh p-value column.
const DefaultPValueLabel = "**p-value**"

// RefreshHeader regenerates the p-value column's header after augmentation,
// returning a new table. It registers the given formatter for the column,
// fills in the display label unless the caller customized it in a prior
// step, and replaces the column footnote with the distinct test labels
// actually used, in first-seen metadata order, joined by "; ".
func RefreshHeader(t *Table, formatter string) *Table {
	out := t.Clone()

	h := out.EnsureHeader(ColumnPValue)
	h.Formatter = formatter
	if !h.Customized {
		h.Label = DefaultPValueLabel
	}

	if note := testFootnote(out.Meta); note != "" {
		h.Footnotes = []string{note}
	}

	return out
}

// testFootnote lists the distinct test labels in first-seen order
func testFootnote(meta []VariableMeta) string {
	seen := make(map[string]bool)
	var labels []string
	for _, m := range meta {
		if m.TestLabel == "" || seen[m.TestLabel] {
			continue
		}
		seen[m.TestLabel] = true
		labels = append(labels, m.TestLabel)
	}
	if len(labels) == 0 {
		return ""
	}
	return FootnotePrefix + strings.Join(labels, "; ")
}
