package table

import (
	"testing"
)

func TestRefreshHeaderBuildsFootnote(t *testing.T) {
	tbl := twoVariableTable()
	tbl.Meta[0].TestLabel = "Wilcoxon rank sum test"
	tbl.Meta[1].TestLabel = "Fisher's exact test"

	out := RefreshHeader(tbl, "pvalue_3sig")

	h, ok := out.HeaderFor(ColumnPValue)
	if !ok {
		t.Fatal("p-value header should exist after refresh")
	}
	if h.Label != DefaultPValueLabel {
		t.Fatalf("expected default label, got %q", h.Label)
	}
	if h.Formatter != "pvalue_3sig" {
		t.Fatalf("expected formatter name recorded, got %q", h.Formatter)
	}
	want := FootnotePrefix + "Wilcoxon rank sum test; Fisher's exact test"
	if len(h.Footnotes) != 1 || h.Footnotes[0] != want {
		t.Fatalf("unexpected footnotes: %v", h.Footnotes)
	}
}

func TestRefreshHeaderDeduplicatesLabels(t *testing.T) {
	tbl := twoVariableTable()
	tbl.Meta[0].TestLabel = "Fisher's exact test"
	tbl.Meta[1].TestLabel = "Fisher's exact test"

	out := RefreshHeader(tbl, "pvalue_3sig")
	h, _ := out.HeaderFor(ColumnPValue)
	want := FootnotePrefix + "Fisher's exact test"
	if len(h.Footnotes) != 1 || h.Footnotes[0] != want {
		t.Fatalf("repeated labels should appear once: %v", h.Footnotes)
	}
}

func TestRefreshHeaderKeepsCustomizedLabel(t *testing.T) {
	tbl := twoVariableTable()
	tbl.Headers = append(tbl.Headers, HeaderColumn{
		Column:     ColumnPValue,
		Label:      "**q**",
		Customized: true,
	})
	tbl.Meta[0].TestLabel = "Wilcoxon rank sum test"

	out := RefreshHeader(tbl, "pvalue_2sig")
	h, _ := out.HeaderFor(ColumnPValue)
	if h.Label != "**q**" {
		t.Fatalf("customized label must survive refresh, got %q", h.Label)
	}
	if h.Formatter != "pvalue_2sig" {
		t.Fatalf("formatter should still be updated, got %q", h.Formatter)
	}
}

func TestDropVariableRemovesBodyAndMeta(t *testing.T) {
	tbl := twoVariableTable()
	tbl.DropVariable("grade")

	if len(tbl.Meta) != 1 || tbl.Meta[0].Variable != "age" {
		t.Fatalf("unexpected metadata after drop: %+v", tbl.Meta)
	}
	for _, row := range tbl.Body {
		if row.Variable == "grade" {
			t.Fatal("grade rows should be removed")
		}
	}
}
