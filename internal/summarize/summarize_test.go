package summarize

import (
	"math"
	"strings"
	"testing"

	"tabreport/domain/frame"
	"tabreport/domain/table"
)

func trialFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New(
		frame.CategoricalColumn("arm", []string{"a", "a", "a", "b", "b", "b"}),
		frame.NumericColumn("age", []float64{10, 20, 30, 40, 50, 60}),
		frame.CategoricalColumn("resp", []string{"yes", "no", "", "yes", "yes", "no"}),
	)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	return f
}

func TestSummarizeGroupedTable(t *testing.T) {
	tbl, err := Summarize(trialFrame(t), By("arm"), Source("unit"))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if tbl.Call.By != "arm" || tbl.Call.Source != "unit" {
		t.Fatalf("unexpected call info: %+v", tbl.Call)
	}
	if tbl.Call.ByN["a"] != 3 || tbl.Call.ByN["b"] != 3 {
		t.Fatalf("unexpected group sizes: %v", tbl.Call.ByN)
	}
	if tbl.Call.ID.String() == "" {
		t.Fatal("table should get an identifier")
	}

	// label column + one stat column per group
	if len(tbl.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(tbl.Headers))
	}
	if tbl.Headers[0].Label != CharacteristicLabel {
		t.Fatalf("unexpected label header: %q", tbl.Headers[0].Label)
	}
	if tbl.Headers[1].Label != "**a**, N = 3" {
		t.Fatalf("unexpected group header: %q", tbl.Headers[1].Label)
	}

	if len(tbl.Meta) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(tbl.Meta))
	}
	if tbl.Meta[0].Variable != "age" || tbl.Meta[0].Type != table.TypeContinuous {
		t.Fatalf("unexpected age metadata: %+v", tbl.Meta[0])
	}
	if tbl.Meta[1].Variable != "resp" || tbl.Meta[1].Type != table.TypeCategorical {
		t.Fatalf("unexpected resp metadata: %+v", tbl.Meta[1])
	}
}

func TestSummarizeContinuousCells(t *testing.T) {
	tbl, err := Summarize(trialFrame(t), By("arm"))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	age := tbl.Body[0]
	if age.Variable != "age" || age.Kind != table.RowLabel {
		t.Fatalf("unexpected first row: %+v", age)
	}
	cell := age.Cells["stat_1"]
	if !strings.HasPrefix(cell, "20.0 (") {
		t.Fatalf("expected median 20.0 for group a, got %q", cell)
	}
}

func TestSummarizeCategoricalRows(t *testing.T) {
	tbl, err := Summarize(trialFrame(t), By("arm"))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	var rows []table.BodyRow
	for _, row := range tbl.Body {
		if row.Variable == "resp" {
			rows = append(rows, row)
		}
	}
	// label + yes + no + Unknown
	if len(rows) != 4 {
		t.Fatalf("expected 4 resp rows, got %d", len(rows))
	}
	if rows[1].Label != "yes" || rows[1].Cells["stat_2"] != "2 (67%)" {
		t.Fatalf("unexpected yes row: %+v", rows[1])
	}
	if rows[3].Kind != table.RowMissing || rows[3].Label != MissingRowLabel {
		t.Fatalf("expected missing row last, got %+v", rows[3])
	}
	if rows[3].Cells["stat_1"] != "1" || rows[3].Cells["stat_2"] != "0" {
		t.Fatalf("unexpected missing counts: %+v", rows[3].Cells)
	}
}

func TestSummarizeOverallWithoutBy(t *testing.T) {
	tbl, err := Summarize(trialFrame(t))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if tbl.Call.By != "" {
		t.Fatalf("expected no grouping, got %q", tbl.Call.By)
	}
	if len(tbl.Headers) != 2 || tbl.Headers[1].Column != "stat_0" {
		t.Fatalf("expected a single overall column, got %+v", tbl.Headers)
	}
	// arm itself is a variable when not used for grouping
	if _, ok := tbl.MetaFor("arm"); !ok {
		t.Fatal("arm should be summarized when not grouping")
	}
}

func TestSummarizeDichotomousInference(t *testing.T) {
	f, err := frame.New(
		frame.CategoricalColumn("arm", []string{"a", "a", "b", "b"}),
		frame.NumericColumn("flag", []float64{0, 1, 1, 0}),
	)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	tbl, err := Summarize(f, By("arm"))
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	meta, _ := tbl.MetaFor("flag")
	if meta.Type != table.TypeDichotomous {
		t.Fatalf("0/1 numeric should infer dichotomous, got %q", meta.Type)
	}
	// a single row showing the positive level
	var rows int
	for _, row := range tbl.Body {
		if row.Variable == "flag" {
			rows++
		}
	}
	if rows != 1 {
		t.Fatalf("dichotomous variable should render one row, got %d", rows)
	}
}

func TestSummarizeValidation(t *testing.T) {
	if _, err := Summarize(nil); err == nil {
		t.Fatal("expected error for nil frame")
	}
	if _, err := Summarize(trialFrame(t), By("ghost")); err == nil {
		t.Fatal("expected error for unknown grouping column")
	}
	if _, err := Summarize(trialFrame(t), By("arm"), Include("ghost")); err == nil {
		t.Fatal("expected error for unknown included variable")
	}

	single, err := frame.New(
		frame.CategoricalColumn("arm", []string{"a", "a"}),
		frame.NumericColumn("x", []float64{1, math.NaN()}),
	)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	if _, err := Summarize(single, By("arm")); err == nil {
		t.Fatal("expected error for single-level grouping column")
	}
}
