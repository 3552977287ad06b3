package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"tabreport/domain/frame"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestReadFrameCSV(t *testing.T) {
	path := writeTempCSV(t, "arm,age,resp\na,10,yes\nb,20,no\na,NA,yes\nb,40,\n")

	f, err := NewDataReader(path).ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Len() != 4 {
		t.Fatalf("expected 4 rows, got %d", f.Len())
	}

	age, ok := f.Column("age")
	if !ok || age.Kind != frame.Numeric {
		t.Fatalf("age should be numeric, got %+v", age)
	}
	if !age.IsMissing(2) {
		t.Fatal("NA cell should be missing")
	}
	if age.Floats[3] != 40 {
		t.Fatalf("expected 40, got %v", age.Floats[3])
	}

	resp, ok := f.Column("resp")
	if !ok || resp.Kind != frame.Categorical {
		t.Fatalf("resp should be categorical, got %+v", resp)
	}
	if !resp.IsMissing(3) {
		t.Fatal("empty cell should be missing")
	}
}

func TestReadFrameXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	wb := excelize.NewFile()
	rows := [][]interface{}{
		{"arm", "score"},
		{"a", 1.5},
		{"b", 2.5},
		{"a", "NA"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := wb.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := wb.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	wb.Close()

	f, err := NewDataReader(path).ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	score, ok := f.Column("score")
	if !ok || score.Kind != frame.Numeric {
		t.Fatalf("score should be numeric, got %+v", score)
	}
	if score.Floats[0] != 1.5 || !score.IsMissing(2) {
		t.Fatalf("unexpected score column: %+v", score.Floats)
	}
}

func TestReadFrameMissingFile(t *testing.T) {
	if _, err := NewDataReader("/no/such/file.csv").ReadFrame(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestReadFrameRejectsHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "arm,age\n")
	if _, err := NewDataReader(path).ReadFrame(); err == nil {
		t.Fatal("expected error for header-only file")
	}
}
