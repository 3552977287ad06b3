// Package excel reads tabular files into data frames. Both .xlsx workbooks
// and .csv files are supported through the same reader.
package excel

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabreport/domain/frame"
	"tabreport/internal"
	"tabreport/internal/errors"
)

// missing cell markers recognized on top of the empty string
var missingMarkers = map[string]bool{
	"NA":   true,
	"N/A":  true,
	"null": true,
}

// DataReader reads an Excel or CSV file into a frame
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a reader for the given file, picking the format from
// the extension
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: "Sheet1"}
}

// WithSheet selects the worksheet to read from an .xlsx file
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// ReadFrame reads the file into a frame. The first row supplies column
// names; a column becomes numeric when every non-missing cell parses as a
// number.
func (r *DataReader) ReadFrame() (*frame.Frame, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.DatasourceError("file", err)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, errors.InvalidArgumentf("unsupported file type %q", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidArgumentf("%s has no data rows", r.filePath)
	}

	f, err := framize(rows[0], rows[1:])
	if err != nil {
		return nil, err
	}
	internal.DefaultLogger.Info("read %d rows, %d columns from %s", f.Len(), len(f.Names()), r.filePath)
	return f, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.DatasourceError("csv", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.DatasourceError("csv", err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.DatasourceError("excel", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.DatasourceError("excel", err)
	}
	return rows, nil
}

// framize turns a header row plus data rows into typed columns
func framize(header []string, data [][]string) (*frame.Frame, error) {
	cols := make([]frame.Column, 0, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.InvalidArgumentf("column %d has no header", j+1)
		}

		raw := make([]string, len(data))
		for i, row := range data {
			if j < len(row) {
				raw[i] = strings.TrimSpace(row[j])
			}
		}
		cols = append(cols, typedColumn(name, raw))
	}

	f, err := frame.New(cols...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tabular data")
	}
	return f, nil
}

// typedColumn infers the storage kind of a raw string column
func typedColumn(name string, raw []string) frame.Column {
	numeric := true
	sawValue := false
	floats := make([]float64, len(raw))
	for i, cell := range raw {
		if isMissingCell(cell) {
			floats[i] = math.NaN()
			continue
		}
		sawValue = true
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			numeric = false
			break
		}
		floats[i] = v
	}
	if numeric && sawValue {
		return frame.NumericColumn(name, floats)
	}

	labels := make([]string, len(raw))
	for i, cell := range raw {
		if !isMissingCell(cell) {
			labels[i] = cell
		}
	}
	return frame.CategoricalColumn(name, labels)
}

func isMissingCell(cell string) bool {
	return cell == "" || missingMarkers[cell]
}
