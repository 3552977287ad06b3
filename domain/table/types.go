// Package table defines the in-memory representation of a summary table
// between summarization and rendering: the renderable row structure, the
// per-variable metadata, and the header formatting rules. Tables are never
// mutated in place; every transformation clones first and returns the new
// version.
package table

import (
	"tabreport/domain/core"
)

// RowKind classifies a renderable row
type RowKind string

const (
	RowLabel   RowKind = "label"
	RowLevel   RowKind = "level"
	RowMissing RowKind = "missing"
)

// SummaryType classifies a variable for statistic and test selection
type SummaryType string

const (
	TypeContinuous  SummaryType = "continuous"
	TypeCategorical SummaryType = "categorical"
	TypeDichotomous SummaryType = "dichotomous"
)

// Column identifiers shared between body rows and headers
const (
	ColumnLabel  = "label"
	ColumnPValue = "p.value"
)

// BodyRow describes one renderable table row
type BodyRow struct {
	Variable string
	Kind     RowKind
	Label    string            // display text: variable label, level name, or "Unknown"
	Cells    map[string]string // stat column id -> rendered cell
	PValue   *float64          // set on label rows only
}

// VariableMeta is the metadata record for one input variable. TestID,
// PValue and TestLabel are populated by p-value augmentation.
type VariableMeta struct {
	Variable  string
	Type      SummaryType
	By        string
	TestID    string
	PValue    *float64
	TestLabel string
}

// HeaderColumn maps a column to its display label and formatting rules
type HeaderColumn struct {
	Column    string
	Label     string
	Hidden    bool
	Formatter string // name of a registered formatter, "" for plain text
	Footnotes []string
	// Customized marks a label explicitly set by the caller; automatic
	// header refreshes leave customized labels alone.
	Customized bool
}

// CallInfo records the parameters the table was originally built with
type CallInfo struct {
	ID     core.TableID
	Source string
	By     string
	ByN    map[string]int // observations per grouping level
}

// Table is the central structure passed between summarization, augmentation
// and rendering steps.
type Table struct {
	Call    CallInfo
	Body    []BodyRow
	Meta    []VariableMeta
	Headers []HeaderColumn
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	out := &Table{
		Call: CallInfo{
			ID:     t.Call.ID,
			Source: t.Call.Source,
			By:     t.Call.By,
		},
	}
	if t.Call.ByN != nil {
		out.Call.ByN = make(map[string]int, len(t.Call.ByN))
		for k, v := range t.Call.ByN {
			out.Call.ByN[k] = v
		}
	}
	out.Body = make([]BodyRow, len(t.Body))
	for i, row := range t.Body {
		out.Body[i] = BodyRow{
			Variable: row.Variable,
			Kind:     row.Kind,
			Label:    row.Label,
			PValue:   clonePtr(row.PValue),
		}
		if row.Cells != nil {
			out.Body[i].Cells = make(map[string]string, len(row.Cells))
			for k, v := range row.Cells {
				out.Body[i].Cells[k] = v
			}
		}
	}
	out.Meta = make([]VariableMeta, len(t.Meta))
	for i, m := range t.Meta {
		out.Meta[i] = VariableMeta{
			Variable:  m.Variable,
			Type:      m.Type,
			By:        m.By,
			TestID:    m.TestID,
			PValue:    clonePtr(m.PValue),
			TestLabel: m.TestLabel,
		}
	}
	out.Headers = make([]HeaderColumn, len(t.Headers))
	for i, h := range t.Headers {
		out.Headers[i] = HeaderColumn{
			Column:     h.Column,
			Label:      h.Label,
			Hidden:     h.Hidden,
			Formatter:  h.Formatter,
			Customized: h.Customized,
		}
		if h.Footnotes != nil {
			out.Headers[i].Footnotes = append([]string(nil), h.Footnotes...)
		}
	}
	return out
}

// MetaFor returns the metadata record for a variable
func (t *Table) MetaFor(variable string) (*VariableMeta, bool) {
	for i := range t.Meta {
		if t.Meta[i].Variable == variable {
			return &t.Meta[i], true
		}
	}
	return nil, false
}

// Variables returns the variable names in metadata order
func (t *Table) Variables() []string {
	names := make([]string, len(t.Meta))
	for i, m := range t.Meta {
		names[i] = m.Variable
	}
	return names
}

// HeaderFor returns the header record for a column
func (t *Table) HeaderFor(column string) (*HeaderColumn, bool) {
	for i := range t.Headers {
		if t.Headers[i].Column == column {
			return &t.Headers[i], true
		}
	}
	return nil, false
}

// EnsureHeader returns the header record for a column, appending an empty
// one when missing
func (t *Table) EnsureHeader(column string) *HeaderColumn {
	if h, ok := t.HeaderFor(column); ok {
		return h
	}
	t.Headers = append(t.Headers, HeaderColumn{Column: column})
	return &t.Headers[len(t.Headers)-1]
}

// DropVariable removes a variable from the body and metadata. Used to strip
// nuisance covariates such as a correlation-group column from the rendered
// output.
func (t *Table) DropVariable(variable string) {
	body := t.Body[:0]
	for _, row := range t.Body {
		if row.Variable != variable {
			body = append(body, row)
		}
	}
	t.Body = body

	meta := t.Meta[:0]
	for _, m := range t.Meta {
		if m.Variable != variable {
			meta = append(meta, m)
		}
	}
	t.Meta = meta
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
