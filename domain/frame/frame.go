// Package frame provides the small column-oriented data frame the reporting
// layer operates on. Columns are either numeric (NaN marks a missing value)
// or categorical ("" marks a missing value). All rows fit in memory.
package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Kind classifies the storage of a column
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// Column is a single named vector of observations
type Column struct {
	Name   string
	Kind   Kind
	Floats []float64 // populated when Kind == Numeric
	Labels []string  // populated when Kind == Categorical
}

// NumericColumn builds a numeric column
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: Numeric, Floats: values}
}

// CategoricalColumn builds a categorical column
func CategoricalColumn(name string, values []string) Column {
	return Column{Name: name, Kind: Categorical, Labels: values}
}

// Len returns the number of observations in the column
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Labels)
}

// IsMissing reports whether observation i is missing
func (c *Column) IsMissing(i int) bool {
	if c.Kind == Numeric {
		return math.IsNaN(c.Floats[i])
	}
	return c.Labels[i] == ""
}

// LevelAt returns the categorical level of observation i. Numeric columns
// format the value so dichotomous 0/1 columns can still feed contingency
// tables.
func (c *Column) LevelAt(i int) string {
	if c.Kind == Categorical {
		return c.Labels[i]
	}
	if math.IsNaN(c.Floats[i]) {
		return ""
	}
	return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
}

// Levels returns the distinct non-missing levels in first-seen order
func (c *Column) Levels() []string {
	seen := make(map[string]bool)
	var levels []string
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		lvl := c.LevelAt(i)
		if !seen[lvl] {
			seen[lvl] = true
			levels = append(levels, lvl)
		}
	}
	return levels
}

// MissingCount returns the number of missing observations
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// NonMissing returns the non-missing numeric values of a numeric column
func (c *Column) NonMissing() []float64 {
	out := make([]float64, 0, len(c.Floats))
	for _, v := range c.Floats {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Frame is an ordered collection of equal-length columns
type Frame struct {
	cols  []Column
	index map[string]int
}

// New builds a frame, validating that columns have unique names and equal
// lengths
func New(cols ...Column) (*Frame, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("frame requires at least one column")
	}
	n := cols[0].Len()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if c.Len() != n {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), n)
		}
		index[c.Name] = i
	}
	return &Frame{cols: cols, index: index}, nil
}

// Len returns the row count
func (f *Frame) Len() int {
	return f.cols[0].Len()
}

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return &f.cols[i], true
}

// HasColumn reports whether the frame contains a column
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Group is one comparison group of a numeric variable
type Group struct {
	Level  string
	Values []float64
}

// SplitNumeric splits the values of a numeric variable by the levels of a
// grouping column, dropping rows where either observation is missing. Group
// order follows the grouping column's first-seen level order.
func (f *Frame) SplitNumeric(variable, by string) ([]Group, error) {
	v, ok := f.Column(variable)
	if !ok {
		return nil, fmt.Errorf("column %q not found", variable)
	}
	if v.Kind != Numeric {
		return nil, fmt.Errorf("column %q is not numeric", variable)
	}
	g, ok := f.Column(by)
	if !ok {
		return nil, fmt.Errorf("column %q not found", by)
	}

	order := g.Levels()
	values := make(map[string][]float64, len(order))
	for i := 0; i < f.Len(); i++ {
		if v.IsMissing(i) || g.IsMissing(i) {
			continue
		}
		lvl := g.LevelAt(i)
		values[lvl] = append(values[lvl], v.Floats[i])
	}

	groups := make([]Group, 0, len(order))
	for _, lvl := range order {
		if vs := values[lvl]; len(vs) > 0 {
			groups = append(groups, Group{Level: lvl, Values: vs})
		}
	}
	return groups, nil
}

// Contingency is an observed cross-tabulation of two categorical variables
type Contingency struct {
	RowLevels []string
	ColLevels []string
	Counts    [][]float64 // Counts[r][c], indexed by RowLevels x ColLevels
}

// Contingency cross-tabulates a variable against a grouping column, dropping
// rows where either observation is missing
func (f *Frame) Contingency(variable, by string) (*Contingency, error) {
	v, ok := f.Column(variable)
	if !ok {
		return nil, fmt.Errorf("column %q not found", variable)
	}
	g, ok := f.Column(by)
	if !ok {
		return nil, fmt.Errorf("column %q not found", by)
	}

	rows := v.Levels()
	cols := g.Levels()
	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)

	counts := make([][]float64, len(rows))
	for r := range counts {
		counts[r] = make([]float64, len(cols))
	}
	for i := 0; i < f.Len(); i++ {
		if v.IsMissing(i) || g.IsMissing(i) {
			continue
		}
		counts[rowIdx[v.LevelAt(i)]][colIdx[g.LevelAt(i)]]++
	}
	return &Contingency{RowLevels: rows, ColLevels: cols, Counts: counts}, nil
}

// Total returns the grand total of the table
func (ct *Contingency) Total() float64 {
	total := 0.0
	for _, row := range ct.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// RowTotals returns the marginal row totals
func (ct *Contingency) RowTotals() []float64 {
	totals := make([]float64, len(ct.Counts))
	for r, row := range ct.Counts {
		for _, c := range row {
			totals[r] += c
		}
	}
	return totals
}

// ColTotals returns the marginal column totals
func (ct *Contingency) ColTotals() []float64 {
	totals := make([]float64, len(ct.ColLevels))
	for _, row := range ct.Counts {
		for j, c := range row {
			totals[j] += c
		}
	}
	return totals
}

// Expected returns the cell counts expected under independence
func (ct *Contingency) Expected() [][]float64 {
	total := ct.Total()
	rowTotals := ct.RowTotals()
	colTotals := ct.ColTotals()
	expected := make([][]float64, len(ct.Counts))
	for r := range expected {
		expected[r] = make([]float64, len(ct.ColLevels))
		for j := range expected[r] {
			if total > 0 {
				expected[r][j] = rowTotals[r] * colTotals[j] / total
			}
		}
	}
	return expected
}

// MinExpected returns the smallest expected cell count, or NaN for an empty
// table
func (ct *Contingency) MinExpected() float64 {
	expected := ct.Expected()
	min := math.NaN()
	for _, row := range expected {
		for _, e := range row {
			if math.IsNaN(min) || e < min {
				min = e
			}
		}
	}
	return min
}

func indexOf(levels []string) map[string]int {
	idx := make(map[string]int, len(levels))
	for i, lvl := range levels {
		idx[lvl] = i
	}
	return idx
}
