// Package summarize builds a summary table from a data frame: one block of
// rows per variable, one statistic column per grouping level, plus the
// metadata later consumed by p-value augmentation.
package summarize

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"tabreport/domain/core"
	"tabreport/domain/frame"
	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// CharacteristicLabel is the default header of the label column
const CharacteristicLabel = "**Characteristic**"

// MissingRowLabel is the display label of the missing-count row
const MissingRowLabel = "Unknown"

type options struct {
	by      string
	include []string
	labels  map[string]string
	types   map[string]table.SummaryType
	source  string
}

// Option configures a Summarize call
type Option func(*options)

// By names the grouping column. The table gets one statistic column per
// observed level; without it the table has a single overall column.
func By(column string) Option {
	return func(o *options) { o.by = column }
}

// Include restricts the table to the named variables, in the given order
func Include(variables ...string) Option {
	return func(o *options) { o.include = append(o.include, variables...) }
}

// Labels overrides the display label per variable
func Labels(labels map[string]string) Option {
	return func(o *options) { o.labels = labels }
}

// Types overrides the inferred summary type per variable
func Types(types map[string]table.SummaryType) Option {
	return func(o *options) { o.types = types }
}

// Source records where the data came from for table provenance
func Source(name string) Option {
	return func(o *options) { o.source = name }
}

// Summarize builds a summary table from a frame. Continuous variables get a
// "median (q1, q3)" row, categorical variables one "n (%)" row per level,
// and dichotomous variables a single "n (%)" row for their last level.
// Variables with missing observations get an extra "Unknown" row of counts.
func Summarize(f *frame.Frame, opts ...Option) (*table.Table, error) {
	if f == nil {
		return nil, errors.InvalidArgument("data frame is required")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	var byCol *frame.Column
	if o.by != "" {
		col, ok := f.Column(o.by)
		if !ok {
			return nil, errors.InvalidArgumentf("grouping variable %q not present in the data", o.by)
		}
		byCol = col
	}

	variables := o.include
	if len(variables) == 0 {
		for _, name := range f.Names() {
			if name != o.by {
				variables = append(variables, name)
			}
		}
	}

	cols, byN, err := statColumns(f, byCol)
	if err != nil {
		return nil, err
	}

	tbl := &table.Table{
		Call: table.CallInfo{
			ID:     core.NewTableID(),
			Source: o.source,
			By:     o.by,
			ByN:    byN,
		},
	}
	tbl.Headers = append(tbl.Headers, table.HeaderColumn{
		Column: table.ColumnLabel,
		Label:  CharacteristicLabel,
	})
	for _, sc := range cols {
		tbl.Headers = append(tbl.Headers, table.HeaderColumn{
			Column: sc.id,
			Label:  sc.headerLabel(),
		})
	}

	for _, name := range variables {
		if name == o.by {
			continue
		}
		col, ok := f.Column(name)
		if !ok {
			return nil, errors.InvalidArgumentf("variable %q not present in the data", name)
		}
		typ := inferType(col)
		if override, ok := o.types[name]; ok {
			typ = override
		}

		rows, err := summarizeVariable(name, o.labels[name], col, typ, cols)
		if err != nil {
			return nil, err
		}
		tbl.Body = append(tbl.Body, rows...)
		tbl.Meta = append(tbl.Meta, table.VariableMeta{
			Variable: name,
			Type:     typ,
			By:       o.by,
		})
	}
	return tbl, nil
}

// statColumn is one statistic column of the table, scoped to the row
// indexes of a single grouping level (or all rows for the overall column).
type statColumn struct {
	id    string
	level string
	rows  []int
}

func (sc *statColumn) headerLabel() string {
	if sc.level == "" {
		return fmt.Sprintf("**N = %d**", len(sc.rows))
	}
	return fmt.Sprintf("**%s**, N = %d", sc.level, len(sc.rows))
}

func statColumns(f *frame.Frame, byCol *frame.Column) ([]statColumn, map[string]int, error) {
	if byCol == nil {
		all := make([]int, f.Len())
		for i := range all {
			all[i] = i
		}
		return []statColumn{{id: "stat_0", rows: all}}, nil, nil
	}

	levels := byCol.Levels()
	if len(levels) < 2 {
		return nil, nil, errors.InvalidArgumentf("grouping variable %q has fewer than two observed levels", byCol.Name)
	}
	idx := make(map[string]int, len(levels))
	cols := make([]statColumn, len(levels))
	for i, lvl := range levels {
		cols[i] = statColumn{id: fmt.Sprintf("stat_%d", i+1), level: lvl}
		idx[lvl] = i
	}
	for i := 0; i < f.Len(); i++ {
		if byCol.IsMissing(i) {
			continue
		}
		j := idx[byCol.LevelAt(i)]
		cols[j].rows = append(cols[j].rows, i)
	}

	byN := make(map[string]int, len(levels))
	for _, sc := range cols {
		byN[sc.level] = len(sc.rows)
	}
	return cols, byN, nil
}

// inferType treats numeric columns with more than two distinct values as
// continuous, numeric 0/1-style columns as dichotomous, and everything else
// as categorical.
func inferType(col *frame.Column) table.SummaryType {
	if col.Kind == frame.Numeric {
		if len(col.Levels()) <= 2 {
			return table.TypeDichotomous
		}
		return table.TypeContinuous
	}
	return table.TypeCategorical
}

func summarizeVariable(name, label string, col *frame.Column, typ table.SummaryType, cols []statColumn) ([]table.BodyRow, error) {
	if label == "" {
		label = name
	}
	var rows []table.BodyRow

	switch typ {
	case table.TypeContinuous:
		if col.Kind != frame.Numeric {
			return nil, errors.InvalidArgumentf("variable %q is not numeric and cannot be summarized as continuous", name)
		}
		row := table.BodyRow{Variable: name, Kind: table.RowLabel, Label: label, Cells: map[string]string{}}
		for _, sc := range cols {
			row.Cells[sc.id] = medianIQR(col, sc.rows)
		}
		rows = append(rows, row)

	case table.TypeDichotomous:
		levels := col.Levels()
		positive := ""
		if len(levels) > 0 {
			positive = levels[len(levels)-1]
		}
		row := table.BodyRow{Variable: name, Kind: table.RowLabel, Label: label, Cells: map[string]string{}}
		for _, sc := range cols {
			row.Cells[sc.id] = countPercent(col, sc.rows, positive)
		}
		rows = append(rows, row)

	case table.TypeCategorical:
		rows = append(rows, table.BodyRow{Variable: name, Kind: table.RowLabel, Label: label, Cells: map[string]string{}})
		for _, lvl := range col.Levels() {
			row := table.BodyRow{Variable: name, Kind: table.RowLevel, Label: lvl, Cells: map[string]string{}}
			for _, sc := range cols {
				row.Cells[sc.id] = countPercent(col, sc.rows, lvl)
			}
			rows = append(rows, row)
		}

	default:
		return nil, errors.InvalidArgumentf("variable %q has unknown summary type %q", name, typ)
	}

	if col.MissingCount() > 0 {
		row := table.BodyRow{Variable: name, Kind: table.RowMissing, Label: MissingRowLabel, Cells: map[string]string{}}
		for _, sc := range cols {
			missing := 0
			for _, i := range sc.rows {
				if col.IsMissing(i) {
					missing++
				}
			}
			row.Cells[sc.id] = fmt.Sprintf("%d", missing)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func medianIQR(col *frame.Column, rows []int) string {
	var values []float64
	for _, i := range rows {
		if !col.IsMissing(i) {
			values = append(values, col.Floats[i])
		}
	}
	if len(values) == 0 {
		return ""
	}
	median, err := stats.Median(values)
	if err != nil {
		return ""
	}
	q, err := stats.Quartile(values)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s (%s, %s)", formatStat(median), formatStat(q.Q1), formatStat(q.Q3))
}

func countPercent(col *frame.Column, rows []int, level string) string {
	n := 0
	total := 0
	for _, i := range rows {
		if col.IsMissing(i) {
			continue
		}
		total++
		if col.LevelAt(i) == level {
			n++
		}
	}
	if total == 0 {
		return "0 (0%)"
	}
	return fmt.Sprintf("%d (%.0f%%)", n, 100*float64(n)/float64(total))
}

func formatStat(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
