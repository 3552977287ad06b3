package table

import (
	"math"
)

// MergePValues folds computed p-values and test labels into a table's
// variable metadata and row structure, returning a new table.
//
// The merge is a left join keyed on variable name: every existing metadata
// and body row is preserved in order and count, variables absent from the
// maps are left untouched, and variables present are overwritten rather than
// appended, so merging twice with the same inputs is a no-op. A NaN p-value
// records the test identity but leaves the p-value absent. Only label rows
// in the body receive a p-value cell; level and missing rows never do.
func MergePValues(t *Table, testIDs map[string]string, pvalues map[string]float64, labels map[string]string) *Table {
	out := t.Clone()

	for i := range out.Meta {
		name := out.Meta[i].Variable
		id, ok := testIDs[name]
		if !ok {
			continue
		}
		out.Meta[i].TestID = id
		out.Meta[i].TestLabel = labels[name]
		if p, ok := pvalues[name]; ok && !math.IsNaN(p) {
			v := p
			out.Meta[i].PValue = &v
		} else {
			out.Meta[i].PValue = nil
		}
	}

	for i := range out.Body {
		if out.Body[i].Kind != RowLabel {
			continue
		}
		name := out.Body[i].Variable
		if _, ok := testIDs[name]; !ok {
			continue
		}
		if p, ok := pvalues[name]; ok && !math.IsNaN(p) {
			v := p
			out.Body[i].PValue = &v
		} else {
			out.Body[i].PValue = nil
		}
	}

	return out
}
