package augment

import (
	"sort"

	"tabreport/adapters/stats/tests"
	"tabreport/domain/frame"
	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// minExpectedForChiSquare is the classic threshold on expected cell counts
// below which the exact test replaces the chi-square approximation.
const minExpectedForChiSquare = 5.0

// selectTests resolves the test to run for every included variable. User
// overrides win; otherwise the default depends on the variable's summary
// type, the number of observed grouping levels, and (for categorical
// variables) the expected contingency cell counts. When a correlation group
// is present, defaults shift to the within-cluster permutation test.
func selectTests(tbl *table.Table, f *frame.Frame, reg *tests.Registry,
	spec map[string]interface{}, include map[string]bool, group string) (map[string]selection, error) {

	overrides, err := resolveSpec(tbl, reg, spec)
	if err != nil {
		return nil, err
	}

	byCol, ok := f.Column(tbl.Call.By)
	if !ok {
		return nil, errors.InvalidArgumentf("grouping variable %q not present in the data", tbl.Call.By)
	}
	byLevels := len(byCol.Levels())

	selections := make(map[string]selection, len(tbl.Meta))
	for _, m := range tbl.Meta {
		if !include[m.Variable] {
			continue
		}
		if sel, ok := overrides[m.Variable]; ok {
			selections[m.Variable] = sel
			continue
		}
		sel, err := defaultSelection(m, f, reg, byLevels, group)
		if err != nil {
			return nil, err
		}
		selections[m.Variable] = sel
	}
	return selections, nil
}

// resolveSpec validates the user test specification and resolves its
// entries. Every name must be a known variable; every value must be a
// built-in identifier or a TestFunc.
func resolveSpec(tbl *table.Table, reg *tests.Registry, spec map[string]interface{}) (map[string]selection, error) {
	known := make(map[string]bool, len(tbl.Meta))
	for _, m := range tbl.Meta {
		known[m.Variable] = true
	}

	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)

	overrides := make(map[string]selection, len(spec))
	for _, name := range names {
		if name == "" {
			return nil, errors.InvalidSpecification("test specification contains an unnamed entry")
		}
		if !known[name] {
			return nil, errors.InvalidSpecificationf("test specification names unknown variable %q", name)
		}
		switch v := spec[name].(type) {
		case string:
			t, ok := reg.Get(v)
			if !ok {
				return nil, errors.InvalidSpecificationf("variable %q: unknown test %q", name, v)
			}
			overrides[name] = selection{testID: t.ID(), test: t}
		case TestFunc:
			overrides[name] = selection{testID: CustomTestID, custom: v}
		case func(*frame.Frame, string, string, map[string]interface{}) (tests.Result, error):
			overrides[name] = selection{testID: CustomTestID, custom: v}
		default:
			return nil, errors.InvalidSpecificationf("variable %q: test specification must be a test identifier or test function, got %T", name, spec[name])
		}
	}
	return overrides, nil
}

// defaultSelection applies the type-conditional default rules
func defaultSelection(m table.VariableMeta, f *frame.Frame, reg *tests.Registry, byLevels int, group string) (selection, error) {
	if group != "" {
		return builtin(reg, tests.IDClusterPermutation), nil
	}

	switch m.Type {
	case table.TypeContinuous:
		if byLevels == 2 {
			return builtin(reg, tests.IDWilcoxonRankSum), nil
		}
		return builtin(reg, tests.IDKruskalWallis), nil
	case table.TypeCategorical, table.TypeDichotomous:
		ct, err := f.Contingency(m.Variable, m.By)
		if err != nil {
			return selection{}, errors.InvalidArgumentf("variable %q: %v", m.Variable, err)
		}
		if min := ct.MinExpected(); min >= minExpectedForChiSquare {
			return builtin(reg, tests.IDChiSquareNoCorrect), nil
		}
		return builtin(reg, tests.IDFisherExact), nil
	default:
		return selection{}, errors.InvalidArgumentf("variable %q has unknown summary type %q", m.Variable, m.Type)
	}
}

func builtin(reg *tests.Registry, id string) selection {
	t, _ := reg.Get(id)
	return selection{testID: id, test: t}
}
