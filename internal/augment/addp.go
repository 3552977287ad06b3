// Package augment attaches hypothesis-test p-values to summary tables. It
// selects a test for every variable from type-conditional defaults or a
// caller-supplied specification, executes the tests against the source
// data, and merges the results back into the table's metadata, body, and
// header.
package augment

import (
	"math"

	"tabreport/adapters/stats/tests"
	"tabreport/domain/frame"
	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/config"
	"tabreport/internal/errors"
	"tabreport/internal/format"
)

type options struct {
	include   []string
	exclude   []string
	testSpec  map[string]interface{}
	formatter string
	group     string
	draws     int
	seed      int64
	seedSet   bool
}

// Option configures a single AddP call
type Option func(*options)

// WithInclude restricts augmentation to the named variables
func WithInclude(variables ...string) Option {
	return func(o *options) { o.include = append(o.include, variables...) }
}

// WithExclude removes the named variables from augmentation
func WithExclude(variables ...string) Option {
	return func(o *options) { o.exclude = append(o.exclude, variables...) }
}

// WithTests overrides the default test per variable. Values are either a
// built-in test identifier (string) or a TestFunc.
func WithTests(spec map[string]interface{}) Option {
	return func(o *options) { o.testSpec = spec }
}

// WithPValueFormatter selects a registered p-value formatter by name for
// this call, overriding the configured default.
func WithPValueFormatter(name string) Option {
	return func(o *options) { o.formatter = name }
}

// WithGroup names a column identifying correlated clusters of observations.
// The column is dropped from the rendered table and defaults shift to the
// within-cluster permutation test.
func WithGroup(column string) Option {
	return func(o *options) { o.group = column }
}

// WithPermutation overrides the configured Monte Carlo draw count and seed
func WithPermutation(draws int, seed int64) Option {
	return func(o *options) {
		o.draws = draws
		o.seed = seed
		o.seedSet = true
	}
}

// AddP computes a comparison p-value for each variable in the table and
// returns a new table carrying them. The input table and frame are never
// mutated.
//
// Per-variable computation failures are recorded as an absent p-value and
// logged; they do not abort the call. Invalid arguments, invalid test
// specifications, and contract violations from user-supplied tests do.
func AddP(tbl *table.Table, data *frame.Frame, opts ...Option) (*table.Table, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	cfg := config.Active()
	if o.draws <= 0 {
		o.draws = cfg.Report.PermutationDraws
	}
	if !o.seedSet {
		o.seed = cfg.Report.PermutationSeed
	}

	if tbl == nil {
		return nil, errors.InvalidArgument("table is required")
	}
	if data == nil {
		return nil, errors.InvalidArgument("data frame is required")
	}
	by := tbl.Call.By
	if by == "" {
		return nil, errors.InvalidArgument("table was built without a grouping variable; comparisons require one")
	}
	byCol, ok := data.Column(by)
	if !ok {
		return nil, errors.InvalidArgumentf("grouping variable %q not present in the data", by)
	}
	if len(byCol.Levels()) < 2 {
		return nil, errors.InvalidArgumentf("grouping variable %q has fewer than two observed levels", by)
	}
	if o.group != "" && !data.HasColumn(o.group) {
		return nil, errors.InvalidArgumentf("correlation group %q not present in the data", o.group)
	}

	fmtName := o.formatter
	if fmtName == "" {
		fmtName = cfg.Report.PValueStyle
	}
	if _, ok := format.ByName(fmtName); !ok {
		return nil, errors.InvalidArgumentf("unknown p-value formatter %q", fmtName)
	}

	working := tbl.Clone()
	if o.group != "" {
		working.DropVariable(o.group)
	}

	include, err := includedVariables(working, o)
	if err != nil {
		return nil, err
	}

	registry := tests.NewRegistry()
	selections, err := selectTests(working, data, registry, o.testSpec, include, o.group)
	if err != nil {
		return nil, err
	}

	runOpts := tests.Options{Group: o.group, Draws: o.draws, Seed: o.seed}
	testIDs := make(map[string]string, len(selections))
	pvalues := make(map[string]float64, len(selections))
	labels := make(map[string]string, len(selections))

	// Meta order keeps execution and logging deterministic
	for _, m := range working.Meta {
		sel, ok := selections[m.Variable]
		if !ok {
			continue
		}
		res, err := runTest(data, m.Variable, by, sel, runOpts)
		if err != nil {
			if errors.HasCode(err, errors.CodeContractViolation) {
				return nil, err
			}
			internal.DefaultLogger.Warn("p-value computation failed for %s: %v", m.Variable, err)
			testIDs[m.Variable] = sel.testID
			pvalues[m.Variable] = math.NaN()
			if sel.test != nil {
				labels[m.Variable] = sel.test.Label()
			}
			continue
		}
		testIDs[m.Variable] = sel.testID
		pvalues[m.Variable] = res.PValue
		labels[m.Variable] = res.Label
	}

	merged := table.MergePValues(working, testIDs, pvalues, labels)
	return table.RefreshHeader(merged, fmtName), nil
}

// includedVariables resolves the include/exclude options against the
// table's variables. Names that match nothing are caller mistakes.
func includedVariables(tbl *table.Table, o *options) (map[string]bool, error) {
	known := make(map[string]bool, len(tbl.Meta))
	for _, m := range tbl.Meta {
		known[m.Variable] = true
	}

	include := make(map[string]bool, len(tbl.Meta))
	if len(o.include) > 0 {
		for _, name := range o.include {
			if !known[name] {
				return nil, errors.InvalidArgumentf("include names unknown variable %q", name)
			}
			include[name] = true
		}
	} else {
		for name := range known {
			include[name] = true
		}
	}
	for _, name := range o.exclude {
		if !known[name] {
			return nil, errors.InvalidArgumentf("exclude names unknown variable %q", name)
		}
		delete(include, name)
	}
	return include, nil
}
