package augment

import (
	"math"

	"tabreport/adapters/stats/tests"
	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// TestFunc is the contract for a user-supplied test: it receives the data,
// the variable under comparison, the grouping variable and any extra
// options, and must return a result holding exactly a p-value in [0, 1] (or
// NaN for a degenerate input) and a non-empty label.
type TestFunc func(f *frame.Frame, variable, by string, opts map[string]interface{}) (tests.Result, error)

// CustomTestID is the identifier recorded in variable metadata for
// user-supplied test functions.
const CustomTestID = "custom"

// selection is the resolved test choice for one variable
type selection struct {
	testID string
	test   tests.Test // resolved built-in, nil for custom
	custom TestFunc
}

// runTest executes a resolved selection and validates the result against
// the test contract.
func runTest(f *frame.Frame, variable, by string, sel selection, opts tests.Options) (tests.Result, error) {
	var res tests.Result
	var err error
	if sel.custom != nil {
		res, err = sel.custom(f, variable, by, map[string]interface{}{
			"group": opts.Group,
		})
	} else {
		res, err = sel.test.Run(f, variable, by, opts)
	}
	if err != nil {
		return tests.Result{}, err
	}

	if res.Label == "" {
		return tests.Result{}, errors.ContractViolationf("variable %s: test returned a result without a label", variable)
	}
	if !math.IsNaN(res.PValue) && (res.PValue < 0 || res.PValue > 1) {
		return tests.Result{}, errors.ContractViolationf("variable %s: test returned p-value %v outside [0, 1]", variable, res.PValue)
	}
	return res, nil
}
