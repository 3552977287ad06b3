package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// McNemar tests marginal homogeneity of a paired dichotomous variable on a
// 2x2 table, without continuity correction.
type McNemar struct{}

// NewMcNemar creates the paired 2x2 test
func NewMcNemar() *McNemar {
	return &McNemar{}
}

func (t *McNemar) ID() string {
	return IDMcNemar
}

func (t *McNemar) Label() string {
	return "McNemar's chi-square test"
}

func (t *McNemar) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	ct, err := f.Contingency(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}
	if len(ct.RowLevels) != 2 || len(ct.ColLevels) != 2 {
		return Result{}, errors.UndefinedResultf("variable %s: McNemar's test requires a 2x2 table", variable)
	}

	b := ct.Counts[0][1]
	c := ct.Counts[1][0]
	if b+c == 0 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	chi2 := (b - c) * (b - c) / (b + c)
	dist := distuv.ChiSquared{K: 1}
	return Result{PValue: dist.Survival(chi2), Label: t.Label()}, nil
}
