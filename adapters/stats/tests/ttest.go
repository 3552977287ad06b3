package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// TTest compares a continuous variable across exactly two groups using
// Welch's t-test (unequal variances, Welch-Satterthwaite degrees of
// freedom).
type TTest struct{}

// NewTTest creates the two-sample t-test
func NewTTest() *TTest {
	return &TTest{}
}

func (t *TTest) ID() string {
	return IDTTest
}

func (t *TTest) Label() string {
	return "Welch two sample t-test"
}

func (t *TTest) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	groups, err := f.SplitNumeric(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}
	if len(groups) != 2 {
		return Result{}, errors.UndefinedResultf("variable %s: t-test requires exactly two groups, got %d", variable, len(groups))
	}

	g1, g2 := groups[0].Values, groups[1].Values
	n1, n2 := float64(len(g1)), float64(len(g2))
	if n1 < 2 || n2 < 2 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	mean1, var1 := meanVariance(g1)
	mean2, var2 := meanVariance(g2)

	se2 := var1/n1 + var2/n2
	if se2 <= 0 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	tStat := (mean1 - mean2) / math.Sqrt(se2)
	df := se2 * se2 / (var1*var1/(n1*n1*(n1-1)) + var2*var2/(n2*n2*(n2-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(tStat))
	if p > 1 {
		p = 1
	}
	return Result{PValue: p, Label: t.Label()}, nil
}

// meanVariance computes the sample mean and unbiased sample variance
func meanVariance(values []float64) (mean, variance float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= n
	if n < 2 {
		return mean, 0
	}
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= n - 1
	return mean, variance
}
