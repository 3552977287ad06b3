package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// WilcoxonRankSum compares a continuous variable across exactly two groups
// using the Wilcoxon rank sum (Mann-Whitney) test with normal approximation,
// tie correction and continuity correction.
type WilcoxonRankSum struct{}

// NewWilcoxonRankSum creates the two-sample rank sum test
func NewWilcoxonRankSum() *WilcoxonRankSum {
	return &WilcoxonRankSum{}
}

func (t *WilcoxonRankSum) ID() string {
	return IDWilcoxonRankSum
}

func (t *WilcoxonRankSum) Label() string {
	return "Wilcoxon rank sum test"
}

func (t *WilcoxonRankSum) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	groups, err := f.SplitNumeric(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}
	if len(groups) != 2 {
		return Result{}, errors.UndefinedResultf("variable %s: rank sum test requires exactly two groups, got %d", variable, len(groups))
	}

	g1, g2 := groups[0].Values, groups[1].Values
	n1, n2 := float64(len(g1)), float64(len(g2))
	n := n1 + n2

	pooled := make([]float64, 0, int(n))
	pooled = append(pooled, g1...)
	pooled = append(pooled, g2...)
	ranks, ties := midRanks(pooled)

	w := 0.0
	for i := 0; i < len(g1); i++ {
		w += ranks[i]
	}

	mean := n1 * (n + 1) / 2
	variance := n1 * n2 / 12 * ((n + 1) - tieSum(ties)/(n*(n-1)))
	if variance <= 0 {
		// All observations tied: no ordering information
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	// Continuity correction toward zero
	diff := w - mean
	switch {
	case diff > 0.5:
		diff -= 0.5
	case diff < -0.5:
		diff += 0.5
	default:
		diff = 0
	}

	z := diff / math.Sqrt(variance)
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	if p > 1 {
		p = 1
	}
	return Result{PValue: p, Label: t.Label()}, nil
}
