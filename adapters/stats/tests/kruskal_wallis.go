package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// KruskalWallis compares a continuous variable across two or more groups
// using the Kruskal-Wallis rank sum test with tie correction.
type KruskalWallis struct{}

// NewKruskalWallis creates the k-sample rank sum test
func NewKruskalWallis() *KruskalWallis {
	return &KruskalWallis{}
}

func (t *KruskalWallis) ID() string {
	return IDKruskalWallis
}

func (t *KruskalWallis) Label() string {
	return "Kruskal-Wallis rank sum test"
}

func (t *KruskalWallis) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	groups, err := f.SplitNumeric(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}
	if len(groups) < 2 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	sizes := make([]float64, len(groups))
	var pooled []float64
	for i, g := range groups {
		sizes[i] = float64(len(g.Values))
		pooled = append(pooled, g.Values...)
	}
	n := float64(len(pooled))
	ranks, ties := midRanks(pooled)

	h := 0.0
	offset := 0
	for i, g := range groups {
		sum := 0.0
		for j := 0; j < len(g.Values); j++ {
			sum += ranks[offset+j]
		}
		offset += len(g.Values)
		h += sum * sum / sizes[i]
	}
	h = 12/(n*(n+1))*h - 3*(n+1)

	correction := 1 - tieSum(ties)/(n*n*n-n)
	if correction <= 0 {
		// Every observation tied
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}
	h /= correction

	chi := distuv.ChiSquared{K: float64(len(groups) - 1)}
	p := chi.Survival(h)
	return Result{PValue: p, Label: t.Label()}, nil
}
