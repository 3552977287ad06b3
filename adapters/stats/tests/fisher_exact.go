package tests

import (
	"math"
	"math/rand"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// FisherExact tests independence on sparse contingency tables. 2x2 tables
// use the exact hypergeometric two-sided p-value; larger tables fall back to
// a seeded Monte Carlo estimate over margin-preserving permutations, with
// the table probability as the test statistic.
type FisherExact struct{}

// NewFisherExact creates the exact independence test
func NewFisherExact() *FisherExact {
	return &FisherExact{}
}

func (t *FisherExact) ID() string {
	return IDFisherExact
}

func (t *FisherExact) Label() string {
	return "Fisher's exact test"
}

func (t *FisherExact) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	ct, err := f.Contingency(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}
	if len(ct.RowLevels) < 2 || len(ct.ColLevels) < 2 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	if len(ct.RowLevels) == 2 && len(ct.ColLevels) == 2 {
		return Result{PValue: exact2x2(ct), Label: t.Label()}, nil
	}

	p, err := t.monteCarlo(f, variable, by, opts)
	if err != nil {
		return Result{}, err
	}
	return Result{PValue: p, Label: t.Label()}, nil
}

// exact2x2 computes the two-sided p-value by summing hypergeometric point
// probabilities no larger than the observed table's.
func exact2x2(ct *frame.Contingency) float64 {
	rowTotals := ct.RowTotals()
	colTotals := ct.ColTotals()
	total := ct.Total()
	if total == 0 {
		return math.NaN()
	}

	r1, c1 := rowTotals[0], colTotals[0]
	observed := ct.Counts[0][0]

	pmf := func(a float64) float64 {
		return math.Exp(lchoose(r1, a) + lchoose(total-r1, c1-a) - lchoose(total, c1))
	}

	lo := math.Max(0, r1+c1-total)
	hi := math.Min(r1, c1)
	pObs := pmf(observed)

	p := 0.0
	for a := lo; a <= hi; a++ {
		if q := pmf(a); q <= pObs*(1+1e-7) {
			p += q
		}
	}
	if p > 1 {
		p = 1
	}
	return p
}

// monteCarlo estimates the exact p-value for r x c tables by permuting
// group assignments (which preserves both margins) and comparing table
// probabilities.
func (t *FisherExact) monteCarlo(f *frame.Frame, variable, by string, opts Options) (float64, error) {
	varLevels, byLevels, err := completePairs(f, variable, by)
	if err != nil {
		return 0, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}

	obs := logTableProb(varLevels, byLevels)
	if math.IsNaN(obs) {
		return math.NaN(), nil
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	draws := opts.draws()
	permuted := append([]string(nil), byLevels...)

	hits := 0
	for d := 0; d < draws; d++ {
		rng.Shuffle(len(permuted), func(i, j int) {
			permuted[i], permuted[j] = permuted[j], permuted[i]
		})
		if logTableProb(varLevels, permuted) <= obs+1e-7 {
			hits++
		}
	}
	return float64(1+hits) / float64(1+draws), nil
}

// logTableProb computes the log probability of the cross-tabulation of two
// label vectors under fixed margins.
func logTableProb(varLevels, byLevels []string) float64 {
	n := len(varLevels)
	if n == 0 {
		return math.NaN()
	}
	cells := make(map[[2]string]float64)
	rowTotals := make(map[string]float64)
	colTotals := make(map[string]float64)
	for i := 0; i < n; i++ {
		cells[[2]string{varLevels[i], byLevels[i]}]++
		rowTotals[varLevels[i]]++
		colTotals[byLevels[i]]++
	}

	logp := -lfactorial(float64(n))
	for _, r := range rowTotals {
		logp += lfactorial(r)
	}
	for _, c := range colTotals {
		logp += lfactorial(c)
	}
	for _, v := range cells {
		logp -= lfactorial(v)
	}
	return logp
}

// completePairs returns the aligned level vectors of two columns, dropping
// rows where either observation is missing.
func completePairs(f *frame.Frame, variable, by string) ([]string, []string, error) {
	v, ok := f.Column(variable)
	if !ok {
		return nil, nil, errors.UndefinedResultf("column %q not found", variable)
	}
	g, ok := f.Column(by)
	if !ok {
		return nil, nil, errors.UndefinedResultf("column %q not found", by)
	}
	var vs, gs []string
	for i := 0; i < f.Len(); i++ {
		if v.IsMissing(i) || g.IsMissing(i) {
			continue
		}
		vs = append(vs, v.LevelAt(i))
		gs = append(gs, g.LevelAt(i))
	}
	return vs, gs, nil
}

func lfactorial(n float64) float64 {
	v, _ := math.Lgamma(n + 1)
	return v
}

func lchoose(n, k float64) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return lfactorial(n) - lfactorial(k) - lfactorial(n-k)
}
