package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// OneWayANOVA compares a continuous variable across two or more groups with
// a one-way analysis of variance.
type OneWayANOVA struct{}

// NewOneWayANOVA creates the one-way ANOVA test
func NewOneWayANOVA() *OneWayANOVA {
	return &OneWayANOVA{}
}

func (t *OneWayANOVA) ID() string {
	return IDOneWayANOVA
}

func (t *OneWayANOVA) Label() string {
	return "one-way ANOVA"
}

func (t *OneWayANOVA) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	groups, err := f.SplitNumeric(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}
	k := len(groups)
	if k < 2 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	total := 0
	grand := 0.0
	for _, g := range groups {
		for _, v := range g.Values {
			grand += v
		}
		total += len(g.Values)
	}
	n := float64(total)
	grand /= n

	ssBetween := 0.0
	ssWithin := 0.0
	for _, g := range groups {
		mean, _ := meanVariance(g.Values)
		ssBetween += float64(len(g.Values)) * (mean - grand) * (mean - grand)
		for _, v := range g.Values {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	df1 := float64(k - 1)
	df2 := n - float64(k)
	if df2 <= 0 || ssWithin <= 0 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	fStat := (ssBetween / df1) / (ssWithin / df2)
	dist := distuv.F{D1: df1, D2: df2}
	return Result{PValue: dist.Survival(fStat), Label: t.Label()}, nil
}
