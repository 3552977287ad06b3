package tests

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// ChiSquare tests independence between a categorical variable and the
// grouping column on the observed contingency table. The default variant
// applies no continuity correction; the Yates variant subtracts 0.5 from
// each absolute deviation on 2x2 tables.
type ChiSquare struct {
	id    string
	label string
	yates bool
}

// NewChiSquareNoCorrect creates the uncorrected chi-square test
func NewChiSquareNoCorrect() *ChiSquare {
	return &ChiSquare{
		id:    IDChiSquareNoCorrect,
		label: "chi-square test of independence",
	}
}

// NewChiSquareYates creates the continuity-corrected chi-square test
func NewChiSquareYates() *ChiSquare {
	return &ChiSquare{
		id:    IDChiSquare,
		label: "chi-square test with continuity correction",
		yates: true,
	}
}

func (t *ChiSquare) ID() string {
	return t.id
}

func (t *ChiSquare) Label() string {
	return t.label
}

func (t *ChiSquare) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	ct, err := f.Contingency(variable, by)
	if err != nil {
		return Result{}, errors.Wrapf(errors.UndefinedResult(err.Error()), "variable %s", variable)
	}

	chi2, df, ok := chiSquareStatistic(ct, t.yates)
	if !ok {
		return Result{PValue: math.NaN(), Label: t.label}, nil
	}

	dist := distuv.ChiSquared{K: float64(df)}
	return Result{PValue: dist.Survival(chi2), Label: t.label}, nil
}

// chiSquareStatistic computes the Pearson statistic and degrees of freedom.
// ok is false when the table is degenerate (fewer than two levels on either
// margin, or a zero expected cell).
func chiSquareStatistic(ct *frame.Contingency, yates bool) (chi2 float64, df int, ok bool) {
	rows := len(ct.RowLevels)
	cols := len(ct.ColLevels)
	df = (rows - 1) * (cols - 1)
	if df <= 0 {
		return 0, 0, false
	}

	applyYates := yates && rows == 2 && cols == 2
	expected := ct.Expected()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			e := expected[r][c]
			if e <= 0 {
				return 0, 0, false
			}
			d := math.Abs(ct.Counts[r][c] - e)
			if applyYates {
				d -= 0.5
				if d < 0 {
					d = 0
				}
			}
			chi2 += d * d / e
		}
	}
	return chi2, df, true
}
