package tests

import (
	"math"
	"testing"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// numericByGroups builds a frame with one numeric variable split across
// named groups
func numericByGroups(t *testing.T, groups map[string][]float64, order []string) *frame.Frame {
	t.Helper()
	var values []float64
	var labels []string
	for _, name := range order {
		for _, v := range groups[name] {
			values = append(values, v)
			labels = append(labels, name)
		}
	}
	f, err := frame.New(
		frame.NumericColumn("outcome", values),
		frame.CategoricalColumn("arm", labels),
	)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	return f
}

// categoricalTable builds a frame realizing the given 2x2 (or r x c) counts
func categoricalTable(t *testing.T, rowLevels, colLevels []string, counts [][]int) *frame.Frame {
	t.Helper()
	var vs, gs []string
	for r, row := range counts {
		for c, n := range row {
			for i := 0; i < n; i++ {
				vs = append(vs, rowLevels[r])
				gs = append(gs, colLevels[c])
			}
		}
	}
	f, err := frame.New(
		frame.CategoricalColumn("outcome", vs),
		frame.CategoricalColumn("arm", gs),
	)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	return f
}

func TestGoldStandard_ChiSquareNoCorrect(t *testing.T) {
	// 2x2 table [[10,20],[20,10]]: chi2 = 6.6667 on 1 df, p = 0.009823
	f := categoricalTable(t, []string{"a", "b"}, []string{"x", "y"}, [][]int{{10, 20}, {20, 10}})

	res, err := NewChiSquareNoCorrect().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-0.009823) > 1e-3 {
		t.Fatalf("expected p near 0.009823, got %.6f", res.PValue)
	}
}

func TestGoldStandard_ChiSquareYates(t *testing.T) {
	// Same table with continuity correction: chi2 = 5.4, p = 0.02014
	f := categoricalTable(t, []string{"a", "b"}, []string{"x", "y"}, [][]int{{10, 20}, {20, 10}})

	res, err := NewChiSquareYates().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-0.02014) > 1e-3 {
		t.Fatalf("expected p near 0.02014, got %.6f", res.PValue)
	}
}

func TestGoldStandard_FisherExact2x2(t *testing.T) {
	// [[3,1],[1,3]]: two-sided exact p = 34/70 = 0.485714
	f := categoricalTable(t, []string{"a", "b"}, []string{"x", "y"}, [][]int{{3, 1}, {1, 3}})

	res, err := NewFisherExact().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-34.0/70.0) > 1e-9 {
		t.Fatalf("expected p = 34/70, got %.9f", res.PValue)
	}
}

func TestGoldStandard_FisherMonteCarloDeterministic(t *testing.T) {
	// 3x2 table forces the Monte Carlo path; fixed seed fixes the estimate
	f := categoricalTable(t, []string{"a", "b", "c"}, []string{"x", "y"},
		[][]int{{8, 2}, {3, 7}, {5, 5}})

	opts := Options{Draws: 500, Seed: 7}
	first, err := NewFisherExact().Run(f, "outcome", "arm", opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := NewFisherExact().Run(f, "outcome", "arm", opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first.PValue != second.PValue {
		t.Fatalf("same seed should reproduce the estimate: %.6f vs %.6f", first.PValue, second.PValue)
	}
	if first.PValue <= 0 || first.PValue > 1 {
		t.Fatalf("p-value out of range: %.6f", first.PValue)
	}
}

func TestGoldStandard_McNemar(t *testing.T) {
	// Discordant counts 5 and 15: chi2 = 100/20 = 5, p = 0.02535
	f := categoricalTable(t, []string{"neg", "pos"}, []string{"neg", "pos"},
		[][]int{{30, 5}, {15, 30}})

	res, err := NewMcNemar().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-0.02535) > 1e-3 {
		t.Fatalf("expected p near 0.02535, got %.6f", res.PValue)
	}
}

func TestGoldStandard_WelchTTest(t *testing.T) {
	// Equal variances, shifted means: t = -1, df = 8, p = 0.34659
	f := numericByGroups(t, map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {2, 3, 4, 5, 6},
	}, []string{"a", "b"})

	res, err := NewTTest().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-0.34659) > 2e-3 {
		t.Fatalf("expected p near 0.34659, got %.6f", res.PValue)
	}
}

func TestGoldStandard_WilcoxonRankSum(t *testing.T) {
	// Fully separated groups of 3: z = 4.0/sqrt(5.25), p = 0.08086
	f := numericByGroups(t, map[string][]float64{
		"a": {1, 2, 3},
		"b": {4, 5, 6},
	}, []string{"a", "b"})

	res, err := NewWilcoxonRankSum().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-0.08086) > 1e-3 {
		t.Fatalf("expected p near 0.08086, got %.6f", res.PValue)
	}
}

func TestWilcoxonRejectsThreeGroups(t *testing.T) {
	f := numericByGroups(t, map[string][]float64{
		"a": {1, 2}, "b": {3, 4}, "c": {5, 6},
	}, []string{"a", "b", "c"})

	_, err := NewWilcoxonRankSum().Run(f, "outcome", "arm", Options{})
	if !errors.HasCode(err, errors.CodeUndefinedResult) {
		t.Fatalf("expected UNDEFINED_RESULT for three groups, got %v", err)
	}
}

func TestWilcoxonAllTiedIsNaN(t *testing.T) {
	f := numericByGroups(t, map[string][]float64{
		"a": {2, 2, 2},
		"b": {2, 2, 2},
	}, []string{"a", "b"})

	res, err := NewWilcoxonRankSum().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !math.IsNaN(res.PValue) {
		t.Fatalf("expected NaN for fully tied data, got %.6f", res.PValue)
	}
}

func TestGoldStandard_KruskalWallis(t *testing.T) {
	// Three separated groups of 3: H = 7.2 on 2 df, p = exp(-3.6) = 0.027324
	f := numericByGroups(t, map[string][]float64{
		"a": {1, 2, 3},
		"b": {4, 5, 6},
		"c": {7, 8, 9},
	}, []string{"a", "b", "c"})

	res, err := NewKruskalWallis().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-math.Exp(-3.6)) > 1e-4 {
		t.Fatalf("expected p near %.6f, got %.6f", math.Exp(-3.6), res.PValue)
	}
}

func TestGoldStandard_OneWayANOVA(t *testing.T) {
	// F = 3 on (2, 6) df: p = (1 + 2F/6)^(-3) = 0.125 exactly
	f := numericByGroups(t, map[string][]float64{
		"a": {1, 2, 3},
		"b": {2, 3, 4},
		"c": {3, 4, 5},
	}, []string{"a", "b", "c"})

	res, err := NewOneWayANOVA().Run(f, "outcome", "arm", Options{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if math.Abs(res.PValue-0.125) > 1e-6 {
		t.Fatalf("expected p = 0.125, got %.9f", res.PValue)
	}
}

func TestClusterPermutationDeterministic(t *testing.T) {
	n := 40
	values := make([]float64, n)
	arms := make([]string, n)
	sites := make([]string, n)
	for i := 0; i < n; i++ {
		values[i] = float64(i%7) + float64(i%3)
		arms[i] = []string{"a", "b"}[i%2]
		sites[i] = []string{"s1", "s2", "s3", "s4"}[i%4]
	}
	f, err := frame.New(
		frame.NumericColumn("outcome", values),
		frame.CategoricalColumn("arm", arms),
		frame.CategoricalColumn("site", sites),
	)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}

	opts := Options{Group: "site", Draws: 300, Seed: 11}
	first, err := NewClusterPermutation().Run(f, "outcome", "arm", opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := NewClusterPermutation().Run(f, "outcome", "arm", opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first.PValue != second.PValue {
		t.Fatalf("same seed should reproduce the estimate: %.6f vs %.6f", first.PValue, second.PValue)
	}
	if first.PValue <= 0 || first.PValue > 1 {
		t.Fatalf("p-value out of range: %.6f", first.PValue)
	}
}

func TestClusterPermutationRequiresGroup(t *testing.T) {
	f := numericByGroups(t, map[string][]float64{
		"a": {1, 2}, "b": {3, 4},
	}, []string{"a", "b"})

	_, err := NewClusterPermutation().Run(f, "outcome", "arm", Options{})
	if !errors.HasCode(err, errors.CodeUndefinedResult) {
		t.Fatalf("expected UNDEFINED_RESULT without a cluster column, got %v", err)
	}
}

func TestRegistryHoldsAllBuiltins(t *testing.T) {
	reg := NewRegistry()
	want := []string{
		IDWilcoxonRankSum, IDKruskalWallis, IDChiSquareNoCorrect, IDChiSquare,
		IDFisherExact, IDTTest, IDOneWayANOVA, IDMcNemar, IDClusterPermutation,
	}
	ids := reg.IDs()
	if len(ids) != len(want) {
		t.Fatalf("expected %d registered tests, got %d", len(want), len(ids))
	}
	for _, id := range want {
		test, ok := reg.Get(id)
		if !ok {
			t.Fatalf("missing test %q", id)
		}
		if test.ID() != id {
			t.Fatalf("test %q reports id %q", id, test.ID())
		}
		if test.Label() == "" {
			t.Fatalf("test %q has no label", id)
		}
	}
}
