package tests

import (
	"math"
	"math/rand"

	"tabreport/domain/frame"
	"tabreport/internal/errors"
)

// ClusterPermutation compares a variable across groups when observations are
// correlated within clusters (repeated measurements). Group labels are
// permuted within each cluster only, preserving the correlation structure
// under the null. The statistic is the Kruskal-Wallis H for continuous
// variables and the Pearson chi-square for categorical ones; the p-value is
// the seeded Monte Carlo tail proportion.
type ClusterPermutation struct{}

// NewClusterPermutation creates the correlated-data permutation test
func NewClusterPermutation() *ClusterPermutation {
	return &ClusterPermutation{}
}

func (t *ClusterPermutation) ID() string {
	return IDClusterPermutation
}

func (t *ClusterPermutation) Label() string {
	return "within-cluster permutation test"
}

func (t *ClusterPermutation) Run(f *frame.Frame, variable, by string, opts Options) (Result, error) {
	if opts.Group == "" {
		return Result{}, errors.UndefinedResultf("variable %s: permutation test requires a cluster column", variable)
	}

	v, ok := f.Column(variable)
	if !ok {
		return Result{}, errors.UndefinedResultf("variable %s: column not found", variable)
	}
	g, ok := f.Column(by)
	if !ok {
		return Result{}, errors.UndefinedResultf("variable %s: grouping column %q not found", variable, by)
	}
	cl, ok := f.Column(opts.Group)
	if !ok {
		return Result{}, errors.UndefinedResultf("variable %s: cluster column %q not found", variable, opts.Group)
	}

	// Complete cases across all three columns
	var values []float64
	var varLabels, byLabels, clusters []string
	for i := 0; i < f.Len(); i++ {
		if v.IsMissing(i) || g.IsMissing(i) || cl.IsMissing(i) {
			continue
		}
		if v.Kind == frame.Numeric {
			values = append(values, v.Floats[i])
		} else {
			varLabels = append(varLabels, v.LevelAt(i))
		}
		byLabels = append(byLabels, g.LevelAt(i))
		clusters = append(clusters, cl.LevelAt(i))
	}
	if distinctCount(byLabels) < 2 {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	var stat func(by []string) float64
	if v.Kind == frame.Numeric {
		ranks, _ := midRanks(values)
		stat = func(by []string) float64 { return kruskalH(ranks, by) }
	} else {
		stat = func(by []string) float64 { return chiSquareFromLabels(varLabels, by) }
	}

	obs := stat(byLabels)
	if math.IsNaN(obs) {
		return Result{PValue: math.NaN(), Label: t.Label()}, nil
	}

	// Positions grouped by cluster, in first-seen order for determinism
	clusterOrder := make([]string, 0)
	positions := make(map[string][]int)
	for i, c := range clusters {
		if _, seen := positions[c]; !seen {
			clusterOrder = append(clusterOrder, c)
		}
		positions[c] = append(positions[c], i)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	draws := opts.draws()
	perm := append([]string(nil), byLabels...)

	hits := 0
	for d := 0; d < draws; d++ {
		for _, c := range clusterOrder {
			idx := positions[c]
			rng.Shuffle(len(idx), func(i, j int) {
				perm[idx[i]], perm[idx[j]] = perm[idx[j]], perm[idx[i]]
			})
		}
		if stat(perm) >= obs-1e-12 {
			hits++
		}
	}
	return Result{PValue: float64(1+hits) / float64(1+draws), Label: t.Label()}, nil
}

// kruskalH computes the uncorrected Kruskal-Wallis statistic from
// precomputed ranks. Tie correction is a constant factor across
// permutations, so it cancels out of the tail comparison.
func kruskalH(ranks []float64, labels []string) float64 {
	n := float64(len(ranks))
	if n < 2 {
		return math.NaN()
	}
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for i, r := range ranks {
		sums[labels[i]] += r
		counts[labels[i]]++
	}
	h := 0.0
	for lvl, s := range sums {
		h += s * s / counts[lvl]
	}
	return 12/(n*(n+1))*h - 3*(n+1)
}

// chiSquareFromLabels computes the Pearson statistic of the cross-tab of
// two label vectors
func chiSquareFromLabels(a, b []string) float64 {
	n := float64(len(a))
	if n == 0 {
		return math.NaN()
	}
	cells := make(map[[2]string]float64)
	rowTotals := make(map[string]float64)
	colTotals := make(map[string]float64)
	for i := range a {
		cells[[2]string{a[i], b[i]}]++
		rowTotals[a[i]]++
		colTotals[b[i]]++
	}
	chi2 := 0.0
	for r, rt := range rowTotals {
		for c, ctot := range colTotals {
			e := rt * ctot / n
			if e <= 0 {
				continue
			}
			d := cells[[2]string{r, c}] - e
			chi2 += d * d / e
		}
	}
	return chi2
}

func distinctCount(labels []string) int {
	seen := make(map[string]bool)
	for _, l := range labels {
		seen[l] = true
	}
	return len(seen)
}
