// Package tests implements the built-in statistical comparison procedures
// and the string-keyed registry the augmentation engine dispatches on. Each
// procedure consumes a variable split by a grouping column and produces a
// p-value plus a human-readable test name; p-values come from gonum's
// distribution CDFs.
package tests

import (
	"tabreport/domain/frame"
)

// Result is the output of a single comparison test
type Result struct {
	PValue float64 // in [0, 1], or NaN when the test is undefined for the input
	Label  string  // human-readable test name for footnotes
}

// Options carries auxiliary parameters some tests need
type Options struct {
	// Group names the cluster column for correlated-data tests.
	Group string
	// Draws is the Monte Carlo draw count for permutation-based tests.
	Draws int
	// Seed fixes the random source for permutation-based tests.
	Seed int64
}

// draws returns the configured draw count with a floor for reliability
func (o Options) draws() int {
	if o.Draws < 100 {
		return 2000
	}
	return o.Draws
}

// Test defines the interface for each built-in comparison procedure
type Test interface {
	ID() string
	Label() string
	Run(f *frame.Frame, variable, by string, opts Options) (Result, error)
}

// Test identifiers
const (
	IDWilcoxonRankSum    = "wilcoxon_rank_sum"
	IDKruskalWallis      = "kruskal_wallis"
	IDChiSquareNoCorrect = "chi_square_no_correct"
	IDChiSquare          = "chi_square"
	IDFisherExact        = "fisher_exact"
	IDTTest              = "t_test"
	IDOneWayANOVA        = "one_way_anova"
	IDMcNemar            = "mcnemar"
	IDClusterPermutation = "cluster_permutation"
)

// Registry maps test identifiers to procedures
type Registry struct {
	order []string
	byID  map[string]Test
}

// NewRegistry creates a registry populated with all built-in tests
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[string]Test)}
	r.Register(NewWilcoxonRankSum())
	r.Register(NewKruskalWallis())
	r.Register(NewChiSquareNoCorrect())
	r.Register(NewChiSquareYates())
	r.Register(NewFisherExact())
	r.Register(NewTTest())
	r.Register(NewOneWayANOVA())
	r.Register(NewMcNemar())
	r.Register(NewClusterPermutation())
	return r
}

// Register adds or replaces a test
func (r *Registry) Register(t Test) {
	if _, exists := r.byID[t.ID()]; !exists {
		r.order = append(r.order, t.ID())
	}
	r.byID[t.ID()] = t
}

// Get looks up a test by identifier
func (r *Registry) Get(id string) (Test, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// IDs returns all registered identifiers in registration order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}
