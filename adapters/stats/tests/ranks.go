package tests

import (
	"sort"
)

// midRanks assigns 1-based ranks to values, averaging ranks over ties. The
// second return value holds the size of each tie run for variance
// corrections.
func midRanks(values []float64) ([]float64, []float64) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	var ties []float64
	for i := 0; i < n; {
		j := i
		for j < n && values[idx[j]] == values[idx[i]] {
			j++
		}
		// Average rank over the tie run [i, j)
		avg := (float64(i+1) + float64(j)) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		if j-i > 1 {
			ties = append(ties, float64(j-i))
		}
		i = j
	}
	return ranks, ties
}

// tieSum computes sum(t^3 - t) over tie run sizes
func tieSum(ties []float64) float64 {
	s := 0.0
	for _, t := range ties {
		s += t*t*t - t
	}
	return s
}
