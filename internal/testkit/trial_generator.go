// Package testkit provides deterministic synthetic datasets for tests and
// demos. Generators are seeded, so the same config always yields the same
// frame.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"tabreport/domain/frame"
)

// TrialGeneratorConfig configures the synthetic trial data generator
type TrialGeneratorConfig struct {
	SubjectCount  int
	Arms          []string
	SiteCount     int
	MissingRate   float64
	ResponseShift float64 // added response probability in the last arm
	AgeShift      float64 // added mean age in the last arm
	Seed          int64
}

// DefaultTrialConfig returns sensible defaults for trial data generation
func DefaultTrialConfig() TrialGeneratorConfig {
	return TrialGeneratorConfig{
		SubjectCount:  200,
		Arms:          []string{"Drug A", "Drug B"},
		SiteCount:     8,
		MissingRate:   0.05,
		ResponseShift: 0.2,
		AgeShift:      3.0,
		Seed:          42,
	}
}

// TrialDataGenerator generates realistic two-arm trial data: a continuous
// age and biomarker, a dichotomous response, an ordered tumor grade, and a
// site column usable as a correlation group.
type TrialDataGenerator struct {
	config TrialGeneratorConfig
	rng    *rand.Rand
}

// NewTrialDataGenerator creates a new trial data generator
func NewTrialDataGenerator(config TrialGeneratorConfig) *TrialDataGenerator {
	return &TrialDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateFrame generates a complete trial dataset
func (g *TrialDataGenerator) GenerateFrame() (*frame.Frame, error) {
	n := g.config.SubjectCount
	if n <= 0 {
		n = DefaultTrialConfig().SubjectCount
	}
	arms := g.config.Arms
	if len(arms) < 2 {
		arms = DefaultTrialConfig().Arms
	}

	arm := make([]string, n)
	age := make([]float64, n)
	marker := make([]float64, n)
	response := make([]string, n)
	grade := make([]string, n)
	site := make([]string, n)

	grades := []string{"I", "II", "III"}

	for i := 0; i < n; i++ {
		armIdx := i % len(arms)
		lastArm := armIdx == len(arms)-1
		arm[i] = arms[armIdx]
		site[i] = fmt.Sprintf("site_%02d", g.rng.Intn(g.config.SiteCount)+1)

		age[i] = 52 + g.rng.NormFloat64()*12
		if lastArm {
			age[i] += g.config.AgeShift
		}

		marker[i] = 4 + g.rng.NormFloat64()*1.5

		respProb := 0.35
		if lastArm {
			respProb += g.config.ResponseShift
		}
		if g.rng.Float64() < respProb {
			response[i] = "yes"
		} else {
			response[i] = "no"
		}

		grade[i] = grades[g.rng.Intn(len(grades))]

		if g.rng.Float64() < g.config.MissingRate {
			marker[i] = missingFloat()
		}
		if g.rng.Float64() < g.config.MissingRate {
			grade[i] = ""
		}
	}

	return frame.New(
		frame.CategoricalColumn("arm", arm),
		frame.NumericColumn("age", age),
		frame.NumericColumn("marker", marker),
		frame.CategoricalColumn("response", response),
		frame.CategoricalColumn("grade", grade),
		frame.CategoricalColumn("site", site),
	)
}

func missingFloat() float64 {
	return math.NaN()
}
