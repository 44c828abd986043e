// Package testkit provides deterministic synthetic cohorts and fake
// adapters for tests and demos.
package testkit

import (
	"fmt"
	"math/rand"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
)

// GeneratorConfig shapes a synthetic cohort.
type GeneratorConfig struct {
	Seed         int64
	NumSamples   int
	MutationRate float64 // chance a sample carries any given driver gene
	// Signal is the survival-probability boost for samples carrying the
	// first driver gene, so fits have something real to find.
	Signal float64
}

// DefaultGeneratorConfig mirrors a small TCGA-like cohort.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:         42,
		NumSamples:   200,
		MutationRate: 0.25,
		Signal:       0.3,
	}
}

var driverGenes = []struct {
	gene    string
	effects []string
	changes []string
}{
	{"BRAF", []string{"Missense_Mutation"}, []string{"p.V600E", "p.V600K"}},
	{"NRAS", []string{"Missense_Mutation"}, []string{"p.Q61R", "p.Q61K"}},
	{"TP53", []string{"Missense_Mutation", "Nonsense_Mutation"}, []string{"p.R175H", "p.R248Q"}},
	{"NF1", []string{"Nonsense_Mutation", "Frame_Shift_Del"}, []string{"p.R1362*", "p.L626fs"}},
	{"KIT", []string{"Missense_Mutation"}, []string{"p.L576P"}},
}

// CohortGenerator produces seeded synthetic cohort snapshots. The same seed
// always yields the same cohort.
type CohortGenerator struct {
	config GeneratorConfig
}

// NewCohortGenerator creates a generator.
func NewCohortGenerator(config GeneratorConfig) *CohortGenerator {
	if config.NumSamples <= 0 {
		config.NumSamples = 200
	}
	return &CohortGenerator{config: config}
}

// Generate builds a complete synthetic snapshot for the named cohort.
func (g *CohortGenerator) Generate(cohort string) *genomics.CohortSnapshot {
	rng := rand.New(rand.NewSource(g.config.Seed))
	snap := &genomics.CohortSnapshot{Cohort: cohort}

	for i := 0; i < g.config.NumSamples; i++ {
		sampleID := core.SampleID(fmt.Sprintf("TCGA-%02d-%04d", i%30, i))

		carriesFirst := false
		for gi, driver := range driverGenes {
			if rng.Float64() >= g.config.MutationRate {
				continue
			}
			if gi == 0 {
				carriesFirst = true
			}
			snap.Mutations = append(snap.Mutations, genomics.MutationRecord{
				SampleID: sampleID,
				Gene:     driver.gene,
				Effect:   driver.effects[rng.Intn(len(driver.effects))],
				AAChange: driver.changes[rng.Intn(len(driver.changes))],
			})
		}

		surviveProb := 0.45
		if carriesFirst {
			surviveProb += g.config.Signal
		}
		survived := rng.Float64() < surviveProb

		days := 100 + rng.Float64()*900
		if survived {
			days = 400 + rng.Float64()*1800
		}
		snap.Clinical = append(snap.Clinical, genomics.ClinicalRecord{
			SampleID:     sampleID,
			SurvivalDays: days,
			Deceased:     !survived,
			Covariates: map[string]interface{}{
				"age_at_diagnosis": 40 + rng.Intn(45),
			},
		})
	}

	snap.Expression = g.generateMatrix(rng, snap)
	snap.CopyNumber = g.generateMatrix(rng, snap)
	return snap
}

func (g *CohortGenerator) generateMatrix(rng *rand.Rand, snap *genomics.CohortSnapshot) *genomics.GeneMatrix {
	m := &genomics.GeneMatrix{}
	for _, driver := range driverGenes {
		m.Genes = append(m.Genes, driver.gene)
	}
	for _, rec := range snap.Clinical {
		m.Samples = append(m.Samples, rec.SampleID)
	}
	for range m.Genes {
		row := make([]float64, len(m.Samples))
		for i := range row {
			row[i] = rng.NormFloat64()*2 + 8
		}
		m.Values = append(m.Values, row)
	}
	return m
}
