package genomics

import (
	"time"

	"github.com/igordot/SuMu/domain/core"
)

// ClinicalRecord is one row of a cohort's clinical table, keyed by a unique
// sample identifier. Covariates carries any extra columns the data service
// returned beyond the survival fields.
type ClinicalRecord struct {
	SampleID     core.SampleID          `json:"sample_id"`
	SurvivalDays float64                `json:"survival_days"`
	Deceased     bool                   `json:"deceased"`
	Covariates   map[string]interface{} `json:"covariates,omitempty"`
}

// MutationRecord is one observed somatic mutation event. SampleID is not
// unique here: a sample usually carries many mutations, possibly several in
// the same gene.
type MutationRecord struct {
	SampleID core.SampleID `json:"sample_id"`
	Gene     string        `json:"gene"`
	Effect   string        `json:"effect"`
	AAChange string        `json:"aa_change"`
}

// GeneMatrix is a genes-by-samples numeric matrix (expression or copy-number).
type GeneMatrix struct {
	Genes   []string        `json:"genes"`
	Samples []core.SampleID `json:"samples"`
	Values  [][]float64     `json:"values"` // Values[g][s], len(Genes) x len(Samples)
}

// CohortSnapshot bundles everything fetched for one cohort in one session.
// Snapshots are read-only once fetched.
type CohortSnapshot struct {
	Cohort     string           `json:"cohort"`
	Clinical   []ClinicalRecord `json:"clinical"`
	Mutations  []MutationRecord `json:"mutations"`
	Expression *GeneMatrix      `json:"expression,omitempty"`
	CopyNumber *GeneMatrix      `json:"copy_number,omitempty"`
	FetchedAt  time.Time        `json:"fetched_at"`
}

// Row returns the values for one gene, or nil if the gene is absent.
func (m *GeneMatrix) Row(gene string) []float64 {
	for i, g := range m.Genes {
		if g == gene {
			return m.Values[i]
		}
	}
	return nil
}

// SampleIndex returns the column index of a sample, or -1.
func (m *GeneMatrix) SampleIndex(id core.SampleID) int {
	for i, s := range m.Samples {
		if s == id {
			return i
		}
	}
	return -1
}

// ClinicalIndex builds a lookup from sample ID to clinical record. Later
// duplicates are ignored so the first occurrence wins, preserving the
// uniqueness invariant of the clinical table.
func ClinicalIndex(records []ClinicalRecord) map[core.SampleID]*ClinicalRecord {
	idx := make(map[core.SampleID]*ClinicalRecord, len(records))
	for i := range records {
		if _, ok := idx[records[i].SampleID]; !ok {
			idx[records[i].SampleID] = &records[i]
		}
	}
	return idx
}
