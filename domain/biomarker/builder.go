package biomarker

import (
	"fmt"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/internal/errors"
)

// CellPolicy controls what a matrix cell records for a (sample, feature) group.
type CellPolicy string

const (
	// Presence records 1 when the sample has at least one matching event.
	Presence CellPolicy = "presence"
	// Count records the number of matching events.
	Count CellPolicy = "count"
)

// FeatureRule derives a feature label from a mutation record. Columns lists
// the logical mutation-table columns the rule reads, used for schema checks.
type FeatureRule struct {
	Name    string
	Columns []string
	Label   func(genomics.MutationRecord) core.FeatureLabel
}

// Built-in label rules matching the usual biomarker definitions.
var (
	// ByGene labels a mutation by gene symbol alone, e.g. "BRAF".
	ByGene = FeatureRule{
		Name:    "gene",
		Columns: []string{"gene"},
		Label: func(m genomics.MutationRecord) core.FeatureLabel {
			return core.FeatureLabel(m.Gene)
		},
	}

	// ByGeneEffect labels a mutation by gene and variant effect, e.g.
	// "BRAF:Missense_Mutation".
	ByGeneEffect = FeatureRule{
		Name:    "gene_effect",
		Columns: []string{"gene", "effect"},
		Label: func(m genomics.MutationRecord) core.FeatureLabel {
			return core.FeatureLabel(fmt.Sprintf("%s:%s", m.Gene, m.Effect))
		},
	}

	// ByGeneAAChange labels a mutation by gene and amino-acid change, e.g.
	// "BRAF:p.V600E".
	ByGeneAAChange = FeatureRule{
		Name:    "gene_aa_change",
		Columns: []string{"gene", "aa_change"},
		Label: func(m genomics.MutationRecord) core.FeatureLabel {
			return core.FeatureLabel(fmt.Sprintf("%s:%s", m.Gene, m.AAChange))
		},
	}
)

// RuleByName resolves a rule name from config or the CLI.
func RuleByName(name string) (FeatureRule, error) {
	switch name {
	case ByGene.Name:
		return ByGene, nil
	case ByGeneEffect.Name:
		return ByGeneEffect, nil
	case ByGeneAAChange.Name:
		return ByGeneAAChange, nil
	default:
		return FeatureRule{}, errors.InvalidInput(fmt.Sprintf("unknown feature rule %q", name))
	}
}

// Build pivots a long-format mutation table into a wide biomarker matrix.
// Events are grouped by (sample, derived label); each group becomes one cell
// per the policy. Missing (sample, label) combinations are zero. The row set
// is the distinct samples seen in the mutation table; use Matrix.Align to
// re-key onto an outcome frame's samples.
func Build(mutations []genomics.MutationRecord, rule FeatureRule, policy CellPolicy) (*Matrix, error) {
	if err := checkSchema(mutations, rule); err != nil {
		return nil, err
	}

	type cellKey struct {
		sample  core.SampleID
		feature core.FeatureLabel
	}

	counts := make(map[cellKey]float64)
	sampleSet := make(map[core.SampleID]struct{})
	featureSet := make(map[core.FeatureLabel]struct{})

	for _, mut := range mutations {
		label := rule.Label(mut)
		sampleSet[mut.SampleID] = struct{}{}
		featureSet[label] = struct{}{}
		counts[cellKey{mut.SampleID, label}]++
	}

	m := newMatrix(sortedSamples(sampleSet), sortedFeatures(featureSet))
	for key, n := range counts {
		i := m.sampleIdx[key.sample]
		j := m.featureIdx[key.feature]
		if policy == Count {
			m.Values[i][j] = n
		} else {
			m.Values[i][j] = 1
		}
	}
	return m, nil
}

// checkSchema verifies the columns the rule reads are actually populated.
// A column that is empty on every row means the upstream table lacked it.
func checkSchema(mutations []genomics.MutationRecord, rule FeatureRule) error {
	if len(mutations) == 0 {
		return nil
	}

	populated := make(map[string]bool, len(rule.Columns)+1)
	for _, mut := range mutations {
		if mut.SampleID != "" {
			populated["sample_id"] = true
		}
		if mut.Gene != "" {
			populated["gene"] = true
		}
		if mut.Effect != "" {
			populated["effect"] = true
		}
		if mut.AAChange != "" {
			populated["aa_change"] = true
		}
	}

	if !populated["sample_id"] {
		return errors.Schema("mutations", "sample_id")
	}
	for _, col := range rule.Columns {
		if !populated[col] {
			return errors.Schema("mutations", col)
		}
	}
	return nil
}
