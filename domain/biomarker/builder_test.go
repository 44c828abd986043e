package biomarker

import (
	"reflect"
	"testing"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/internal/errors"
)

func mutation(sample, gene, effect, aaChange string) genomics.MutationRecord {
	return genomics.MutationRecord{
		SampleID: core.SampleID(sample),
		Gene:     gene,
		Effect:   effect,
		AAChange: aaChange,
	}
}

func TestBuild_PivotAndZeroFill(t *testing.T) {
	// S1 has BRAF and NRAS, S2 has BRAF only; the outcome set adds S3,
	// which never appears in the mutation table.
	mutations := []genomics.MutationRecord{
		mutation("S1", "BRAF", "Missense_Mutation", "p.V600E"),
		mutation("S1", "NRAS", "Missense_Mutation", "p.Q61R"),
		mutation("S2", "BRAF", "Missense_Mutation", "p.V600K"),
	}

	m, err := Build(mutations, ByGene, Presence)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantFeatures := []core.FeatureLabel{"BRAF", "NRAS"}
	if !reflect.DeepEqual(m.Features, wantFeatures) {
		t.Errorf("Features = %v, want %v", m.Features, wantFeatures)
	}

	aligned := m.Align([]core.SampleID{"S1", "S2", "S3"})
	if len(aligned.Samples) != 3 {
		t.Fatalf("aligned rows = %d, want 3", len(aligned.Samples))
	}

	wantRows := map[core.SampleID][]float64{
		"S1": {1, 1},
		"S2": {1, 0},
		"S3": {0, 0},
	}
	for sample, want := range wantRows {
		row, ok := aligned.Row(sample)
		if !ok {
			t.Fatalf("missing row for %s", sample)
		}
		if !reflect.DeepEqual(row, want) {
			t.Errorf("row %s = %v, want %v", sample, row, want)
		}
	}
}

func TestBuild_CountPolicy(t *testing.T) {
	mutations := []genomics.MutationRecord{
		mutation("S1", "TP53", "Missense_Mutation", "p.R175H"),
		mutation("S1", "TP53", "Nonsense_Mutation", "p.R196*"),
	}

	m, err := Build(mutations, ByGene, Count)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := m.Value("S1", "TP53"); got != 2 {
		t.Errorf("count cell = %v, want 2", got)
	}

	m, err = Build(mutations, ByGene, Presence)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := m.Value("S1", "TP53"); got != 1 {
		t.Errorf("presence cell = %v, want 1", got)
	}
}

func TestBuild_DistinctLabelsBecomeColumns(t *testing.T) {
	mutations := []genomics.MutationRecord{
		mutation("S1", "BRAF", "Missense_Mutation", "p.V600E"),
		mutation("S2", "BRAF", "Missense_Mutation", "p.V600E"),
		mutation("S2", "BRAF", "Nonsense_Mutation", "p.Q72*"),
		mutation("S3", "NRAS", "Missense_Mutation", "p.Q61R"),
	}

	m, err := Build(mutations, ByGeneEffect, Presence)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// 3 distinct gene:effect labels, each exactly one column
	if len(m.Features) != 3 {
		t.Errorf("feature count = %d, want 3", len(m.Features))
	}
	seen := make(map[core.FeatureLabel]bool)
	for _, f := range m.Features {
		if seen[f] {
			t.Errorf("duplicate feature column %s", f)
		}
		seen[f] = true
	}
}

func TestBuild_Idempotent(t *testing.T) {
	mutations := []genomics.MutationRecord{
		mutation("S2", "NRAS", "Missense_Mutation", "p.Q61K"),
		mutation("S1", "BRAF", "Missense_Mutation", "p.V600E"),
		mutation("S3", "TP53", "Nonsense_Mutation", "p.R306*"),
	}

	first, err := Build(mutations, ByGeneAAChange, Presence)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	second, err := Build(mutations, ByGeneAAChange, Presence)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if !reflect.DeepEqual(first.Samples, second.Samples) ||
		!reflect.DeepEqual(first.Features, second.Features) ||
		!reflect.DeepEqual(first.Values, second.Values) {
		t.Error("two builds from the same input differ")
	}
}

func TestBuild_SchemaError(t *testing.T) {
	// effect column empty on every row
	mutations := []genomics.MutationRecord{
		mutation("S1", "BRAF", "", "p.V600E"),
		mutation("S2", "NRAS", "", "p.Q61R"),
	}

	_, err := Build(mutations, ByGeneEffect, Presence)
	if err == nil {
		t.Fatal("expected schema error for missing effect column")
	}
	if !errors.IsCode(err, errors.CodeSchema) {
		t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.CodeSchema)
	}
}

func TestBuild_EmptyMutationTable(t *testing.T) {
	m, err := Build(nil, ByGene, Presence)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	aligned := m.Align([]core.SampleID{"S1"})
	if len(aligned.Samples) != 1 || len(aligned.Features) != 0 {
		t.Errorf("empty table should align to rows with no columns, got %dx%d",
			len(aligned.Samples), len(aligned.Features))
	}
}
