package biomarker

import (
	"sort"

	"github.com/igordot/SuMu/domain/core"
)

// Matrix is a samples-by-features biomarker design matrix. Rows are keyed by
// sample ID and columns by derived feature label. Both axes are sorted so the
// same inputs always produce the same matrix.
type Matrix struct {
	Samples  []core.SampleID
	Features []core.FeatureLabel
	Values   [][]float64 // Values[row][col], len(Samples) x len(Features)

	sampleIdx  map[core.SampleID]int
	featureIdx map[core.FeatureLabel]int
}

func newMatrix(samples []core.SampleID, features []core.FeatureLabel) *Matrix {
	m := &Matrix{
		Samples:    samples,
		Features:   features,
		Values:     make([][]float64, len(samples)),
		sampleIdx:  make(map[core.SampleID]int, len(samples)),
		featureIdx: make(map[core.FeatureLabel]int, len(features)),
	}
	for i := range samples {
		m.Values[i] = make([]float64, len(features))
		m.sampleIdx[samples[i]] = i
	}
	for j := range features {
		m.featureIdx[features[j]] = j
	}
	return m
}

// Value returns the cell for (sample, feature); zero when either is absent.
func (m *Matrix) Value(s core.SampleID, f core.FeatureLabel) float64 {
	i, ok := m.sampleIdx[s]
	if !ok {
		return 0
	}
	j, ok := m.featureIdx[f]
	if !ok {
		return 0
	}
	return m.Values[i][j]
}

// Row returns the feature vector for a sample and whether the sample exists.
func (m *Matrix) Row(s core.SampleID) ([]float64, bool) {
	i, ok := m.sampleIdx[s]
	if !ok {
		return nil, false
	}
	return m.Values[i], true
}

// HasSample reports whether the sample has a row.
func (m *Matrix) HasSample(s core.SampleID) bool {
	_, ok := m.sampleIdx[s]
	return ok
}

// Align re-keys the matrix onto the given sample set, in the given order.
// Samples absent from the source matrix get all-zero rows; source samples not
// requested are dropped. This is the left-join half of joining biomarkers
// onto an outcome frame: the outcome rows drive the row set.
func (m *Matrix) Align(samples []core.SampleID) *Matrix {
	out := newMatrix(samples, m.Features)
	for i, s := range samples {
		if row, ok := m.Row(s); ok {
			copy(out.Values[i], row)
		}
	}
	return out
}

// FeatureNames returns the feature labels as plain strings, sorted.
func (m *Matrix) FeatureNames() []string {
	names := make([]string, len(m.Features))
	for i, f := range m.Features {
		names[i] = string(f)
	}
	return names
}

func sortedSamples(set map[core.SampleID]struct{}) []core.SampleID {
	out := make([]core.SampleID, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedFeatures(set map[core.FeatureLabel]struct{}) []core.FeatureLabel {
	out := make([]core.FeatureLabel, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
