package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAUC_PerfectClassifier(t *testing.T) {
	scores := []float64{0.9, 0.8, 0.7, 0.2, 0.1}
	labels := []float64{1, 1, 1, 0, 0}

	auc, err := AUC(scores, labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, auc)
}

func TestAUC_InvertedClassifier(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.9, 0.8}
	labels := []float64{1, 1, 0, 0}

	auc, err := AUC(scores, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.0, auc)
}

func TestAUC_TwoSampleBoundary(t *testing.T) {
	// one positive and one negative: AUC is 1, 0 or 0.5 depending on order
	auc, err := AUC([]float64{0.9, 0.1}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1.0, auc)

	auc, err = AUC([]float64{0.1, 0.9}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, auc)

	auc, err = AUC([]float64{0.5, 0.5}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.5, auc)
}

func TestAUC_MonotonicInvariance(t *testing.T) {
	scores := []float64{0.12, 0.55, 0.3, 0.91, 0.43, 0.78, 0.05, 0.62}
	labels := []float64{0, 1, 0, 1, 0, 1, 0, 1}

	base, err := AUC(scores, labels)
	require.NoError(t, err)

	transforms := []func(float64) float64{
		func(x float64) float64 { return 10 * x },
		func(x float64) float64 { return x * x },
		func(x float64) float64 { return math.Log(x + 1) },
		func(x float64) float64 { return 1 / (1 + math.Exp(-x)) },
	}
	for i, f := range transforms {
		transformed := make([]float64, len(scores))
		for j, s := range scores {
			transformed[j] = f(s)
		}
		auc, err := AUC(transformed, labels)
		require.NoError(t, err)
		assert.InDelta(t, base, auc, 1e-12, "transform %d changed AUC", i)
	}
}

func TestAUC_MidRankTies(t *testing.T) {
	// all scores tied: AUC must be exactly 0.5 under mid-rank correction
	scores := []float64{0.4, 0.4, 0.4, 0.4}
	labels := []float64{1, 0, 1, 0}

	auc, err := AUC(scores, labels)
	require.NoError(t, err)
	assert.Equal(t, 0.5, auc)
}

func TestAUC_SingleClassFails(t *testing.T) {
	_, err := AUC([]float64{0.1, 0.9}, []float64{1, 1})
	assert.Error(t, err)
}

func TestROC_Endpoints(t *testing.T) {
	scores := []float64{0.9, 0.6, 0.4, 0.1}
	labels := []float64{1, 0, 1, 0}

	points := ROC(scores, labels)
	require.NotEmpty(t, points)
	assert.Equal(t, 0.0, points[0].FPR)
	assert.Equal(t, 0.0, points[0].TPR)
	last := points[len(points)-1]
	assert.Equal(t, 1.0, last.FPR)
	assert.Equal(t, 1.0, last.TPR)
}

func TestHistogram_BinsAndClamping(t *testing.T) {
	values := []float64{0.05, 0.15, 0.15, 0.95, 1.0, -0.2}
	bins := Histogram(values, 10)

	require.Len(t, bins, 10)
	assert.Equal(t, 2, bins[0].Count) // 0.05 and clamped -0.2
	assert.Equal(t, 2, bins[1].Count)
	assert.Equal(t, 2, bins[9].Count) // 0.95 and clamped 1.0

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, len(values), total)
}
