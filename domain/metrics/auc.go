package metrics

import (
	"sort"

	"github.com/igordot/SuMu/domain/core"
)

// AUC computes the area under the empirical ROC curve via the rank-based
// Mann-Whitney U statistic. Ties in score share their average rank (mid-rank
// correction) so the result is well defined and deterministic.
//
// labels must be 0/1; scores are predicted probabilities or any monotone
// transform of them. AUC only depends on score order, never on scale.
func AUC(scores, labels []float64) (float64, error) {
	if len(scores) != len(labels) {
		return 0, core.ErrInsufficientData
	}

	var nPos, nNeg float64
	for _, y := range labels {
		if y > 0 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, core.ErrInsufficientData
	}

	ranks := midRanks(scores)

	// U = sum of positive-class ranks - nPos*(nPos+1)/2
	var rankSum float64
	for i, y := range labels {
		if y > 0 {
			rankSum += ranks[i]
		}
	}
	u := rankSum - nPos*(nPos+1)/2
	return u / (nPos * nNeg), nil
}

// midRanks converts values to 1-based ranks, averaging ties.
func midRanks(data []float64) []float64 {
	n := len(data)
	type pair struct {
		value float64
		index int
	}

	pairs := make([]pair, n)
	for i, v := range data {
		pairs[i] = pair{value: v, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

	ranks := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2.0
		for k := i; k < j; k++ {
			ranks[pairs[k].index] = avgRank
		}
		i = j
	}
	return ranks
}

// ROCPoint is one (FPR, TPR) step of the empirical ROC curve.
type ROCPoint struct {
	Threshold float64 `json:"threshold"`
	FPR       float64 `json:"fpr"`
	TPR       float64 `json:"tpr"`
}

// ROC computes the empirical ROC curve, one point per distinct score
// threshold, (0,0) first and (1,1) last.
func ROC(scores, labels []float64) []ROCPoint {
	n := len(scores)
	if n == 0 || n != len(labels) {
		return nil
	}

	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, n)
	var nPos, nNeg float64
	for i := range scores {
		pairs[i] = pair{scores[i], labels[i] > 0}
		if labels[i] > 0 {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })

	points := []ROCPoint{{Threshold: pairs[0].score + 1, FPR: 0, TPR: 0}}
	var tp, fp float64
	i := 0
	for i < n {
		t := pairs[i].score
		for i < n && pairs[i].score == t {
			if pairs[i].pos {
				tp++
			} else {
				fp++
			}
			i++
		}
		points = append(points, ROCPoint{Threshold: t, FPR: fp / nNeg, TPR: tp / nPos})
	}
	return points
}

// HistogramBin is one bin of a predicted-probability histogram.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram bins values into numBins equal-width bins over [0, 1], the
// natural range for predicted probabilities. Values outside the range are
// clamped into the edge bins.
func Histogram(values []float64, numBins int) []HistogramBin {
	if numBins < 1 {
		numBins = 10
	}
	width := 1.0 / float64(numBins)
	bins := make([]HistogramBin, numBins)
	for i := range bins {
		bins[i].Lower = float64(i) * width
		bins[i].Upper = float64(i+1) * width
	}
	for _, v := range values {
		idx := int(v / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= numBins {
			idx = numBins - 1
		}
		bins[idx].Count++
	}
	return bins
}
