package genomics

import (
	"github.com/montanaflynn/stats"

	"github.com/igordot/SuMu/domain/core"
)

// GeneProfile summarizes the distribution of one gene across samples.
type GeneProfile struct {
	Gene    string  `json:"gene"`
	N       int     `json:"n"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Median  float64 `json:"median"`
	Q25     float64 `json:"q25"`
	Q75     float64 `json:"q75"`
}

// ProfileGene computes summary statistics for one gene row of a matrix.
// Returns false when the matrix is nil or the gene has no values.
func ProfileGene(m *GeneMatrix, gene string) (GeneProfile, bool) {
	if m == nil {
		return GeneProfile{}, false
	}
	row := m.Row(gene)
	if len(row) == 0 {
		return GeneProfile{}, false
	}

	mean, _ := stats.Mean(row)
	stdDev, _ := stats.StandardDeviation(row)
	min, _ := stats.Min(row)
	max, _ := stats.Max(row)
	median, _ := stats.Median(row)
	q25, _ := stats.Percentile(row, 25)
	q75, _ := stats.Percentile(row, 75)

	return GeneProfile{
		Gene:   gene,
		N:      len(row),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
		Q25:    q25,
		Q75:    q75,
	}, true
}

// MutationCounts tallies mutation events per sample.
func MutationCounts(mutations []MutationRecord) map[core.SampleID]int {
	counts := make(map[core.SampleID]int)
	for _, m := range mutations {
		counts[m.SampleID]++
	}
	return counts
}
