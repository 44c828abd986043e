package survival

import (
	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
)

// Outcome is one binary outcome row the GLM consumes.
type Outcome struct {
	SampleID core.SampleID `json:"sample_id"`
	Value    float64       `json:"value"` // 1 = survived past the threshold
}

// BinaryOutcomes derives an alive-at-threshold indicator from the clinical
// table. A sample counts as 1 when it survived past thresholdDays, 0 when
// death was observed at or before the threshold. Samples censored before the
// threshold are indeterminate and are excluded rather than guessed.
func BinaryOutcomes(clinical []genomics.ClinicalRecord, thresholdDays float64) []Outcome {
	out := make([]Outcome, 0, len(clinical))
	for _, rec := range clinical {
		switch {
		case rec.SurvivalDays > thresholdDays:
			out = append(out, Outcome{SampleID: rec.SampleID, Value: 1})
		case rec.Deceased:
			out = append(out, Outcome{SampleID: rec.SampleID, Value: 0})
		default:
			// censored before threshold: status unknown, drop
		}
	}
	return out
}

// SampleIDs extracts the ordered sample keys of an outcome set.
func SampleIDs(outcomes []Outcome) []core.SampleID {
	ids := make([]core.SampleID, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.SampleID
	}
	return ids
}

// Values extracts the outcome column in the same order as SampleIDs.
func Values(outcomes []Outcome) []float64 {
	vals := make([]float64, len(outcomes))
	for i, o := range outcomes {
		vals[i] = o.Value
	}
	return vals
}
