package survival

import (
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
)

// Observation is one (time, event) pair. Event=false means right-censored.
type Observation struct {
	Time  float64
	Event bool
}

// CurvePoint is one step of a Kaplan-Meier survival curve.
type CurvePoint struct {
	Time     float64 `json:"time"`
	AtRisk   int     `json:"at_risk"`
	Events   int     `json:"events"`
	Survival float64 `json:"survival"`
}

// Observations converts clinical records to survival observations.
func Observations(clinical []genomics.ClinicalRecord) []Observation {
	obs := make([]Observation, len(clinical))
	for i, rec := range clinical {
		obs[i] = Observation{Time: rec.SurvivalDays, Event: rec.Deceased}
	}
	return obs
}

// KaplanMeier computes the product-limit estimate of the survival function.
// Output points are at distinct event times in ascending order; censored
// observations reduce the risk set but do not produce steps.
func KaplanMeier(obs []Observation) []CurvePoint {
	if len(obs) == 0 {
		return nil
	}

	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var points []CurvePoint
	survival := 1.0
	atRisk := len(sorted)

	i := 0
	for i < len(sorted) {
		t := sorted[i].Time
		events, censored := 0, 0
		for i < len(sorted) && sorted[i].Time == t {
			if sorted[i].Event {
				events++
			} else {
				censored++
			}
			i++
		}
		if events > 0 {
			survival *= 1 - float64(events)/float64(atRisk)
			points = append(points, CurvePoint{
				Time:     t,
				AtRisk:   atRisk,
				Events:   events,
				Survival: survival,
			})
		}
		atRisk -= events + censored
	}
	return points
}

// LogRankResult holds the two-group log-rank comparison.
type LogRankResult struct {
	ChiSquare float64 `json:"chi_square"`
	PValue    float64 `json:"p_value"`
	N1        int     `json:"n1"`
	N2        int     `json:"n2"`
}

// LogRank runs the two-group log-rank test. Group membership is typically
// mutant vs wild-type for a biomarker of interest.
func LogRank(group1, group2 []Observation) (LogRankResult, error) {
	if len(group1) == 0 || len(group2) == 0 {
		return LogRankResult{}, core.ErrInsufficientData
	}

	type tagged struct {
		Observation
		group int
	}
	all := make([]tagged, 0, len(group1)+len(group2))
	for _, o := range group1 {
		all = append(all, tagged{o, 0})
	}
	for _, o := range group2 {
		all = append(all, tagged{o, 1})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Time < all[j].Time })

	atRisk := [2]int{len(group1), len(group2)}
	var observed1, expected1, variance float64
	anyEvents := false

	i := 0
	for i < len(all) {
		t := all[i].Time
		events := [2]int{}
		removed := [2]int{}
		for i < len(all) && all[i].Time == t {
			g := all[i].group
			removed[g]++
			if all[i].Event {
				events[g]++
			}
			i++
		}

		d := float64(events[0] + events[1])
		n := float64(atRisk[0] + atRisk[1])
		if d > 0 && n > 1 {
			anyEvents = true
			n1 := float64(atRisk[0])
			observed1 += float64(events[0])
			expected1 += d * n1 / n
			variance += d * (n1 / n) * (1 - n1/n) * (n - d) / (n - 1)
		}

		atRisk[0] -= removed[0]
		atRisk[1] -= removed[1]
	}

	if !anyEvents {
		return LogRankResult{}, core.ErrNoEvents
	}

	result := LogRankResult{N1: len(group1), N2: len(group2)}
	if variance > 0 {
		diff := observed1 - expected1
		result.ChiSquare = diff * diff / variance
		chi := distuv.ChiSquared{K: 1}
		result.PValue = 1 - chi.CDF(result.ChiSquare)
	} else {
		result.PValue = 1
	}
	return result, nil
}
