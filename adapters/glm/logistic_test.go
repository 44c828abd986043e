package glm

import (
	"context"
	"math"
	"testing"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/fit"
)

// noisyFrame builds a dataset where x=1 usually means y=1 but with enough
// overlap that the likelihood is not separable.
func noisyFrame() *fit.Frame {
	x := []float64{1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0}
	y := []float64{1, 1, 1, 1, 1, 1, 0, 1, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0}

	frame := &fit.Frame{Outcome: "outcome", Columns: []string{"marker"}}
	for i := range x {
		frame.SampleIDs = append(frame.SampleIDs, core.SampleID("S"))
		frame.X = append(frame.X, []float64{x[i]})
		frame.Y = append(frame.Y, y[i])
	}
	return frame
}

func TestLogistic_RecoversSignal(t *testing.T) {
	fitted, err := NewLogistic().Fit(context.Background(), "outcome ~ 1 + marker", noisyFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coefs := fitted.Coefficients()
	if len(coefs) != 2 {
		t.Fatalf("got %d coefficients, want 2", len(coefs))
	}
	if coefs[0].Term != fit.InterceptTerm {
		t.Errorf("first term = %s, want intercept", coefs[0].Term)
	}
	if coefs[1].Term != "marker" {
		t.Errorf("second term = %s, want marker", coefs[1].Term)
	}
	if coefs[1].Estimate <= 0 {
		t.Errorf("marker estimate = %v, want positive", coefs[1].Estimate)
	}
	if math.IsNaN(coefs[1].StdError) || coefs[1].StdError <= 0 {
		t.Errorf("marker std error = %v, want positive finite", coefs[1].StdError)
	}
}

func TestLogistic_PredictOrdering(t *testing.T) {
	fitted, err := NewLogistic().Fit(context.Background(), "outcome ~ 1 + marker", noisyFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	pMut := fitted.Predict([]float64{1})
	pWT := fitted.Predict([]float64{0})
	if pMut <= pWT {
		t.Errorf("P(y|marker=1)=%v should exceed P(y|marker=0)=%v", pMut, pWT)
	}
	if pMut <= 0 || pMut >= 1 || pWT <= 0 || pWT >= 1 {
		t.Errorf("predictions outside (0,1): %v, %v", pMut, pWT)
	}
}

func TestLogistic_Deterministic(t *testing.T) {
	a, err := NewLogistic().Fit(context.Background(), "outcome ~ 1 + marker", noisyFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	b, err := NewLogistic().Fit(context.Background(), "outcome ~ 1 + marker", noisyFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	ca, cb := a.Coefficients(), b.Coefficients()
	for i := range ca {
		if ca[i].Estimate != cb[i].Estimate {
			t.Errorf("coefficient %s differs across runs", ca[i].Term)
		}
	}
}

func TestLogistic_RejectsNonBinaryOutcome(t *testing.T) {
	frame := &fit.Frame{
		Outcome: "outcome",
		Columns: []string{"x"},
		Y:       []float64{0, 1, 2},
		X:       [][]float64{{0}, {1}, {2}},
	}
	if _, err := NewLogistic().Fit(context.Background(), "outcome ~ 1 + x", frame); err == nil {
		t.Fatal("expected error for non-binary outcome")
	}
}

func TestLogistic_RejectsUnderdetermined(t *testing.T) {
	frame := &fit.Frame{
		Outcome: "outcome",
		Columns: []string{"a", "b", "c"},
		Y:       []float64{0, 1},
		X:       [][]float64{{1, 0, 0}, {0, 1, 0}},
	}
	if _, err := NewLogistic().Fit(context.Background(), "outcome ~ 1 + a + b + c", frame); err == nil {
		t.Fatal("expected error for more coefficients than rows")
	}
}
