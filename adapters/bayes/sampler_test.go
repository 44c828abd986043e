package bayes

import (
	"context"
	"testing"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/fit"
)

func testFrame() *fit.Frame {
	x := []float64{1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	y := []float64{1, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 0, 0, 0, 0, 0}

	frame := &fit.Frame{Outcome: "outcome", Columns: []string{"marker"}}
	for i := range x {
		frame.SampleIDs = append(frame.SampleIDs, core.SampleID("S"))
		frame.X = append(frame.X, []float64{x[i]})
		frame.Y = append(frame.Y, y[i])
	}
	return frame
}

func fastOptions() Options {
	return Options{
		Chains:     2,
		Iterations: 400,
		Warmup:     200,
		Seed:       7,
		PriorScale: 2.5,
		StepScale:  0.2,
	}
}

func TestSampler_ReproducibleForFixedSeed(t *testing.T) {
	a, err := NewSampler(fastOptions()).Fit(context.Background(), "outcome ~ 1 + marker", testFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	b, err := NewSampler(fastOptions()).Fit(context.Background(), "outcome ~ 1 + marker", testFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	ca, cb := a.Coefficients(), b.Coefficients()
	for i := range ca {
		if ca[i].Estimate != cb[i].Estimate || ca[i].StdError != cb[i].StdError {
			t.Errorf("coefficient %s differs across seeded runs", ca[i].Term)
		}
	}
}

func TestSampler_RecoversSignalSign(t *testing.T) {
	fitted, err := NewSampler(fastOptions()).Fit(context.Background(), "outcome ~ 1 + marker", testFrame())
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	coefs := fitted.Coefficients()
	if len(coefs) != 2 {
		t.Fatalf("got %d coefficients, want 2", len(coefs))
	}
	if coefs[1].Estimate <= 0 {
		t.Errorf("marker posterior mean = %v, want positive", coefs[1].Estimate)
	}
	if coefs[1].StdError <= 0 {
		t.Errorf("marker posterior sd = %v, want positive", coefs[1].StdError)
	}
}

func TestSampler_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastOptions()
	opts.Iterations = 100000
	if _, err := NewSampler(opts).Fit(ctx, "outcome ~ 1 + marker", testFrame()); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestSampler_RejectsNonBinaryOutcome(t *testing.T) {
	frame := &fit.Frame{
		Outcome: "outcome",
		Columns: []string{"x"},
		Y:       []float64{0, 0.5},
		X:       [][]float64{{0}, {1}},
	}
	if _, err := NewSampler(fastOptions()).Fit(context.Background(), "outcome ~ 1 + x", frame); err == nil {
		t.Fatal("expected error for non-binary outcome")
	}
}
