package testkit

import (
	"context"
	"math"
	"sync"

	"github.com/igordot/SuMu/domain/fit"
	"github.com/igordot/SuMu/domain/genomics"
)

// FakeLoader serves a pre-generated snapshot as if it were the remote data
// service. Unknown cohorts return the configured error.
type FakeLoader struct {
	Snapshot *genomics.CohortSnapshot
	Err      error
}

func (l *FakeLoader) FetchClinical(ctx context.Context, cohort string) ([]genomics.ClinicalRecord, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Snapshot.Clinical, nil
}

func (l *FakeLoader) FetchMutations(ctx context.Context, cohort string) ([]genomics.MutationRecord, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Snapshot.Mutations, nil
}

func (l *FakeLoader) FetchExpression(ctx context.Context, cohort string) (*genomics.GeneMatrix, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Snapshot.Expression, nil
}

func (l *FakeLoader) FetchCopyNumber(ctx context.Context, cohort string) (*genomics.GeneMatrix, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Snapshot.CopyNumber, nil
}

// FakeFitter is a fitting-backend double returning canned coefficients. It
// records every call so tests can assert the delegate was invoked exactly
// once and never retried.
type FakeFitter struct {
	mu        sync.Mutex
	CallCount int
	Formulas  []string
	Coefs     []fit.Coefficient
	Err       error
}

func (f *FakeFitter) Name() string { return "fake" }

func (f *FakeFitter) Fit(ctx context.Context, formula string, data *fit.Frame) (fit.Fitted, error) {
	f.mu.Lock()
	f.CallCount++
	f.Formulas = append(f.Formulas, formula)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return &cannedFit{coefs: f.Coefs}, nil
}

type cannedFit struct {
	coefs []fit.Coefficient
}

func (c *cannedFit) Coefficients() []fit.Coefficient { return c.coefs }

// Predict scores a row as the sum of non-intercept coefficients times the
// row values, squashed to (0,1).
func (c *cannedFit) Predict(x []float64) float64 {
	eta := 0.0
	j := 0
	for _, coef := range c.coefs {
		if coef.Term == fit.InterceptTerm {
			eta += coef.Estimate
			continue
		}
		if j < len(x) {
			eta += coef.Estimate * x[j]
		}
		j++
	}
	return 1 / (1 + math.Exp(-eta))
}
