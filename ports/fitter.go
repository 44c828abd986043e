package ports

import (
	"context"

	"github.com/igordot/SuMu/domain/fit"
)

// ModelFitter is the pluggable fitting backend seam. Any routine that
// accepts a formula plus a tabular dataset and returns a coefficient-bearing
// result can stand behind it: the Bayesian sampler, the plain GLM, or a test
// double returning canned coefficients.
//
// Fit is a single synchronous call and may run for minutes when the backend
// samples; there is no internal timeout. Callers wanting one should wrap the
// context.
type ModelFitter interface {
	Name() string
	Fit(ctx context.Context, formula string, data *fit.Frame) (fit.Fitted, error)
}
