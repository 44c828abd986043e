// Package glm provides a plain logistic-regression fitting backend, the
// non-Bayesian counterpart to the sampler in adapters/bayes.
package glm

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/igordot/SuMu/domain/fit"
)

// Logistic fits a binomial GLM with logit link via iteratively reweighted
// least squares.
type Logistic struct {
	MaxIter int
	Tol     float64
}

// NewLogistic creates a fitter with standard IRLS settings.
func NewLogistic() *Logistic {
	return &Logistic{MaxIter: 50, Tol: 1e-8}
}

// Name identifies this backend.
func (l *Logistic) Name() string { return "glm" }

// Fit estimates coefficients for the frame. The formula is carried as
// metadata; the frame's columns already reflect the expanded terms.
func (l *Logistic) Fit(ctx context.Context, formulaStr string, data *fit.Frame) (fit.Fitted, error) {
	n := data.NumRows()
	k := len(data.Columns) + 1 // intercept first

	if n == 0 {
		return nil, fmt.Errorf("no rows to fit")
	}
	if n < k {
		return nil, fmt.Errorf("%d coefficients but only %d rows", k, n)
	}
	for _, y := range data.Y {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("outcome %q is not binary (saw %v)", data.Outcome, y)
		}
	}

	x := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		for j, v := range data.X[i] {
			x.Set(i, j+1, v)
		}
	}

	beta := make([]float64, k)
	eta := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	for iter := 0; iter < l.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := 0; i < n; i++ {
			eta[i] = 0
			for j := 0; j < k; j++ {
				eta[i] += x.At(i, j) * beta[j]
			}
			mu := sigmoid(eta[i])
			wi := mu * (1 - mu)
			if wi < 1e-10 {
				wi = 1e-10
			}
			w[i] = wi
			z[i] = eta[i] + (data.Y[i]-mu)/wi
		}

		// Weighted least squares step: scale rows by sqrt(w) and solve.
		aw := mat.NewDense(n, k, nil)
		bw := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			s := math.Sqrt(w[i])
			for j := 0; j < k; j++ {
				aw.Set(i, j, s*x.At(i, j))
			}
			bw.SetVec(i, s*z[i])
		}

		var sol mat.Dense
		if err := sol.Solve(aw, bw); err != nil {
			return nil, fmt.Errorf("IRLS step %d failed: %w", iter, err)
		}

		maxDelta := 0.0
		for j := 0; j < k; j++ {
			next := sol.At(j, 0)
			if d := math.Abs(next - beta[j]); d > maxDelta {
				maxDelta = d
			}
			beta[j] = next
		}
		if maxDelta < l.Tol {
			break
		}
	}

	se := standardErrors(x, w, n, k)

	terms := append([]string{fit.InterceptTerm}, data.Columns...)
	return &fittedLogistic{terms: terms, beta: beta, se: se}, nil
}

// standardErrors takes the diagonal of (X'WX)^-1. On a singular information
// matrix (e.g. perfectly separable data) errors are reported as NaN.
func standardErrors(x *mat.Dense, w []float64, n, k int) []float64 {
	xtwx := mat.NewDense(k, k, nil)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += x.At(i, a) * w[i] * x.At(i, b)
			}
			xtwx.Set(a, b, sum)
		}
	}

	se := make([]float64, k)
	var inv mat.Dense
	if err := inv.Inverse(xtwx); err != nil {
		for j := range se {
			se[j] = math.NaN()
		}
		return se
	}
	for j := 0; j < k; j++ {
		se[j] = math.Sqrt(inv.At(j, j))
	}
	return se
}

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}

type fittedLogistic struct {
	terms []string
	beta  []float64
	se    []float64
}

func (f *fittedLogistic) Coefficients() []fit.Coefficient {
	coefs := make([]fit.Coefficient, len(f.terms))
	for i, term := range f.terms {
		coefs[i] = fit.Coefficient{Term: term, Estimate: f.beta[i], StdError: f.se[i]}
	}
	return coefs
}

func (f *fittedLogistic) Predict(x []float64) float64 {
	eta := f.beta[0]
	for j, v := range x {
		if j+1 < len(f.beta) {
			eta += f.beta[j+1] * v
		}
	}
	return sigmoid(eta)
}
