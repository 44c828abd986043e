// Package bayes provides a Bayesian logistic-regression fitting backend:
// random-walk Metropolis over the posterior with independent Gaussian priors
// on every coefficient. Point estimates are posterior means and the reported
// uncertainty is the posterior standard deviation.
package bayes

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/igordot/SuMu/domain/fit"
)

// Options configure the sampler. Parallelism is explicit here rather than
// ambient process state: Chains chains run concurrently, each on its own
// seeded RNG, so runs are reproducible for a fixed seed.
type Options struct {
	Chains     int
	Iterations int     // post-warmup draws per chain
	Warmup     int     // discarded draws per chain
	Seed       int64
	PriorScale float64 // std dev of the Gaussian coefficient prior
	StepScale  float64 // proposal std dev
}

// DefaultOptions mirror the usual sampler defaults.
func DefaultOptions() Options {
	return Options{
		Chains:     4,
		Iterations: 2000,
		Warmup:     1000,
		Seed:       101,
		PriorScale: 2.5,
		StepScale:  0.05,
	}
}

// Sampler implements ports.ModelFitter.
type Sampler struct {
	opts Options
}

// NewSampler creates a sampler backend.
func NewSampler(opts Options) *Sampler {
	if opts.Chains < 1 {
		opts.Chains = 1
	}
	if opts.Iterations < 1 {
		opts.Iterations = 1000
	}
	if opts.Warmup < 0 {
		opts.Warmup = opts.Iterations / 2
	}
	if opts.PriorScale <= 0 {
		opts.PriorScale = 2.5
	}
	if opts.StepScale <= 0 {
		opts.StepScale = 0.05
	}
	return &Sampler{opts: opts}
}

// Name identifies this backend.
func (s *Sampler) Name() string { return "bayes" }

// Fit samples the posterior and summarizes it per coefficient. This is a
// blocking call that can run for minutes on wide biomarker matrices; wrap
// the context with a timeout if that matters to the caller.
func (s *Sampler) Fit(ctx context.Context, formulaStr string, data *fit.Frame) (fit.Fitted, error) {
	n := data.NumRows()
	k := len(data.Columns) + 1

	if n == 0 {
		return nil, fmt.Errorf("no rows to fit")
	}
	for _, y := range data.Y {
		if y != 0 && y != 1 {
			return nil, fmt.Errorf("outcome %q is not binary (saw %v)", data.Outcome, y)
		}
	}

	chains := make([][][]float64, s.opts.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < s.opts.Chains; c++ {
		c := c
		g.Go(func() error {
			draws, err := s.runChain(gctx, data, k, s.opts.Seed+int64(c))
			if err != nil {
				return err
			}
			chains[c] = draws
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mean, sd := summarize(chains, k)
	terms := append([]string{fit.InterceptTerm}, data.Columns...)
	return &fittedPosterior{terms: terms, mean: mean, sd: sd}, nil
}

// runChain runs one Metropolis chain and returns its post-warmup draws.
func (s *Sampler) runChain(ctx context.Context, data *fit.Frame, k int, seed int64) ([][]float64, error) {
	rng := rand.New(rand.NewSource(seed))

	beta := make([]float64, k)
	logPost := s.logPosterior(data, beta)
	proposal := make([]float64, k)
	draws := make([][]float64, 0, s.opts.Iterations)

	total := s.opts.Warmup + s.opts.Iterations
	for iter := 0; iter < total; iter++ {
		if iter%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		copy(proposal, beta)
		for j := range proposal {
			proposal[j] += rng.NormFloat64() * s.opts.StepScale
		}

		candidate := s.logPosterior(data, proposal)
		if candidate-logPost >= math.Log(rng.Float64()) {
			copy(beta, proposal)
			logPost = candidate
		}

		if iter >= s.opts.Warmup {
			draw := make([]float64, k)
			copy(draw, beta)
			draws = append(draws, draw)
		}
	}
	return draws, nil
}

// logPosterior is the Bernoulli log-likelihood plus the Gaussian log-prior,
// up to an additive constant.
func (s *Sampler) logPosterior(data *fit.Frame, beta []float64) float64 {
	lp := 0.0
	for i, y := range data.Y {
		eta := beta[0]
		for j, v := range data.X[i] {
			eta += beta[j+1] * v
		}
		// log sigmoid / log(1-sigmoid) in a numerically stable form
		if y > 0 {
			lp -= math.Log1p(math.Exp(-eta))
		} else {
			lp -= math.Log1p(math.Exp(eta))
		}
	}
	for _, b := range beta {
		lp -= b * b / (2 * s.opts.PriorScale * s.opts.PriorScale)
	}
	return lp
}

func summarize(chains [][][]float64, k int) (mean, sd []float64) {
	mean = make([]float64, k)
	sd = make([]float64, k)

	total := 0
	for _, draws := range chains {
		total += len(draws)
	}
	if total == 0 {
		return mean, sd
	}

	for _, draws := range chains {
		for _, draw := range draws {
			for j := 0; j < k; j++ {
				mean[j] += draw[j]
			}
		}
	}
	for j := 0; j < k; j++ {
		mean[j] /= float64(total)
	}

	for _, draws := range chains {
		for _, draw := range draws {
			for j := 0; j < k; j++ {
				d := draw[j] - mean[j]
				sd[j] += d * d
			}
		}
	}
	for j := 0; j < k; j++ {
		if total > 1 {
			sd[j] = math.Sqrt(sd[j] / float64(total-1))
		}
	}
	return mean, sd
}

type fittedPosterior struct {
	terms []string
	mean  []float64
	sd    []float64
}

func (f *fittedPosterior) Coefficients() []fit.Coefficient {
	coefs := make([]fit.Coefficient, len(f.terms))
	for i, term := range f.terms {
		coefs[i] = fit.Coefficient{Term: term, Estimate: f.mean[i], StdError: f.sd[i]}
	}
	return coefs
}

func (f *fittedPosterior) Predict(x []float64) float64 {
	eta := f.mean[0]
	for j, v := range x {
		if j+1 < len(f.mean) {
			eta += f.mean[j+1] * v
		}
	}
	return 1 / (1 + math.Exp(-eta))
}
