package app

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/igordot/SuMu/domain/fit"
	"github.com/igordot/SuMu/domain/metrics"
	"github.com/igordot/SuMu/internal"
	"github.com/igordot/SuMu/ports"
)

// SummaryRow is one ranked feature of a fitted model. PValue is the
// two-sided Wald z-test, NaN when the standard error is unavailable.
type SummaryRow struct {
	Rank     int     `json:"rank"`
	Feature  string  `json:"feature"`
	Estimate float64 `json:"estimate"`
	StdError float64 `json:"std_error"`
	PValue   float64 `json:"p_value"`
}

// AUCOptions selects the optional side-effecting renderings of an AUC call.
type AUCOptions struct {
	HGram   bool // render histogram of predicted probabilities
	ROCPlot bool // render ROC curve
	Bins    int  // histogram bins, default 10
}

// Summarizer extracts coefficient rankings and discrimination metrics from
// fitted models.
type Summarizer struct {
	renderer ports.PlotRenderer // optional
	logger   *internal.Logger
}

// NewSummarizer creates a summarizer. renderer may be nil; rendering is then
// skipped regardless of options.
func NewSummarizer(renderer ports.PlotRenderer, logger *internal.Logger) *Summarizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Summarizer{renderer: renderer, logger: logger}
}

// Summarize ranks model features by absolute effect magnitude descending,
// ties broken by feature label so output is stable across runs. The
// intercept is metadata, not a biomarker, and is excluded.
func (s *Summarizer) Summarize(model *fit.Model) []SummaryRow {
	coefs := model.Coefficients()
	rows := make([]SummaryRow, 0, len(coefs))
	for _, c := range coefs {
		if c.Term == fit.InterceptTerm {
			continue
		}
		rows = append(rows, SummaryRow{
			Feature:  c.Term,
			Estimate: c.Estimate,
			StdError: c.StdError,
			PValue:   waldPValue(c.Estimate, c.StdError),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		ai, aj := math.Abs(rows[i].Estimate), math.Abs(rows[j].Estimate)
		if ai != aj {
			return ai > aj
		}
		return rows[i].Feature < rows[j].Feature
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func waldPValue(estimate, stdError float64) float64 {
	if stdError <= 0 || math.IsNaN(stdError) {
		return math.NaN()
	}
	z := math.Abs(estimate / stdError)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	return 2 * norm.Survival(z)
}

// AUC scores an evaluation frame with the model and computes the area under
// the ROC curve via the mid-rank Mann-Whitney method. Rendering options are
// side effects only: the returned scalar is identical whether or not plots
// are drawn, and a failed rendering is logged rather than poisoning the
// metric.
func (s *Summarizer) AUC(model *fit.Model, eval *fit.Frame, opts AUCOptions) (float64, error) {
	preds := model.PredictFrame(eval)

	auc, err := metrics.AUC(preds, eval.Y)
	if err != nil {
		return 0, err
	}

	if s.renderer != nil && opts.HGram {
		bins := opts.Bins
		if bins <= 0 {
			bins = 10
		}
		if rerr := s.renderer.RenderHistogram("predicted probabilities", metrics.Histogram(preds, bins)); rerr != nil {
			s.logger.Warn("histogram rendering failed: %v", rerr)
		}
	}
	if s.renderer != nil && opts.ROCPlot {
		if rerr := s.renderer.RenderROC("ROC curve", metrics.ROC(preds, eval.Y)); rerr != nil {
			s.logger.Warn("ROC rendering failed: %v", rerr)
		}
	}

	return auc, nil
}
