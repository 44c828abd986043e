package app

import (
	"context"
	"strings"
	"time"

	"github.com/igordot/SuMu/domain/biomarker"
	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/fit"
	"github.com/igordot/SuMu/domain/formula"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/domain/survival"
	"github.com/igordot/SuMu/internal"
	"github.com/igordot/SuMu/internal/errors"
	"github.com/igordot/SuMu/ports"
)

// JoinPolicy controls how the outcome frame is joined to the biomarker
// matrix on the sample key.
type JoinPolicy string

const (
	// JoinLeft keeps every outcome row; samples with no mutations get
	// all-zero biomarker rows. This is the default: dropping outcome-bearing
	// samples silently would bias the fit.
	JoinLeft JoinPolicy = "left"
	// JoinInner keeps only samples present in both tables.
	JoinInner JoinPolicy = "inner"
)

// SampleKey is the join column shared by every table in a cohort.
const SampleKey = "sample_id"

// FitRequest bundles everything one fit call needs. All fields are read-only
// to the service.
type FitRequest struct {
	// Outcomes is the outcome dataset driving the analysis row set.
	Outcomes []survival.Outcome
	// Formula references the biomarker placeholder, e.g. "outcome ~ 1 + __BIOM".
	Formula string
	// Mutations is the long-format mutation event table.
	Mutations []genomics.MutationRecord
	// Rule derives feature labels from mutation records.
	Rule biomarker.FeatureRule
	// CellPolicy selects presence vs count cells.
	CellPolicy biomarker.CellPolicy
	// Join selects left vs inner join semantics.
	Join JoinPolicy
}

// AnalysisService is the model-fitting workflow: biomarker matrix build,
// outcome join, formula expansion, then delegation to the pluggable fitter.
type AnalysisService struct {
	fitter ports.ModelFitter
	logger *internal.Logger
}

// NewAnalysisService creates an analysis service around a fitting backend.
func NewAnalysisService(fitter ports.ModelFitter, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &AnalysisService{fitter: fitter, logger: logger}
}

// Fit runs the full biomarker-augmented fit and returns the fitted-model
// handle. The delegate fitter is invoked exactly once; its failure is
// wrapped as a FITTING_ERROR with the original error preserved, never
// retried, since statistical fits are not safe to blindly re-run.
func (s *AnalysisService) Fit(ctx context.Context, req FitRequest) (*fit.Model, error) {
	if len(req.Outcomes) == 0 {
		return nil, errors.InvalidInput("outcome dataset is empty")
	}

	matrix, err := biomarker.Build(req.Mutations, req.Rule, req.CellPolicy)
	if err != nil {
		return nil, err
	}

	frame, err := s.join(req.Outcomes, matrix, req.Join)
	if err != nil {
		return nil, err
	}

	expanded, err := formula.Expand(req.Formula, matrix.FeatureNames())
	if err != nil {
		return nil, err
	}
	frame.Outcome = outcomeName(expanded)

	run := core.NewRunID()
	s.logger.Info("run %s: fitting %q over %d samples x %d biomarkers with backend %s",
		run, expanded, frame.NumRows(), len(frame.Columns), s.fitter.Name())

	start := time.Now()
	fitted, err := s.fitter.Fit(ctx, expanded, frame)
	if err != nil {
		return nil, errors.Fitting(expanded, err)
	}
	s.logger.Info("run %s: fit completed in %s", run, time.Since(start).Round(time.Millisecond))

	model := fit.NewModel(expanded, frame.Outcome, SampleKey, s.fitter.Name(), frame.Columns, fitted)
	model.RunID = run
	return model, nil
}

// BuildFrame joins an outcome set against an already-built biomarker matrix
// without fitting. Used by the summarizer to assemble evaluation frames.
func (s *AnalysisService) BuildFrame(outcomes []survival.Outcome, matrix *biomarker.Matrix, join JoinPolicy) (*fit.Frame, error) {
	return s.join(outcomes, matrix, join)
}

func (s *AnalysisService) join(outcomes []survival.Outcome, matrix *biomarker.Matrix, policy JoinPolicy) (*fit.Frame, error) {
	overlap := 0
	for _, o := range outcomes {
		if matrix.HasSample(o.SampleID) {
			overlap++
		}
	}
	// Zero overlap with biomarker data present means the two tables use
	// different key schemes; zero-filling everything would fit noise.
	if overlap == 0 && len(matrix.Samples) > 0 {
		return nil, errors.KeyMismatch(SampleKey, len(outcomes), len(matrix.Samples))
	}

	kept := outcomes
	if policy == JoinInner {
		kept = make([]survival.Outcome, 0, overlap)
		for _, o := range outcomes {
			if matrix.HasSample(o.SampleID) {
				kept = append(kept, o)
			}
		}
		if len(kept) == 0 {
			return nil, errors.KeyMismatch(SampleKey, len(outcomes), len(matrix.Samples))
		}
	}

	ids := make([]core.SampleID, len(kept))
	y := make([]float64, len(kept))
	for i, o := range kept {
		ids[i] = o.SampleID
		y[i] = o.Value
	}
	aligned := matrix.Align(ids)

	return &fit.Frame{
		SampleIDs: ids,
		Y:         y,
		Columns:   aligned.FeatureNames(),
		X:         aligned.Values,
	}, nil
}

func outcomeName(expandedFormula string) string {
	if i := strings.Index(expandedFormula, "~"); i > 0 {
		return strings.TrimSpace(expandedFormula[:i])
	}
	return "outcome"
}
