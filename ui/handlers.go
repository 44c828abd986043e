package ui

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/igordot/SuMu/adapters/report"
	"github.com/igordot/SuMu/app"
	"github.com/igordot/SuMu/domain/biomarker"
	"github.com/igordot/SuMu/domain/formula"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/domain/survival"
	"github.com/igordot/SuMu/internal/errors"
)

// handleCohortSummary returns a quick shape-of-the-data overview.
func (s *Server) handleCohortSummary(w http.ResponseWriter, r *http.Request) {
	cohort := chi.URLParam(r, "cohort")
	snap, err := s.cohorts.Load(r.Context(), cohort)
	if err != nil {
		s.writeError(w, err)
		return
	}

	geneCounts := make(map[string]int)
	for _, m := range snap.Mutations {
		geneCounts[m.Gene]++
	}
	type geneCount struct {
		Gene  string `json:"gene"`
		Count int    `json:"count"`
	}
	top := make([]geneCount, 0, len(geneCounts))
	for g, c := range geneCounts {
		top = append(top, geneCount{g, c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Gene < top[j].Gene
	})
	if len(top) > 20 {
		top = top[:20]
	}

	expression := make([]genomics.GeneProfile, 0, len(top))
	if snap.Expression != nil {
		for _, gc := range top {
			if p, ok := genomics.ProfileGene(snap.Expression, gc.Gene); ok {
				expression = append(expression, p)
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cohort":          cohort,
		"samples":         len(snap.Clinical),
		"samples_mutated": len(genomics.MutationCounts(snap.Mutations)),
		"mutations":       len(snap.Mutations),
		"top_genes":       top,
		"expression":      expression,
		"fetched_at":      snap.FetchedAt,
	})
}

// handleKaplanMeier returns KM curves and the log-rank test split by
// mutation status of ?gene=.
func (s *Server) handleKaplanMeier(w http.ResponseWriter, r *http.Request) {
	cohort := chi.URLParam(r, "cohort")
	gene := r.URL.Query().Get("gene")
	if gene == "" {
		s.writeError(w, errors.InvalidInput("query parameter 'gene' is required"))
		return
	}

	snap, err := s.cohorts.Load(r.Context(), cohort)
	if err != nil {
		s.writeError(w, err)
		return
	}

	mutant, wildType := splitByGene(snap, gene)
	logRank, err := survival.LogRank(mutant, wildType)
	if err != nil {
		s.writeError(w, errors.Wrapf(err, "log-rank test failed for gene %s", gene))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cohort":    cohort,
		"gene":      gene,
		"mutant":    survival.KaplanMeier(mutant),
		"wild_type": survival.KaplanMeier(wildType),
		"log_rank":  logRank,
	})
}

// fitRequestBody is the JSON payload of POST /cohorts/{cohort}/fit.
type fitRequestBody struct {
	Formula     string  `json:"formula"`
	Rule        string  `json:"rule"`
	CellPolicy  string  `json:"cell_policy"`
	Join        string  `json:"join"`
	Backend     string  `json:"backend"`
	OutcomeDays float64 `json:"outcome_days"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	cohort := chi.URLParam(r, "cohort")

	body := fitRequestBody{
		Formula:     formula.Default("outcome"),
		Rule:        biomarker.ByGene.Name,
		CellPolicy:  s.config.Analysis.CellPolicy,
		Join:        s.config.Analysis.JoinPolicy,
		Backend:     "glm",
		OutcomeDays: s.config.Analysis.OutcomeDays,
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeError(w, errors.InvalidInput("malformed fit request body"))
			return
		}
	}

	fitter, ok := s.fitters[body.Backend]
	if !ok {
		s.writeError(w, errors.InvalidInput("unknown fitting backend "+body.Backend))
		return
	}
	rule, err := biomarker.RuleByName(body.Rule)
	if err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := s.cohorts.Load(r.Context(), cohort)
	if err != nil {
		s.writeError(w, err)
		return
	}
	outcomes := survival.BinaryOutcomes(snap.Clinical, body.OutcomeDays)

	analysis := app.NewAnalysisService(fitter, s.logger)
	model, err := analysis.Fit(r.Context(), app.FitRequest{
		Outcomes:   outcomes,
		Formula:    body.Formula,
		Mutations:  snap.Mutations,
		Rule:       rule,
		CellPolicy: biomarker.CellPolicy(body.CellPolicy),
		Join:       app.JoinPolicy(body.Join),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	matrix, err := biomarker.Build(snap.Mutations, rule, biomarker.CellPolicy(body.CellPolicy))
	if err != nil {
		s.writeError(w, err)
		return
	}
	eval, err := analysis.BuildFrame(outcomes, matrix, app.JoinPolicy(body.Join))
	if err != nil {
		s.writeError(w, err)
		return
	}
	auc, err := s.summarizer.AUC(model, eval, app.AUCOptions{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  model.RunID,
		"cohort":  cohort,
		"formula": model.Formula,
		"backend": model.Backend,
		"summary": s.summarizer.Summarize(model),
		"auc":     auc,
		"n":       eval.NumRows(),
	})
}

// handleReport renders the markdown analysis report as HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	cohort := chi.URLParam(r, "cohort")
	snap, err := s.cohorts.Load(r.Context(), cohort)
	if err != nil {
		s.writeError(w, err)
		return
	}

	fitter := s.fitters["glm"]
	outcomes := survival.BinaryOutcomes(snap.Clinical, s.config.Analysis.OutcomeDays)
	analysis := app.NewAnalysisService(fitter, s.logger)

	model, err := analysis.Fit(r.Context(), app.FitRequest{
		Outcomes:   outcomes,
		Formula:    formula.Default("outcome"),
		Mutations:  snap.Mutations,
		Rule:       biomarker.ByGene,
		CellPolicy: biomarker.CellPolicy(s.config.Analysis.CellPolicy),
		Join:       app.JoinPolicy(s.config.Analysis.JoinPolicy),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	matrix, err := biomarker.Build(snap.Mutations, biomarker.ByGene, biomarker.CellPolicy(s.config.Analysis.CellPolicy))
	if err != nil {
		s.writeError(w, err)
		return
	}
	eval, err := analysis.BuildFrame(outcomes, matrix, app.JoinPolicy(s.config.Analysis.JoinPolicy))
	if err != nil {
		s.writeError(w, err)
		return
	}
	auc, err := s.summarizer.AUC(model, eval, app.AUCOptions{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	curve := survival.KaplanMeier(survival.Observations(snap.Clinical))
	md := report.Markdown(cohort, model.RunID, s.summarizer.Summarize(model), auc, curve)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.ToHTML(md))
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	cohort := chi.URLParam(r, "cohort")
	if err := s.cohorts.Invalidate(r.Context(), cohort); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"invalidated": cohort})
}

func splitByGene(snap *genomics.CohortSnapshot, gene string) (mutant, wildType []survival.Observation) {
	carriers := make(map[string]bool)
	for _, m := range snap.Mutations {
		if m.Gene == gene {
			carriers[string(m.SampleID)] = true
		}
	}
	for _, rec := range snap.Clinical {
		obs := survival.Observation{Time: rec.SurvivalDays, Event: rec.Deceased}
		if carriers[string(rec.SampleID)] {
			mutant = append(mutant, obs)
		} else {
			wildType = append(wildType, obs)
		}
	}
	return mutant, wildType
}
