// Package xena reads cohort tables from a Xena-style genomics data service
// exposing per-cohort clinical, mutation, expression and copy-number
// endpoints as JSON.
package xena

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/internal/errors"
)

// Reader implements ports.CohortLoader over HTTP.
type Reader struct {
	config      Config
	httpClient  *http.Client
	rateLimiter *RateLimiter
}

// NewReader creates a reader for a data service.
func NewReader(config Config) *Reader {
	return &Reader{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		rateLimiter: NewRateLimiter(config.RatePerMinute),
	}
}

// FetchClinical retrieves the clinical table for a cohort.
func (r *Reader) FetchClinical(ctx context.Context, cohort string) ([]genomics.ClinicalRecord, error) {
	body, err := r.get(ctx, cohort, "clinical")
	if err != nil {
		return nil, errors.Retrieval(cohort, "clinical", err)
	}

	rows := gjson.GetBytes(body, "samples")
	if !rows.Exists() {
		return nil, errors.Schema("clinical", "samples")
	}

	var records []genomics.ClinicalRecord
	var parseErr error
	rows.ForEach(func(_, row gjson.Result) bool {
		id := row.Get("sample_id")
		if !id.Exists() {
			parseErr = errors.Schema("clinical", "sample_id")
			return false
		}
		rec := genomics.ClinicalRecord{
			SampleID:     core.NormalizeSampleID(id.String()),
			SurvivalDays: row.Get("survival_days").Float(),
			Deceased:     row.Get("deceased").Bool(),
		}
		row.ForEach(func(key, value gjson.Result) bool {
			switch key.String() {
			case "sample_id", "survival_days", "deceased":
			default:
				if rec.Covariates == nil {
					rec.Covariates = make(map[string]interface{})
				}
				rec.Covariates[key.String()] = value.Value()
			}
			return true
		})
		records = append(records, rec)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return records, nil
}

// FetchMutations retrieves the somatic mutation table for a cohort.
func (r *Reader) FetchMutations(ctx context.Context, cohort string) ([]genomics.MutationRecord, error) {
	body, err := r.get(ctx, cohort, "mutations")
	if err != nil {
		return nil, errors.Retrieval(cohort, "mutations", err)
	}

	rows := gjson.GetBytes(body, "mutations")
	if !rows.Exists() {
		return nil, errors.Schema("mutations", "mutations")
	}

	var records []genomics.MutationRecord
	rows.ForEach(func(_, row gjson.Result) bool {
		records = append(records, genomics.MutationRecord{
			SampleID: core.NormalizeSampleID(row.Get("sample_id").String()),
			Gene:     row.Get("gene").String(),
			Effect:   row.Get("effect").String(),
			AAChange: row.Get("aa_change").String(),
		})
		return true
	})
	return records, nil
}

// FetchExpression retrieves the genes-by-samples expression matrix.
func (r *Reader) FetchExpression(ctx context.Context, cohort string) (*genomics.GeneMatrix, error) {
	body, err := r.get(ctx, cohort, "expression")
	if err != nil {
		return nil, errors.Retrieval(cohort, "expression", err)
	}
	return parseGeneMatrix(body, "expression")
}

// FetchCopyNumber retrieves the genes-by-samples copy-number matrix.
func (r *Reader) FetchCopyNumber(ctx context.Context, cohort string) (*genomics.GeneMatrix, error) {
	body, err := r.get(ctx, cohort, "copy_number")
	if err != nil {
		return nil, errors.Retrieval(cohort, "copy_number", err)
	}
	return parseGeneMatrix(body, "copy_number")
}

func parseGeneMatrix(body []byte, table string) (*genomics.GeneMatrix, error) {
	for _, field := range []string{"genes", "samples", "values"} {
		if !gjson.GetBytes(body, field).Exists() {
			return nil, errors.Schema(table, field)
		}
	}

	matrix := &genomics.GeneMatrix{}
	for _, g := range gjson.GetBytes(body, "genes").Array() {
		matrix.Genes = append(matrix.Genes, g.String())
	}
	for _, s := range gjson.GetBytes(body, "samples").Array() {
		matrix.Samples = append(matrix.Samples, core.NormalizeSampleID(s.String()))
	}
	for _, row := range gjson.GetBytes(body, "values").Array() {
		vals := make([]float64, 0, len(matrix.Samples))
		for _, v := range row.Array() {
			vals = append(vals, v.Float())
		}
		matrix.Values = append(matrix.Values, vals)
	}

	if len(matrix.Values) != len(matrix.Genes) {
		return nil, errors.Schema(table, "values")
	}
	return matrix, nil
}

// get performs one rate-limited request and returns the response body. The
// connection is scoped to the call; nothing is pooled across cohorts.
func (r *Reader) get(ctx context.Context, cohort, table string) ([]byte, error) {
	if err := r.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/cohorts/%s/%s", r.config.BaseURL, cohort, table)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.config.APIKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", core.ErrCohortNotFound, cohort)
	default:
		return nil, fmt.Errorf("data service returned status %d: %s", resp.StatusCode, string(body))
	}
}
