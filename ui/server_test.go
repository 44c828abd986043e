package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igordot/SuMu/adapters/glm"
	"github.com/igordot/SuMu/app"
	"github.com/igordot/SuMu/internal/config"
	"github.com/igordot/SuMu/internal/testkit"
	"github.com/igordot/SuMu/ports"
)

func testServerHandler(t *testing.T) http.Handler {
	t.Helper()

	gen := testkit.NewCohortGenerator(testkit.DefaultGeneratorConfig())
	loader := &testkit.FakeLoader{Snapshot: gen.Generate("synthetic")}

	cfg := &config.Config{
		Analysis: config.AnalysisConfig{
			JoinPolicy:  "left",
			CellPolicy:  "presence",
			OutcomeDays: 365,
		},
		Server: config.ServerConfig{Port: "0"},
	}

	server := NewServer(
		app.NewCohortService(loader, nil, nil),
		app.NewSummarizer(nil, nil),
		map[string]ports.ModelFitter{"glm": glm.NewLogistic()},
		cfg,
		nil,
	)
	return server.Router()
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	testServerHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCohortSummary(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cohorts/synthetic/summary", nil)
	rec := httptest.NewRecorder()
	testServerHandler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "synthetic", body["cohort"])
	assert.Greater(t, body["samples"].(float64), 0.0)
	assert.Greater(t, body["mutations"].(float64), 0.0)
	assert.Greater(t, body["samples_mutated"].(float64), 0.0)

	// top mutated genes have expression rows in the generated cohort, so
	// the summary carries their distribution profiles
	profiles, ok := body["expression"].([]interface{})
	require.True(t, ok, "expression profiles missing: %v", body)
	require.NotEmpty(t, profiles)
	first := profiles[0].(map[string]interface{})
	assert.NotEmpty(t, first["gene"])
	assert.Greater(t, first["n"].(float64), 0.0)
}

func TestFitEndpoint(t *testing.T) {
	payload := `{"backend":"glm","rule":"gene"}`
	req := httptest.NewRequest(http.MethodPost, "/cohorts/synthetic/fit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	testServerHandler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		RunID   string           `json:"run_id"`
		Formula string           `json:"formula"`
		AUC     float64          `json:"auc"`
		Summary []app.SummaryRow `json:"summary"`
		N       int              `json:"n"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.NotEmpty(t, body.RunID)
	assert.Contains(t, body.Formula, "BRAF")
	assert.NotEmpty(t, body.Summary)
	assert.Greater(t, body.N, 0)
	assert.GreaterOrEqual(t, body.AUC, 0.0)
	assert.LessOrEqual(t, body.AUC, 1.0)
	for i, row := range body.Summary {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestFitEndpoint_UnknownBackend(t *testing.T) {
	payload := `{"backend":"rstanarm"}`
	req := httptest.NewRequest(http.MethodPost, "/cohorts/synthetic/fit", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	testServerHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKaplanMeierEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cohorts/synthetic/km?gene=BRAF", nil)
	rec := httptest.NewRecorder()
	testServerHandler(t).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "mutant")
	assert.Contains(t, body, "wild_type")
	assert.Contains(t, body, "log_rank")
}

func TestKaplanMeierEndpoint_MissingGene(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/cohorts/synthetic/km", nil)
	rec := httptest.NewRecorder()
	testServerHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
