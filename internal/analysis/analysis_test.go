package analysis_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/tariff/internal/analysis"
	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/engine"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/internal/precedents"
	"github.com/JaimeStill/tariff/workflow"
)

func setupMux(t *testing.T) *http.ServeMux {
	t.Helper()
	h := analysis.NewHandler(
		analysis.New(lookup.MustDefault()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func post(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", path, &buf))
	return rec
}

func TestDecideEmptyState(t *testing.T) {
	mux := setupMux(t)

	rec := post(t, mux, "/analysis/decide", workflow.NewConversation("wooden office desk", 10))
	require.Equal(t, http.StatusOK, rec.Code)

	var d workflow.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, workflow.ActionAnalyzeProduct, d.Action)
	assert.Equal(t, workflow.AgentProductAnalyst, d.Agent)
}

func TestDecideRejectsUnknownStatus(t *testing.T) {
	mux := setupMux(t)

	rec := post(t, mux, "/analysis/decide", `{"status":"paused","current_state":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTerminateRoundLimit(t *testing.T) {
	mux := setupMux(t)

	s := workflow.NewConversation("desk", 3)
	s.CurrentRound = 3

	rec := post(t, mux, "/analysis/terminate", s)
	require.Equal(t, http.StatusOK, rec.Code)

	var term engine.Termination
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&term))
	assert.True(t, term.Terminate)
	assert.Equal(t, workflow.StatusEscalated, term.Status)
}

func TestScoreAndFactors(t *testing.T) {
	mux := setupMux(t)
	s := workflow.NewConversation("desk", 10)

	rec := post(t, mux, "/analysis/score", s)
	require.Equal(t, http.StatusOK, rec.Code)

	var result confidence.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.GreaterOrEqual(t, result.Overall, 0)
	assert.LessOrEqual(t, result.Overall, 100)

	rec = post(t, mux, "/analysis/factors", s)
	require.Equal(t, http.StatusOK, rec.Code)

	var factors confidence.FactorAnalysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&factors))
	assert.NotEmpty(t, factors.WeakFactors)
}

func TestConsensus(t *testing.T) {
	mux := setupMux(t)

	rec := post(t, mux, "/analysis/consensus", analysis.ConsensusRequest{
		Target: "9403.30",
		Cases: []workflow.PrecedentCase{
			{Reference: "A", ClassificationCode: "9403.30"},
			{Reference: "B", ClassificationCode: "9403.30"},
			{Reference: "C", ClassificationCode: "9403.30"},
			{Reference: "D", ClassificationCode: "9401.61"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var c workflow.Consensus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.True(t, c.HasConsensus)
	assert.True(t, c.TargetMatch)
	assert.InDelta(t, 0.75, c.AgreementRate, 1e-9)
}

func TestRelevance(t *testing.T) {
	mux := setupMux(t)

	rec := post(t, mux, "/analysis/relevance", map[string]any{
		"target":      "9403.30",
		"description": "wooden office desk",
		"now":         "2026-01-01T00:00:00Z",
		"cases": []map[string]any{
			{"reference": "far", "classification_code": "7318.15"},
			{"reference": "exact", "classification_code": "9403.30", "description": "wooden office desk with drawers"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ranked []precedents.Scored
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "exact", ranked[0].Case.Reference)
	assert.Greater(t, ranked[0].Relevance, ranked[1].Relevance)

	rec = post(t, mux, "/analysis/relevance", map[string]any{"cases": []any{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLegalParseAndMatch(t *testing.T) {
	mux := setupMux(t)
	text := "This heading covers office furniture. The heading does not cover medical furniture such as operating tables."

	rec := post(t, mux, "/analysis/legal/parse", analysis.ParseRequest{Text: text})
	require.Equal(t, http.StatusOK, rec.Code)

	var parsed struct {
		Excludes []string `json:"excludes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&parsed))
	assert.Len(t, parsed.Excludes, 1)

	rec = post(t, mux, "/analysis/legal/match", analysis.MatchRequest{
		Description: "adjustable medical operating tables",
		Text:        text,
		Code:        "9402.90",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp analysis.MatchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Conflicts)
	require.Len(t, resp.Issues, 1)

	ec, ok := resp.Issues[0].(workflow.ENContradiction)
	require.True(t, ok)
	assert.Equal(t, "9402", ec.ConflictingHeading)

	rec = post(t, mux, "/analysis/legal/match", analysis.MatchRequest{Text: text})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchWithoutCodeRaisesNoIssues(t *testing.T) {
	a := analysis.New(lookup.MustDefault())
	resp := a.Match(analysis.MatchRequest{
		Description: "adjustable medical operating tables",
		Text:        "The heading does not cover medical furniture such as operating tables.",
	})
	assert.True(t, resp.HasConflicts())
	assert.Empty(t, resp.Issues)
}
