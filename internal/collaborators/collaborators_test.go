package collaborators_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/tariff/internal/collaborators"
	"github.com/JaimeStill/tariff/internal/config"
	"github.com/JaimeStill/tariff/internal/prompts"
	"github.com/JaimeStill/tariff/workflow"
)

type defaultPrompts struct{}

func (defaultPrompts) Instructions(_ context.Context, agent workflow.Agent) (string, error) {
	return prompts.Instructions(agent)
}

func (defaultPrompts) Spec(_ context.Context, agent workflow.Agent) (string, error) {
	return prompts.Spec(agent)
}

type captured struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func fakeCompletions(t *testing.T, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystem(t *testing.T, baseURL string) collaborators.System {
	t.Helper()
	temp := float32(0)
	cfg := &config.AgentConfig{
		Provider:    config.ProviderOpenAI,
		BaseURL:     baseURL,
		Model:       "test-model",
		Timeout:     "5s",
		Temperature: &temp,
		MaxTokens:   512,
	}
	sys, err := collaborators.New(cfg, defaultPrompts{}, discard())
	require.NoError(t, err)
	return sys
}

func TestExecuteAnalyzeProduct(t *testing.T) {
	var got captured
	srv := fakeCompletions(t, `{"product_profile":{"name":"Laptop","primary_function":"data processing"},"readiness":72}`, &got)

	state := workflow.NewConversation("14 inch laptop computer", 10)
	d := workflow.Decision{
		Action: workflow.ActionAnalyzeProduct,
		Agent:  workflow.AgentProductAnalyst,
		Reason: "no product profile yet",
		Stage:  workflow.StageProductUnderstanding,
	}

	out, err := newSystem(t, srv.URL).Execute(context.Background(), d, state)
	require.NoError(t, err)

	require.NotNil(t, out.ProductProfile)
	assert.Equal(t, "Laptop", out.ProductProfile.Name)
	require.NotNil(t, out.ProductReadiness)
	assert.Equal(t, 72, *out.ProductReadiness)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "customs product analyst")
	assert.Contains(t, got.Messages[1].Content, "Task: ANALYZE_PRODUCT")
	assert.Contains(t, got.Messages[1].Content, "14 inch laptop computer")
}

func TestExecuteClassifyFromFencedReply(t *testing.T) {
	reply := "Here is my decision:\n```json\n{\"gir_decision\":{\"applied_gir\":\"GIR 1\",\"code\":\"8471.30\",\"confidence\":0.9}}\n```"
	srv := fakeCompletions(t, reply, nil)

	d := workflow.Decision{Action: workflow.ActionClassify, Agent: workflow.AgentClassifier, Stage: workflow.StageClassification}
	out, err := newSystem(t, srv.URL).Execute(context.Background(), d, workflow.NewConversation("laptop", 10))
	require.NoError(t, err)

	require.NotNil(t, out.GIRDecision)
	assert.Equal(t, workflow.GIR1, out.GIRDecision.Rule)
	assert.Equal(t, "8471.30", out.GIRDecision.Code)
}

func TestExecuteRejectsNonExecutable(t *testing.T) {
	sys := newSystem(t, "http://127.0.0.1:1")

	for _, action := range []workflow.Action{
		workflow.ActionRequestUserInput,
		workflow.ActionFinalize,
		workflow.ActionEscalate,
	} {
		_, err := sys.Execute(context.Background(), workflow.Decision{Action: action}, workflow.ConversationState{})
		assert.ErrorIs(t, err, collaborators.ErrNotExecutable, action)
	}
}

func TestExecuteRequiresAgent(t *testing.T) {
	sys := newSystem(t, "http://127.0.0.1:1")
	_, err := sys.Execute(context.Background(), workflow.Decision{Action: workflow.ActionValidate}, workflow.ConversationState{})
	assert.ErrorIs(t, err, collaborators.ErrNoAgent)
}

func TestExecuteCallFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	d := workflow.Decision{Action: workflow.ActionSearchPrecedents, Agent: workflow.AgentPrecedentResearcher}
	_, err := newSystem(t, srv.URL).Execute(context.Background(), d, workflow.ConversationState{})
	assert.ErrorIs(t, err, collaborators.ErrCallFailed)
	assert.Equal(t, http.StatusBadGateway, collaborators.MapHTTPStatus(err))
}

func TestParseReply(t *testing.T) {
	decided := workflow.NewConversation("office chair", 10)
	decided.CurrentState.GIRDecision = &workflow.RuleDecision{Rule: workflow.GIR1, Code: "9401.30"}

	t.Run("candidates are reduced to distinct headings", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionIdentifyCandidates}
		out, err := collaborators.ParseReply(d, &decided, `{"candidate_headings":["9401.30","9401","94","9403.20.00"]}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"9401", "9403"}, out.CandidateHeadings)
	})

	t.Run("missing candidates is incomplete", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionIdentifyCandidates}
		_, err := collaborators.ParseReply(d, &decided, `{"candidate_headings":[]}`)
		assert.ErrorIs(t, err, collaborators.ErrIncompleteReply)
	})

	t.Run("precedent consensus from the agent is discarded", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionSearchPrecedents}
		out, err := collaborators.ParseReply(d, &decided,
			`{"cases":[{"reference":"NY N123","classification_code":"9401.30","date":"2024-05-01"}],"consensus":{"has_consensus":true}}`)
		require.NoError(t, err)
		require.NotNil(t, out.Precedents)
		assert.Len(t, out.Precedents.Cases, 1)
		assert.Nil(t, out.Precedents.Consensus)
	})

	t.Run("unparseable ruling dates are treated as undated", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionSearchPrecedents}
		out, err := collaborators.ParseReply(d, &decided,
			`{"cases":[{"reference":"NY N456","classification_code":"9401.30","date":"March 2021"}]}`)
		require.NoError(t, err)
		require.Len(t, out.Precedents.Cases, 1)
		assert.True(t, out.Precedents.Cases[0].Date.IsZero())
	})

	t.Run("validation issues decode by type", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionValidate}
		out, err := collaborators.ParseReply(d, &decided,
			`{"passed":false,"issues":[{"type":"gir_hierarchy_violation","severity":"major","missing_state":"GIR1"}]}`)
		require.NoError(t, err)
		require.NotNil(t, out.ValidationResult)
		require.Len(t, out.ValidationResult.Issues, 1)
		assert.Equal(t, workflow.IssueHierarchyViolation, out.ValidationResult.Issues[0].Type())
	})

	t.Run("regulatory code defaults to the decided code", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionCheckRegulatory}
		out, err := collaborators.ParseReply(d, &decided, `{"measures":["CE marking"]}`)
		require.NoError(t, err)
		assert.Equal(t, "9401.30", out.RegulatoryStatus.Code)
	})

	t.Run("prose is a parse failure", func(t *testing.T) {
		d := workflow.Decision{Action: workflow.ActionFetchLegalSources}
		_, err := collaborators.ParseReply(d, &decided, "I could not find anything.")
		assert.Error(t, err)
	})
}

func TestComposePrompt(t *testing.T) {
	state := workflow.NewConversation("steel bolt", 10)
	d := workflow.Decision{
		Action:          workflow.ActionFetchLegalSources,
		Agent:           workflow.AgentLegalResearcher,
		Reason:          "no legal research",
		SpecificRequest: workflow.Request{workflow.KeyCandidateHeadings: []string{"7318"}},
	}

	p, err := collaborators.ComposePrompt(context.Background(), defaultPrompts{}, d, &state)
	require.NoError(t, err)

	spec, _ := prompts.Spec(workflow.AgentLegalResearcher)
	assert.Contains(t, p.System, spec)
	assert.Contains(t, p.User, "Reason: no legal research")
	assert.Contains(t, p.User, `"candidate_headings"`)
	assert.Contains(t, p.User, "steel bolt")

	_, err = collaborators.ComposePrompt(context.Background(), defaultPrompts{}, workflow.Decision{Agent: "nobody"}, nil)
	assert.ErrorIs(t, err, prompts.ErrInvalidAgent)
}

func TestAgentClientProvider(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	temp := float32(0)
	cfg := &config.AgentConfig{
		Name:        "tariff-test",
		Provider:    config.ProviderOllama,
		BaseURL:     baseURL,
		Model:       "llama3.1:8b",
		Timeout:     "5s",
		Temperature: &temp,
		MaxTokens:   256,
	}
	sys, err := collaborators.New(cfg, defaultPrompts{}, discard())
	require.NoError(t, err)

	d := workflow.Decision{Action: workflow.ActionAnalyzeProduct, Agent: workflow.AgentProductAnalyst, Stage: workflow.StageProductUnderstanding}
	_, err = sys.Execute(context.Background(), d, workflow.NewConversation("laptop", 10))
	assert.ErrorIs(t, err, collaborators.ErrCallFailed)
	assert.Equal(t, http.StatusBadGateway, collaborators.MapHTTPStatus(err))
}
