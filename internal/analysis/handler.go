package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/tariff/pkg/handlers"
	"github.com/JaimeStill/tariff/pkg/routes"
	"github.com/JaimeStill/tariff/workflow"
)

// Handler provides the stateless analysis endpoints.
type Handler struct {
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewHandler creates a Handler over the given analyzer.
func NewHandler(analyzer *Analyzer, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger.With("handler", "analysis"),
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analysis",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/decide", Handler: h.Decide},
			{Method: "POST", Pattern: "/terminate", Handler: h.Terminate},
			{Method: "POST", Pattern: "/score", Handler: h.Score},
			{Method: "POST", Pattern: "/factors", Handler: h.Factors},
			{Method: "POST", Pattern: "/consensus", Handler: h.Consensus},
			{Method: "POST", Pattern: "/relevance", Handler: h.Relevance},
			{Method: "POST", Pattern: "/legal/parse", Handler: h.Parse},
			{Method: "POST", Pattern: "/legal/match", Handler: h.Match},
		},
	}
}

// Decide returns the next decision for a ConversationState body.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	s, ok := decode[workflow.ConversationState](w, r, h.logger)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Decide(s))
}

// Terminate reports whether a ConversationState body should stop.
func (h *Handler) Terminate(w http.ResponseWriter, r *http.Request) {
	s, ok := decode[workflow.ConversationState](w, r, h.logger)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Terminate(s))
}

// Score returns the confidence breakdown of a ConversationState body.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	s, ok := decode[workflow.ConversationState](w, r, h.logger)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Score(s))
}

// Factors returns the confidence breakdown with weak factors and recommendations.
func (h *Handler) Factors(w http.ResponseWriter, r *http.Request) {
	s, ok := decode[workflow.ConversationState](w, r, h.logger)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Factors(s))
}

// Consensus measures agreement among the precedent cases of a ConsensusRequest body.
func (h *Handler) Consensus(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ConsensusRequest](w, r, h.logger)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Consensus(req))
}

// Relevance ranks the precedent cases of a RelevanceRequest body.
func (h *Handler) Relevance(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[RelevanceRequest](w, r, h.logger)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Target) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: target is required", ErrInvalidRequest))
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Relevance(req))
}

// Parse categorizes the sentences of a ParseRequest body.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[ParseRequest](w, r, h.logger)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Parse(req))
}

// Match checks a product description against the legal text of a MatchRequest body.
func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[MatchRequest](w, r, h.logger)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: description is required", ErrInvalidRequest))
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.analyzer.Match(req))
}

func decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		handlers.RespondError(w, logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return v, false
	}
	return v, true
}
