package jobs

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/JaimeStill/tariff/pkg/query"
	"github.com/JaimeStill/tariff/pkg/repository"
	"github.com/JaimeStill/tariff/workflow"
)

var projection = query.
	NewProjectionMap("public", "jobs", "j").
	Project("id", "ID").
	Project("product_name", "ProductName").
	Project("description", "Description").
	Project("status", "Status").
	Project("current_round", "CurrentRound").
	Project("max_rounds", "MaxRounds").
	Project("self_healing_attempts", "SelfHealingAttempts").
	Project("overall_confidence", "OverallConfidence").
	Project("decided_code", "DecidedCode").
	Project("state", "State").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UpdatedAt",
	Descending: true,
}

var decisionProjection = query.
	NewProjectionMap("public", "decisions", "d").
	Project("id", "ID").
	Project("job_id", "JobID").
	Project("round", "Round").
	Project("result", "Result").
	Project("action", "Action").
	Project("agent", "Agent").
	Project("stage", "Stage").
	Project("reason", "Reason").
	Project("payload", "Decision").
	Project("confidence", "Confidence").
	Project("error", "Error").
	Project("decided_at", "DecidedAt")

var decisionSort = []query.SortField{
	{Field: "Round"},
	{Field: "DecidedAt"},
}

const returning = `RETURNING id, product_name, description, status, current_round, max_rounds,
		self_healing_attempts, overall_confidence, decided_code, state, created_at, updated_at`

// Filters contains optional filtering criteria for job queries.
// Nil fields are ignored. ProductName uses case-insensitive contains matching;
// the rest match exactly.
type Filters struct {
	Status      *workflow.Status `json:"status,omitempty"`
	ProductName *string          `json:"product_name,omitempty"`
	DecidedCode *string          `json:"decided_code,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("ProductName", f.ProductName).
		WhereEquals("DecidedCode", f.DecidedCode)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Unknown status values are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		if status, err := workflow.ParseStatus(s); err == nil {
			f.Status = &status
		}
	}

	if n := values.Get("product_name"); n != "" {
		f.ProductName = &n
	}

	if c := values.Get("decided_code"); c != "" {
		f.DecidedCode = &c
	}

	return f
}

// row flattens a conversation into the summary columns stored beside the state document.
type row struct {
	productName string
	decidedCode *string
	state       []byte
}

func flatten(s workflow.ConversationState) (row, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return row{}, fmt.Errorf("marshal state: %w", err)
	}

	r := row{
		productName: productName(&s.CurrentState),
		state:       data,
	}
	if code := s.CurrentState.DecidedCode(); code != "" {
		r.decidedCode = &code
	}
	return r, nil
}

const productNameLimit = 120

func productName(cur *workflow.CurrentState) string {
	name := []rune(cur.ProductName())
	if len(name) > productNameLimit {
		name = name[:productNameLimit]
	}
	return string(name)
}

func scanJob(s repository.Scanner) (Job, error) {
	var j Job
	var stateRaw []byte

	err := s.Scan(
		&j.ID,
		&j.ProductName,
		&j.Description,
		&j.Status,
		&j.CurrentRound,
		&j.MaxRounds,
		&j.SelfHealingAttempts,
		&j.OverallConfidence,
		&j.DecidedCode,
		&stateRaw,
		&j.CreatedAt,
		&j.UpdatedAt,
	)

	if err != nil {
		return j, err
	}

	if len(stateRaw) > 0 {
		if err := json.Unmarshal(stateRaw, &j.State); err != nil {
			return j, fmt.Errorf("unmarshal state: %w", err)
		}
	}

	return j, nil
}

func scanDecision(s repository.Scanner) (DecisionRecord, error) {
	var d DecisionRecord
	var payload []byte

	err := s.Scan(
		&d.ID,
		&d.JobID,
		&d.Round,
		&d.Result,
		&d.Action,
		&d.Agent,
		&d.Stage,
		&d.Reason,
		&payload,
		&d.Confidence,
		&d.Error,
		&d.DecidedAt,
	)

	if err != nil {
		return d, err
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &d.Decision); err != nil {
			return d, fmt.Errorf("unmarshal decision payload: %w", err)
		}
	}

	return d, nil
}
