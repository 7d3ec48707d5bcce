package workflow

import (
	"encoding/json"
	"slices"
)

// Action is the next step the decision engine asks the runner to take.
type Action string

// Workflow actions.
const (
	ActionAnalyzeProduct     Action = "ANALYZE_PRODUCT"
	ActionRequestUserInput   Action = "REQUEST_USER_INPUT"
	ActionRefineProduct      Action = "REFINE_PRODUCT"
	ActionIdentifyCandidates Action = "IDENTIFY_CANDIDATES"
	ActionFetchLegalSources  Action = "FETCH_LEGAL_SOURCES"
	ActionSearchPrecedents   Action = "SEARCH_PRECEDENTS"
	ActionClassify           Action = "CLASSIFY"
	ActionValidate           Action = "VALIDATE"
	ActionCheckRegulatory    Action = "CHECK_REGULATORY"
	ActionResolveConflict    Action = "RESOLVE_CONFLICT"
	ActionFinalize           Action = "FINALIZE"
	ActionEscalate           Action = "ESCALATE"
)

var actions = []Action{
	ActionAnalyzeProduct,
	ActionRequestUserInput,
	ActionRefineProduct,
	ActionIdentifyCandidates,
	ActionFetchLegalSources,
	ActionSearchPrecedents,
	ActionClassify,
	ActionValidate,
	ActionCheckRegulatory,
	ActionResolveConflict,
	ActionFinalize,
	ActionEscalate,
}

// Actions returns every known action.
func Actions() []Action {
	return slices.Clone(actions)
}

// IsTerminal reports whether the action ends the conversation.
func (a Action) IsTerminal() bool {
	return a == ActionFinalize || a == ActionEscalate
}

// ParseAction validates a string as a known action.
func ParseAction(s string) (Action, error) {
	v := Action(s)
	if !slices.Contains(actions, v) {
		return "", ErrInvalidAction
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known action.
func (a *Action) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseAction(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Agent names a collaborating specialist.
type Agent string

// Collaborating agents.
const (
	AgentProductAnalyst      Agent = "product_analyst"
	AgentLegalResearcher     Agent = "legal_researcher"
	AgentPrecedentResearcher Agent = "precedent_researcher"
	AgentClassifier          Agent = "classification_agent"
	AgentQualityValidator    Agent = "quality_validator"
	AgentRegulatoryChecker   Agent = "regulatory_checker"
)

var agents = []Agent{
	AgentProductAnalyst,
	AgentLegalResearcher,
	AgentPrecedentResearcher,
	AgentClassifier,
	AgentQualityValidator,
	AgentRegulatoryChecker,
}

// Agents returns every known agent.
func Agents() []Agent {
	return slices.Clone(agents)
}

// ParseAgent validates a string as a known agent.
func ParseAgent(s string) (Agent, error) {
	v := Agent(s)
	if !slices.Contains(agents, v) {
		return "", ErrInvalidAgent
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known agent or empty.
func (a *Agent) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*a = ""
		return nil
	}
	v, err := ParseAgent(raw)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Stage names the pipeline stage that produced a decision.
type Stage string

// Pipeline stages in precedence order.
const (
	StageTermination          Stage = "termination"
	StageProductUnderstanding Stage = "product_understanding"
	StageLegalResearch        Stage = "legal_research"
	StagePrecedentSearch      Stage = "precedent_search"
	StageClassification       Stage = "classification"
	StageValidation           Stage = "validation"
	StageSelfHealing          Stage = "self_healing"
	StageRegulatory           Stage = "regulatory"
	StageConfidenceBoost      Stage = "confidence_boost"
	StageFinalization         Stage = "finalization"
)

var stages = []Stage{
	StageTermination,
	StageProductUnderstanding,
	StageLegalResearch,
	StagePrecedentSearch,
	StageClassification,
	StageValidation,
	StageSelfHealing,
	StageRegulatory,
	StageConfidenceBoost,
	StageFinalization,
}

// ParseStage validates a string as a known stage.
func ParseStage(s string) (Stage, error) {
	v := Stage(s)
	if !slices.Contains(stages, v) {
		return "", ErrInvalidStage
	}
	return v, nil
}

// UnmarshalJSON validates that the decoded string is a known stage.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Stable keys of Decision.SpecificRequest.
const (
	KeyProductName       = "product_name"
	KeyProductProfile    = "product_profile"
	KeyCandidateHeadings = "candidate_headings"
	KeyLegalResearch     = "legal_research"
	KeyPrecedents        = "precedents"
	KeyGIRDecision       = "gir_decision"
	KeyCode              = "code"
	KeyFocus             = "focus"
	KeyMissingFields     = "missing_fields"
	KeyRestartFrom       = "restart_from"
	KeyExcludeHeading    = "exclude_heading"
	KeyRespectNote       = "respect_note"
	KeyConflictingCase   = "conflicting_case"
	KeyCurrentDecision   = "current_decision"
	KeyConflicts         = "conflicts"
	KeyDeepSearch        = "deep_search"
	KeyFeedback          = "feedback"
	KeyIssueType         = "issue_type"
	KeyDepth             = "depth"
)

// Request is the structured payload handed to the target agent.
type Request map[string]any

// String returns the string value of key, or "".
func (r Request) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Decision is the decision engine's output for one round.
type Decision struct {
	Action          Action   `json:"action"`
	Agent           Agent    `json:"agent,omitempty"`
	Reason          string   `json:"reason"`
	Stage           Stage    `json:"stage"`
	SpecificRequest Request  `json:"specific_request,omitempty"`
	Questions       []string `json:"questions,omitempty"`
	ConfidenceNote  string   `json:"confidence_note,omitempty"`
}

// SelfHealing reports whether the decision is a self-healing action.
func (d Decision) SelfHealing() bool {
	return d.Stage == StageSelfHealing
}
