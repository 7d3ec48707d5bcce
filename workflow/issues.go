package workflow

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// IssueType discriminates validation issue variants.
type IssueType string

// Known validation issue types.
const (
	IssueHierarchyViolation           IssueType = "gir_hierarchy_violation"
	IssueEssentialCharacterIncomplete IssueType = "essential_character_incomplete"
	IssueENContradiction              IssueType = "en_contradiction"
	IssuePrecedentConflict            IssueType = "precedent_conflict"
	IssueConfidenceBelowThreshold     IssueType = "confidence_below_threshold"
)

// Severity grades a validation issue. Values outside the known set are kept verbatim.
type Severity string

// Known severities.
const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Issue is a validation finding. The set of variants is closed; UnknownIssue
// carries any type this package does not recognize.
type Issue interface {
	Type() IssueType
	Severity() Severity
	Description() string
	issue()
}

// IssueBase carries the fields common to every issue variant.
type IssueBase struct {
	Level   Severity `json:"severity,omitempty"`
	Details string   `json:"description,omitempty"`
}

func (b IssueBase) Severity() Severity  { return b.Level }
func (b IssueBase) Description() string { return b.Details }
func (IssueBase) issue()                {}

// HierarchyViolation reports a rule applied before an earlier rule was exhausted.
type HierarchyViolation struct {
	IssueBase
	MissingState Rule `json:"missing_state,omitempty"`
}

func (HierarchyViolation) Type() IssueType { return IssueHierarchyViolation }

// EssentialCharacterIncomplete reports an essential-character decision without
// enough material information to support it.
type EssentialCharacterIncomplete struct {
	IssueBase
	Missing []string `json:"missing,omitempty"`
}

func (EssentialCharacterIncomplete) Type() IssueType { return IssueEssentialCharacterIncomplete }

// ENContradiction reports an explanatory note that excludes the decided heading.
type ENContradiction struct {
	IssueBase
	ConflictingHeading string `json:"conflicting_heading,omitempty"`
	NoteText           string `json:"note_text,omitempty"`
}

func (ENContradiction) Type() IssueType { return IssueENContradiction }

// PrecedentConflict reports a prior ruling that classifies the product elsewhere.
type PrecedentConflict struct {
	IssueBase
	ConflictingCase string `json:"conflicting_case,omitempty"`
	ConflictingCode string `json:"conflicting_code,omitempty"`
}

func (PrecedentConflict) Type() IssueType { return IssuePrecedentConflict }

// ConfidenceBelowThreshold reports a decision whose confidence is too low to stand.
type ConfidenceBelowThreshold struct {
	IssueBase
	Score float64 `json:"score,omitempty"`
}

func (ConfidenceBelowThreshold) Type() IssueType { return IssueConfidenceBelowThreshold }

// UnknownIssue preserves an issue of an unrecognized type.
type UnknownIssue struct {
	IssueBase
	Kind   IssueType      `json:"-"`
	Fields map[string]any `json:"-"`
}

func (u UnknownIssue) Type() IssueType { return u.Kind }

// Issues is an ordered list of validation issues encoded as a tagged union on "type".
type Issues []Issue

// Present returns the issues without nil entries.
func (is Issues) Present() Issues {
	if !slices.ContainsFunc(is, func(i Issue) bool { return i == nil }) {
		return is
	}
	out := make(Issues, 0, len(is))
	for _, i := range is {
		if i != nil {
			out = append(out, i)
		}
	}
	return out
}

// MarshalJSON writes each issue with its "type" discriminator. Nil entries are skipped.
func (is Issues) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(is))
	for _, i := range is.Present() {
		data, err := marshalIssue(i)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes each element by its "type" discriminator.
func (is *Issues) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIssue, err)
	}

	result := make(Issues, 0, len(raws))
	for idx, raw := range raws {
		i, err := unmarshalIssue(raw)
		if err != nil {
			return fmt.Errorf("%w: issue %d: %w", ErrInvalidIssue, idx, err)
		}
		result = append(result, i)
	}
	*is = result
	return nil
}

func marshalIssue(i Issue) ([]byte, error) {
	var fields map[string]any

	if u, ok := i.(UnknownIssue); ok {
		fields = maps.Clone(u.Fields)
		if fields == nil {
			fields = make(map[string]any)
		}
		if u.Level != "" {
			fields["severity"] = u.Level
		}
		if u.Details != "" {
			fields["description"] = u.Details
		}
	} else {
		data, err := json.Marshal(i)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, err
		}
	}

	fields["type"] = i.Type()
	return json.Marshal(fields)
}

func unmarshalIssue(raw json.RawMessage) (Issue, error) {
	var head struct {
		Type IssueType `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case IssueHierarchyViolation:
		return decodeIssue[HierarchyViolation](raw)
	case IssueEssentialCharacterIncomplete:
		return decodeIssue[EssentialCharacterIncomplete](raw)
	case IssueENContradiction:
		return decodeIssue[ENContradiction](raw)
	case IssuePrecedentConflict:
		return decodeIssue[PrecedentConflict](raw)
	case IssueConfidenceBelowThreshold:
		return decodeIssue[ConfidenceBelowThreshold](raw)
	default:
		return decodeUnknown(head.Type, raw)
	}
}

func decodeIssue[T Issue](raw json.RawMessage) (Issue, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeUnknown(kind IssueType, raw json.RawMessage) (Issue, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	u := UnknownIssue{Kind: kind}
	if s, ok := fields["severity"].(string); ok {
		u.Level = Severity(s)
	}
	if s, ok := fields["description"].(string); ok {
		u.Details = s
	}
	delete(fields, "type")
	delete(fields, "severity")
	delete(fields, "description")
	if len(fields) > 0 {
		u.Fields = fields
	}
	return u, nil
}

// ValidationResult is the quality validator's verdict on the current decision.
type ValidationResult struct {
	Passed bool     `json:"passed"`
	Score  *float64 `json:"score,omitempty"`
	Issues Issues   `json:"issues"`
}
