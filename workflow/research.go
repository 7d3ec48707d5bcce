package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LegalResearch holds the legal texts gathered for the candidate headings.
type LegalResearch struct {
	ENDocuments     []LegalDocument `json:"en_documents,omitempty"`
	LegalNotes      []LegalNote     `json:"legal_notes,omitempty"`
	VerifiedSources []Source        `json:"verified_sources,omitempty"`
}

// LegalDocument is an explanatory note for a heading.
type LegalDocument struct {
	Heading string `json:"heading"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text"`
}

// LegalNote is a section or chapter note.
type LegalNote struct {
	Type      string `json:"type"`
	Reference string `json:"reference,omitempty"`
	Text      string `json:"text"`
}

// IsSectionNote reports whether the note is a section-level note.
func (n LegalNote) IsSectionNote() bool {
	return strings.Contains(strings.ToLower(n.Type), "section")
}

// Source is a verified reference consulted during research.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Merge appends the contents of other, skipping notes and documents already present.
func (r *LegalResearch) Merge(other *LegalResearch) {
	if other == nil {
		return
	}
	for _, d := range other.ENDocuments {
		if !containsDocument(r.ENDocuments, d) {
			r.ENDocuments = append(r.ENDocuments, d)
		}
	}
	for _, n := range other.LegalNotes {
		if !containsNote(r.LegalNotes, n) {
			r.LegalNotes = append(r.LegalNotes, n)
		}
	}
	for _, s := range other.VerifiedSources {
		if !containsSource(r.VerifiedSources, s) {
			r.VerifiedSources = append(r.VerifiedSources, s)
		}
	}
}

// DocumentsFor returns the explanatory notes whose heading shares the code's 4-digit heading.
func (r *LegalResearch) DocumentsFor(code string) []LegalDocument {
	heading := Heading(code)
	if heading == "" {
		return nil
	}
	var docs []LegalDocument
	for _, d := range r.ENDocuments {
		if Heading(d.Heading) == heading {
			docs = append(docs, d)
		}
	}
	return docs
}

func containsDocument(docs []LegalDocument, d LegalDocument) bool {
	for _, existing := range docs {
		if existing.Heading == d.Heading && existing.Text == d.Text {
			return true
		}
	}
	return false
}

func containsNote(notes []LegalNote, n LegalNote) bool {
	for _, existing := range notes {
		if existing.Reference == n.Reference && existing.Text == n.Text {
			return true
		}
	}
	return false
}

func containsSource(sources []Source, s Source) bool {
	for _, existing := range sources {
		if existing.URL == s.URL {
			return true
		}
	}
	return false
}

// Precedents holds prior classification rulings found for the product.
type Precedents struct {
	Cases     []PrecedentCase `json:"cases,omitempty"`
	Opinions  []PrecedentCase `json:"opinions,omitempty"`
	Consensus *Consensus      `json:"consensus,omitempty"`
}

// Total returns the number of rulings and opinions found.
func (p *Precedents) Total() int {
	return len(p.Cases) + len(p.Opinions)
}

// All returns rulings followed by opinions.
func (p *Precedents) All() []PrecedentCase {
	all := make([]PrecedentCase, 0, p.Total())
	all = append(all, p.Cases...)
	return append(all, p.Opinions...)
}

// SupportingCount returns the number of rulings supporting the classification:
// the consensus majority when analyzed, otherwise every ruling found.
func (p *Precedents) SupportingCount() int {
	if p.Consensus != nil {
		return len(p.Consensus.SupportingCases)
	}
	return p.Total()
}

// HasConflicts reports whether consensus analysis found dissenting rulings.
func (p *Precedents) HasConflicts() bool {
	return p.Consensus != nil && len(p.Consensus.ConflictingCases) > 0
}

// PrecedentCase is a single prior classification ruling.
type PrecedentCase struct {
	Reference          string `json:"reference"`
	ClassificationCode string `json:"classification_code"`
	Source             string `json:"source,omitempty"`
	CountryCode        string `json:"country_code,omitempty"`
	Date               Date   `json:"date"`
	Description        string `json:"description,omitempty"`
}

// Strength is the categorical tier of a precedent consensus.
type Strength string

// Consensus strength tiers.
const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
	StrengthNone     Strength = "none"
)

// Consensus summarizes agreement among precedent rulings.
type Consensus struct {
	HasConsensus     bool            `json:"has_consensus"`
	ConsensusCode    string          `json:"consensus_code,omitempty"`
	AgreementRate    float64         `json:"agreement_rate"`
	Strength         Strength        `json:"strength"`
	TargetMatch      bool            `json:"target_match"`
	SupportingCases  []PrecedentCase `json:"supporting_cases"`
	ConflictingCases []PrecedentCase `json:"conflicting_cases"`
	Analysis         string          `json:"analysis"`
}

// RegulatoryStatus records trade measures applicable to the decided code.
type RegulatoryStatus struct {
	Code     string   `json:"code"`
	Measures []string `json:"measures,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}

// Date is a calendar date that accepts YYYY-MM-DD, RFC 3339, or an empty string.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate returns the Date for a calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON encodes the date as YYYY-MM-DD, or an empty string when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}

// ParseDate parses YYYY-MM-DD or RFC 3339. Blank input is the zero Date.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return Date{t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// UnmarshalJSON decodes a date. Values that are not a parseable date string
// decode to the zero Date, the same as an undated ruling.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*d = Date{}
		return nil
	}
	v, err := ParseDate(raw)
	if err != nil {
		v = Date{}
	}
	*d = v
	return nil
}

// Digits strips a tariff code to its digits ("8471.30.01" becomes "84713001").
func Digits(code string) string {
	var sb strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Heading returns the 4-digit heading of a tariff code, or "" when too short.
func Heading(code string) string {
	d := Digits(code)
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// Chapter returns the 2-digit chapter of a tariff code, or "" when too short.
func Chapter(code string) string {
	d := Digits(code)
	if len(d) < 2 {
		return ""
	}
	return d[:2]
}
