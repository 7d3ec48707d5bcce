package prompts

import "github.com/JaimeStill/tariff/workflow"

const productAnalystSpec = `Respond with a JSON object matching this exact structure:

{
  "product_profile": {
    "name": "<commercial name>",
    "description": "<one paragraph description>",
    "primary_function": "<what the product does>",
    "material_composition": "<free text, e.g. 60% aluminium, 40% ABS plastic>",
    "materials": [
      {"material": "<material>", "weight_percent": 60, "value_percent": null}
    ],
    "essential_character": "<component or material giving the product its identity>",
    "intended_use": "<intended use>",
    "industry_details": {"<detail name>": "<value>"}
  },
  "readiness": 75
}

Field constraints:
- readiness: Integer from 0 to 100 stating how ready the profile is for
  classification. Below 60 means critical information is still missing.
- Omit any field you cannot support from the description.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const legalResearcherSpec = `Respond with a JSON object matching this exact structure:

{
  "en_documents": [
    {"heading": "<4-digit heading>", "title": "<title>", "text": "<verbatim explanatory note text>"}
  ],
  "legal_notes": [
    {"type": "section_note | chapter_note", "reference": "<e.g. Section XVI Note 3>", "text": "<verbatim note text>"}
  ],
  "verified_sources": [
    {"url": "<source URL>", "title": "<source title>"}
  ]
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Quote legal text verbatim, including exclusion sentences
- Report only sources you actually relied on`

const precedentResearcherSpec = `Respond with a JSON object matching this exact structure:

{
  "cases": [
    {
      "reference": "<ruling reference>",
      "classification_code": "<code assigned by the ruling>",
      "source": "<issuing authority or database>",
      "country_code": "<ISO country code>",
      "date": "YYYY-MM-DD",
      "description": "<short description of the goods>"
    }
  ],
  "opinions": []
}

Field constraints:
- cases: Binding rulings and advance rulings.
- opinions: Classification opinions and committee decisions, same shape as cases.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Include rulings that disagree with the candidate headings`

const classifierSpec = `Respond with a JSON object matching this exact structure:

{
  "candidate_headings": ["<4-digit heading>"],
  "gir_decision": {
    "rule": "GIR1 | GIR2A | GIR2B | GIR3A | GIR3B | GIR3C | GIR4 | GIR5 | GIR6",
    "code": "<tariff code, at least 6 digits>",
    "confidence": 85,
    "audit_trail": ["<why each earlier rule did or did not resolve the classification>"],
    "rationale": "<explanation>"
  }
}

Field constraints:
- candidate_headings: Required when the request asks to identify candidates.
- gir_decision: Required when the request asks to classify; null otherwise.
- confidence: Self-assessed confidence from 0 to 100.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

const qualityValidatorSpec = `Respond with a JSON object matching this exact structure:

{
  "passed": true,
  "score": 90,
  "issues": [
    {
      "type": "gir_hierarchy_violation | essential_character_incomplete | en_contradiction | precedent_conflict | confidence_below_threshold",
      "severity": "critical | major | minor",
      "description": "<what is wrong>"
    }
  ]
}

Field constraints by issue type:
- gir_hierarchy_violation: add "missing_state" naming the rule that was skipped.
- essential_character_incomplete: add "missing" listing the missing material facts.
- en_contradiction: add "conflicting_heading" and "note_text".
- precedent_conflict: add "conflicting_case" and "conflicting_code".
- confidence_below_threshold: add "score".

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- passed must be false whenever a critical or major issue is reported`

const regulatoryCheckerSpec = `Respond with a JSON object matching this exact structure:

{
  "code": "<tariff code reviewed>",
  "measures": ["<measure>"],
  "notes": "<uncertain findings and context>"
}

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

var specs = map[workflow.Agent]string{
	workflow.AgentProductAnalyst:      productAnalystSpec,
	workflow.AgentLegalResearcher:     legalResearcherSpec,
	workflow.AgentPrecedentResearcher: precedentResearcherSpec,
	workflow.AgentClassifier:          classifierSpec,
	workflow.AgentQualityValidator:    qualityValidatorSpec,
	workflow.AgentRegulatoryChecker:   regulatoryCheckerSpec,
}

// Spec returns the response specification for an agent.
// Specifications are not overridable: collaborator replies are parsed against them.
func Spec(agent workflow.Agent) (string, error) {
	text, ok := specs[agent]
	if !ok {
		return "", ErrInvalidAgent
	}
	return text, nil
}
