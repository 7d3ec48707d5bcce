package workflow

import "strings"

// Product profile field names used for missing-field reporting and question lookup.
const (
	FieldName               = "name"
	FieldPrimaryFunction    = "primary_function"
	FieldMaterials          = "materials"
	FieldEssentialCharacter = "essential_character"
	FieldIndustryDetails    = "industry_details"
)

// ProductProfile is the structured understanding of the product being classified.
type ProductProfile struct {
	Name                string            `json:"name"`
	Description         string            `json:"description,omitempty"`
	PrimaryFunction     string            `json:"primary_function,omitempty"`
	MaterialComposition string            `json:"material_composition,omitempty"`
	Materials           []Material        `json:"materials,omitempty"`
	EssentialCharacter  string            `json:"essential_character,omitempty"`
	IntendedUse         string            `json:"intended_use,omitempty"`
	IndustryDetails     map[string]string `json:"industry_details,omitempty"`
}

// Material is one constituent of a product with optional share percentages.
type Material struct {
	Material      string   `json:"material"`
	WeightPercent *float64 `json:"weight_percent,omitempty"`
	ValuePercent  *float64 `json:"value_percent,omitempty"`
}

// MissingCritical returns the critical fields that are empty, in fixed order.
func (p *ProductProfile) MissingCritical() []string {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, FieldName)
	}
	if strings.TrimSpace(p.PrimaryFunction) == "" {
		missing = append(missing, FieldPrimaryFunction)
	}
	return missing
}

// MissingOptional returns the optional fields that are empty, in fixed order.
func (p *ProductProfile) MissingOptional() []string {
	var missing []string
	if strings.TrimSpace(p.MaterialComposition) == "" && len(p.Materials) == 0 {
		missing = append(missing, FieldMaterials)
	}
	if strings.TrimSpace(p.EssentialCharacter) == "" {
		missing = append(missing, FieldEssentialCharacter)
	}
	if len(p.IndustryDetails) == 0 {
		missing = append(missing, FieldIndustryDetails)
	}
	return missing
}

// HasPercentMarker reports whether the free-text composition states a percentage.
func (p *ProductProfile) HasPercentMarker() bool {
	return strings.Contains(p.MaterialComposition, "%")
}

// HasMaterialBreakdown reports whether material shares are known, either as
// a percentage in the free-text composition or as structured percentages.
func (p *ProductProfile) HasMaterialBreakdown() bool {
	if p.HasPercentMarker() {
		return true
	}
	for _, m := range p.Materials {
		if m.WeightPercent != nil || m.ValuePercent != nil {
			return true
		}
	}
	return false
}
