package textproc

import (
	"regexp"
	"strings"

	"github.com/fmchealth/insuragent/internal/model"
)

// entityRule is one fixed extraction pattern
type entityRule struct {
	name        string
	pattern     *regexp.Regexp
	entityType  string
	specificity float64
}

// Extractor performs pattern-based extraction of medical entities from
// normalized text. Pure and deterministic, no external calls.
type Extractor struct {
	rules []entityRule
}

// NewExtractor creates an extractor with the fixed domain pattern table
func NewExtractor() *Extractor {
	return &Extractor{
		rules: []entityRule{
			{
				name:        "hepatitis",
				pattern:     regexp.MustCompile(`hepatitis\s+[a-z]`),
				entityType:  model.EntityTypeDiagnosis,
				specificity: 0.9,
			},
			{
				name:        "vitamin",
				pattern:     regexp.MustCompile(`vitamin\s+[a-z0-9]+`),
				entityType:  model.EntityTypeSupplement,
				specificity: 0.8,
			},
			{
				name:        "mineral",
				pattern:     regexp.MustCompile(`\b(zinc|iron|calcium|magnesium|selenium)\b`),
				entityType:  model.EntityTypeSupplement,
				specificity: 0.7,
			},
		},
	}
}

// Extract returns every non-overlapping pattern match in the text as a
// MedicalEntity. The input is normalized first; the returned order follows
// the pattern table, then match position.
func (e *Extractor) Extract(text string) []model.MedicalEntity {
	norm := Normalize(text)

	var entities []model.MedicalEntity
	for _, rule := range e.rules {
		for _, term := range rule.pattern.FindAllString(norm, -1) {
			term = strings.ToLower(term)
			entities = append(entities, model.MedicalEntity{
				Original:         term,
				Normalized:       term,
				Components:       strings.Fields(term),
				EntityType:       rule.entityType,
				SpecificityScore: rule.specificity,
			})
		}
	}
	return entities
}
