package model

// MedicalEntity is a normalized medical term extracted from text via
// fixed patterns. Created only by extraction and never mutated after.
type MedicalEntity struct {
	Original         string   `json:"original"`
	Normalized       string   `json:"normalized"`
	Components       []string `json:"components"`
	EntityType       string   `json:"entity_type"`
	SpecificityScore float64  `json:"specificity_score"`
}

// EntityType values produced by the extractor pattern table
const (
	EntityTypeDiagnosis  = "diagnosis"
	EntityTypeSupplement = "supplement"
)

// PolicyClause is a parsed policy sentence: entities the clause excludes
// and entities carved out by "except/excluding/but not/other than" spans.
// A term appearing in both an exception span and the remainder shows up
// once in each list; matching checks exceptions first so they win.
type PolicyClause struct {
	ExcludedEntities  []MedicalEntity `json:"excluded_entities"`
	ExceptionEntities []MedicalEntity `json:"exception_entities"`
	OriginalText      string          `json:"original_text"`
	ClauseType        string          `json:"clause_type"`
}
