package rules

import "strings"

// brandReplacements maps frequent brand-name typos to canonical names.
// Used only to improve retrieval, never to change the recorded value.
var brandReplacements = []struct {
	wrong string
	right string
}{
	{"penadol", "panadol"},
}

// NormalizePharmacyBrand lowercases a pharmacy value and fixes common
// brand misspellings. Decisions stay retrieval/LLM-driven; this only
// improves the search query.
func NormalizePharmacyBrand(value string) string {
	lowered := strings.ToLower(value)
	for _, r := range brandReplacements {
		if strings.Contains(lowered, r.wrong) {
			lowered = strings.ReplaceAll(lowered, r.wrong, r.right)
		}
	}
	return lowered
}

// boostTerms are brand/strength keywords that force clause selection
// during retrieval reranking when present in both query and clause.
var boostTerms = []string{"panadol", "penadol", "adol", "procid", "20 mg", "40 mg"}

// RetrievalBoostTerms returns the canonical brand/strength keywords
// present in the query, for deterministic rerank override.
func RetrievalBoostTerms(query string) []string {
	lowered := strings.ToLower(query)
	var terms []string
	for _, term := range boostTerms {
		if strings.Contains(lowered, term) {
			if term == "penadol" {
				term = "panadol"
			}
			terms = append(terms, term)
		}
	}
	return terms
}
