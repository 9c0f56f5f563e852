package textproc

import (
	"strings"

	"github.com/fmchealth/insuragent/internal/model"
)

// Matcher scores similarity between two medical entities
type Matcher struct{}

// NewMatcher creates a matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Similarity computes Jaccard similarity over entity component token
// sets. When the second entity has fewer tokens and its normalized form
// is contained in the first's, the raw score is multiplied by 0.7 to
// penalize matching a broad term against a narrower contained one, so
// the function is deliberately NOT commutative:
// Similarity("vitamin d deficiency", "vitamin d") != Similarity("vitamin d", "vitamin d deficiency").
func (m *Matcher) Similarity(e1, e2 model.MedicalEntity) float64 {
	c1 := tokenSet(e1.Components)
	c2 := tokenSet(e2.Components)

	intersect := 0
	for tok := range c2 {
		if _, ok := c1[tok]; ok {
			intersect++
		}
	}
	union := len(c1) + len(c2) - intersect
	if union == 0 {
		return 0
	}

	score := float64(intersect) / float64(union)
	if len(c2) < len(c1) && strings.Contains(e1.Normalized, e2.Normalized) {
		score *= 0.7
	}
	return score
}

func tokenSet(components []string) map[string]struct{} {
	set := make(map[string]struct{}, len(components))
	for _, c := range components {
		set[c] = struct{}{}
	}
	return set
}
