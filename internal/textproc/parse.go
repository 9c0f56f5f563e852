package textproc

import (
	"regexp"
	"strings"

	"github.com/fmchealth/insuragent/internal/model"
)

// Connector patterns that introduce exception spans inside a clause
var exceptionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`except\s+(.+?)(?:[;,.]|$)`),
	regexp.MustCompile(`excluding\s+(.+?)(?:[;,.]|$)`),
	regexp.MustCompile(`but\s+not\s+(.+?)(?:[;,.]|$)`),
	regexp.MustCompile(`other\s+than\s+(.+?)(?:[;,.]|$)`),
}

// listSplitRe splits enumerations inside a clause span
var listSplitRe = regexp.MustCompile(`,|or|and`)

// ClauseParser splits a policy clause into excluded entities and
// exception entities carved out by connector phrases.
type ClauseParser struct {
	extractor *Extractor
}

// NewClauseParser creates a parser backed by the given extractor
func NewClauseParser(extractor *Extractor) *ClauseParser {
	return &ClauseParser{extractor: extractor}
}

// Parse normalizes the clause, pulls every "except X"-style span into the
// exception list, then extracts excluded entities from the remainder.
// A term present in both an exception span and the remainder is kept in
// both lists; callers must check exceptions before exclusions.
func (p *ClauseParser) Parse(text string) model.PolicyClause {
	working := Normalize(text)

	var exceptions []model.MedicalEntity
	for _, pat := range exceptionPatterns {
		matches := pat.FindAllStringSubmatch(working, -1)
		for _, m := range matches {
			span := strings.TrimSpace(m[1])
			for _, item := range listSplitRe.Split(span, -1) {
				if item = strings.TrimSpace(item); item != "" {
					exceptions = append(exceptions, p.extractor.Extract(item)...)
				}
			}
			working = strings.ReplaceAll(working, m[0], "")
		}
	}

	var excluded []model.MedicalEntity
	for _, item := range listSplitRe.Split(working, -1) {
		if item = strings.TrimSpace(item); item != "" {
			excluded = append(excluded, p.extractor.Extract(item)...)
		}
	}

	return model.PolicyClause{
		ExcludedEntities:  excluded,
		ExceptionEntities: exceptions,
		OriginalText:      text,
		ClauseType:        "exclusion",
	}
}
