package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/fmchealth/insuragent/internal/llm"
	"github.com/fmchealth/insuragent/internal/model"
)

// Coverage phrasing scanned in model replies by VerifyField
var (
	excludedPhrases = []string{
		"not covered", "not approved", "denied", "non-formulary",
		"not payable", "rejected", "excluded",
	}
	allowedPhrases = []string{"covered", "approved", "allowed", "payable"}
)

// VerifyField evaluates a single field value on its own: rule engine
// short-circuit, clause retrieval, full parser+matcher exclusion check,
// then language-model adjudication with coverage-phrase parsing. Used by
// callers that verify one field at a time rather than a whole case.
func (e *Evaluator) VerifyField(ctx context.Context, kind model.FieldKind, value string) model.FieldResult {
	value = strings.TrimSpace(value)
	if value == "" {
		return fieldResult(kind, "", model.DecisionAllowed, "No value provided", "None", 100, nil)
	}

	// Literal overrides need no clause
	if excluded, explanation := e.rules.IsExcluded(value, ""); excluded {
		return fieldResult(kind, value, model.DecisionExcluded, explanation, "None", 100, nil)
	}

	queryVec, err := e.embedder.Embed(ctx, fmt.Sprintf("%s: %s", kind, value))
	if err != nil {
		return fieldResult(kind, value, model.DecisionAllowed,
			fmt.Sprintf("Error during evaluation: %v", err), "Error", 100, nil)
	}
	docs, err := e.store.Query(ctx, queryVec, e.cfg.Retrieval.TopN)
	if err != nil || len(docs) == 0 {
		return fieldResult(kind, value, model.DecisionAllowed, "No relevant policy clauses found", "None", 80, nil)
	}

	clause := docs[0].Text
	if excluded, explanation := e.rules.IsExcluded(value, clause); excluded {
		return fieldResult(kind, value, model.DecisionExcluded, explanation, "None", 100, nil)
	}

	reply, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:      fieldPrompt(kind, clause, value),
		Temperature: 0,
		Subject:     value,
	})
	if err != nil {
		return fieldResult(kind, value, model.DecisionAllowed,
			fmt.Sprintf("Error querying LLM: %v", err), "None", 50, nil)
	}

	decision, confidence := parseCoverageReply(reply)
	return fieldResult(kind, value, decision, reply, "None", confidence, nil)
}

// parseCoverageReply classifies a model reply by its coverage phrasing,
// falling back to a first-token scan.
func parseCoverageReply(reply string) (model.Decision, int) {
	lowered := strings.ToLower(reply)

	anyExcluded := containsAny(lowered, excludedPhrases)
	anyAllowed := containsAny(lowered, allowedPhrases)

	switch {
	case anyExcluded && !anyAllowed:
		return model.DecisionExcluded, 90
	case anyAllowed && !strings.Contains(lowered, "excluded"):
		return model.DecisionAllowed, 80
	case strings.Contains(lowered, "excluded"):
		return model.DecisionExcluded, 90
	default:
		return model.DecisionAllowed, 80
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
