// Package engine orchestrates per-field policy-exclusion verification:
// retrieval of candidate clauses, deterministic rule overrides,
// language-model adjudication, clinical coherence checking and the final
// case aggregation.
package engine

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fmchealth/insuragent/internal/llm"
	"github.com/fmchealth/insuragent/internal/model"
	"github.com/fmchealth/insuragent/internal/retrieval"
	"github.com/fmchealth/insuragent/internal/rules"
)

// Evaluator runs case verification against the policy clause store
type Evaluator struct {
	cfg         *model.Config
	embedder    retrieval.Embedder
	store       retrieval.Store
	provider    llm.Provider
	rules       *rules.Engine
	recommender *Recommender
	coherence   *CoherenceChecker
}

// NewEvaluator wires an evaluator from its collaborators
func NewEvaluator(cfg *model.Config, embedder retrieval.Embedder, store retrieval.Store, provider llm.Provider) *Evaluator {
	return &Evaluator{
		cfg:         cfg,
		embedder:    embedder,
		store:       store,
		provider:    provider,
		rules:       rules.NewEngine(),
		recommender: NewRecommender(provider),
		coherence:   NewCoherenceChecker(provider),
	}
}

// VerifyCase evaluates all five fields in fixed order, runs the clinical
// coherence check and aggregates everything into one CaseDecision. It
// never returns an error: collaborator failures degrade individual
// fields to Allowed with an explanatory message.
func (e *Evaluator) VerifyCase(ctx context.Context, caseID string, req model.CaseRequest) model.CaseDecision {
	var results []model.FieldResult

	// Most recently selected clause, reused as policy context for the
	// clinical coherence call.
	var lastClause string

	for _, kind := range model.EvaluationOrder() {
		result, clause := e.evaluateField(ctx, kind, req)
		if clause != "" {
			lastClause = clause
		}
		results = append(results, result)
	}

	var flags []model.ClinicalFlag
	if req.Diagnosis != "" && (req.Complaint != "" || req.Symptoms != "" || req.Lab != "" || req.Pharmacy != "") {
		flags = e.coherence.Check(ctx, req, lastClause)
	}

	return BuildDecision(caseID, results, flags)
}

// evaluateField runs the full pipeline for one field and returns its
// result plus the selected clause text, empty when no clause matched.
func (e *Evaluator) evaluateField(ctx context.Context, kind model.FieldKind, req model.CaseRequest) (model.FieldResult, string) {
	value := strings.TrimSpace(req.Field(kind))
	if value == "" {
		return fieldResult(kind, "", model.DecisionAllowed, "No data provided for this field", "None", 100, nil), ""
	}

	// Brand-typo normalization improves retrieval only; the recorded
	// value never changes.
	searchQuery := value
	if kind == model.FieldPharmacy {
		if normalized := rules.NormalizePharmacyBrand(value); normalized != "" {
			searchQuery = normalized
		}
	}

	queryVec, err := e.embedder.Embed(ctx, searchQuery)
	if err != nil {
		return fieldResult(kind, value, model.DecisionAllowed,
			fmt.Sprintf("Error during evaluation: %v", err), "Error", 100, nil), ""
	}

	docs, err := e.store.Query(ctx, queryVec, e.cfg.Retrieval.TopN)
	if err != nil {
		return fieldResult(kind, value, model.DecisionAllowed,
			fmt.Sprintf("Error during evaluation: %v", err), "Error", 100, nil), ""
	}

	bestScore, bestClause := e.rerank(ctx, queryVec, value, docs)

	if bestScore <= e.cfg.Retrieval.MinScore {
		return fieldResult(kind, value, model.DecisionAllowed, "No exclusion matched.", "None", 100, nil), ""
	}
	source := retrieval.PolicySourceName

	// Literal hepatitis/vitamin overrides
	if o := rules.CheckOverride(value); o != nil {
		if o.Decision == model.DecisionAllowed {
			return fieldResult(kind, value, model.DecisionAllowed, o.Explanation, source, 100, nil), bestClause
		}
		recs := e.recommendFor(ctx, kind, value, o.Explanation, source, req, bestClause)
		return fieldResult(kind, value, model.DecisionExcluded, o.Explanation, source, 0, recs), bestClause
	}

	// Multi-term values: each sub-term re-checked against the same rules
	if excluded, reasons := rules.CheckSubTerms(value); excluded {
		explanation := "Excluded. " + strings.Join(reasons, " | ")
		recs := e.recommendFor(ctx, kind, value, explanation, source, req, bestClause)
		return fieldResult(kind, value, model.DecisionExcluded, explanation, source, 0, recs), bestClause
	}

	// Language-model adjudication at temperature 0
	question := value
	if kind == model.FieldPharmacy {
		if normalized := rules.NormalizePharmacyBrand(value); normalized != "" && normalized != strings.ToLower(value) {
			question = fmt.Sprintf("%s (normalized: %s)", value, normalized)
		}
	}

	reply, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Prompt:      fieldPrompt(kind, bestClause, question),
		Temperature: 0,
		Subject:     value,
	})
	if err != nil {
		return fieldResult(kind, value, model.DecisionAllowed,
			fmt.Sprintf("Error during evaluation: %v", err), source, 100, nil), bestClause
	}

	decision := firstWordDecision(reply)
	if decision == model.DecisionExcluded {
		recs := e.recommendFor(ctx, kind, value, reply, source, req, bestClause)
		return fieldResult(kind, value, decision, reply, source, 0, recs), bestClause
	}
	return fieldResult(kind, value, decision, reply, source, 100, nil), bestClause
}

// rerank re-embeds each candidate clause and scores it against the query
// vector, then applies the deterministic brand/strength override: when
// the raw value and a candidate share a boost keyword that clause wins
// with score 1.0 regardless of embedding ranking.
func (e *Evaluator) rerank(ctx context.Context, queryVec []float32, value string, docs []retrieval.Document) (float64, string) {
	bestScore := -1.0
	var bestClause string

	for _, doc := range docs {
		docVec, err := e.embedder.Embed(ctx, doc.Text)
		if err != nil {
			continue
		}
		if score := retrieval.Cosine(queryVec, docVec); score > bestScore {
			bestScore = score
			bestClause = doc.Text
		}
	}

	if terms := rules.RetrievalBoostTerms(value); len(terms) > 0 {
		for _, doc := range docs {
			lowered := strings.ToLower(doc.Text)
			for _, term := range terms {
				if strings.Contains(lowered, term) {
					return 1.0, doc.Text
				}
			}
		}
	}

	return bestScore, bestClause
}

// recommendFor generates up to 2 allowed alternatives for an excluded field
func (e *Evaluator) recommendFor(ctx context.Context, kind model.FieldKind, value, explanation, source string, req model.CaseRequest, clause string) []string {
	return e.recommender.Recommend(ctx, RecommendationInput{
		Field:        kind,
		Value:        value,
		Explanation:  explanation,
		PolicySource: source,
		Diagnosis:    req.Diagnosis,
		Complaint:    req.Complaint,
		Symptoms:     req.Symptoms,
		Clause:       clause,
	})
}

// firstWordDecision takes the first word of a model reply, strips
// trailing punctuation and capitalizes it.
func firstWordDecision(reply string) model.Decision {
	fields := strings.Fields(reply)
	if len(fields) == 0 {
		return model.DecisionAllowed
	}
	word := strings.Trim(fields[0], ".:,")
	if word == "" {
		return model.DecisionAllowed
	}
	word = strings.ToLower(word)
	r, size := utf8.DecodeRuneInString(word)
	return model.Decision(string(unicode.ToUpper(r)) + word[size:])
}

func fieldResult(kind model.FieldKind, value string, decision model.Decision, explanation, source string, probability int, recommendations []string) model.FieldResult {
	if recommendations == nil {
		recommendations = []string{}
	}
	return model.FieldResult{
		Field:           string(kind),
		Value:           value,
		Result:          decision,
		Decision:        decision,
		Explanation:     explanation,
		PolicySource:    source,
		Probability:     probability,
		Recommendations: recommendations,
	}
}
