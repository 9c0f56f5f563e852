package engine

import (
	"github.com/fmchealth/insuragent/internal/model"
)

const (
	baseProbability     = 100
	exclusionPenalty    = 20
	clinicalFlagPenalty = 20
)

// BuildDecision folds per-field results and clinical flags into the
// final case verdict. Approval probability starts at 100, loses 20 when
// any field is excluded, loses 20 more when any clinical flag exists,
// and never goes below zero. The final decision is recomputed from the
// probability: only a clean 100 is Allowed.
func BuildDecision(caseID string, results []model.FieldResult, flags []model.ClinicalFlag) model.CaseDecision {
	probability := baseProbability

	anyExcluded := false
	for _, r := range results {
		if r.Result == model.DecisionExcluded {
			anyExcluded = true
			break
		}
	}
	if anyExcluded {
		probability -= exclusionPenalty
	}
	if len(flags) > 0 {
		probability -= clinicalFlagPenalty
	}
	if probability < 0 {
		probability = 0
	}

	final := model.DecisionExcluded
	if probability == baseProbability {
		final = model.DecisionAllowed
	}

	breakdown := make(map[string]model.FieldResult, len(results))
	var sources []string
	seen := map[string]bool{}
	for _, r := range results {
		breakdown[r.Field] = r
		if r.PolicySource != "" && r.PolicySource != "None" && !seen[r.PolicySource] {
			seen[r.PolicySource] = true
			sources = append(sources, r.PolicySource)
		}
	}

	if flags == nil {
		flags = []model.ClinicalFlag{}
	}
	if sources == nil {
		sources = []string{}
	}

	return model.CaseDecision{
		CaseID:              caseID,
		FinalDecision:       final,
		ApprovalProbability: probability,
		FieldBreakdown:      breakdown,
		ClinicalFlags:       flags,
		PolicySources:       sources,
	}
}
