package retrieval

import (
	"context"
	"fmt"
	"strings"
)

// PolicySourceName labels results matched against the main policy
const PolicySourceName = "FMC Insurance"

// MainPolicyText is the FMC drug formulary the exclusion clauses are
// chunked from.
const MainPolicyText = `
FMC Insurance – Drug Formulary & Prescription Regulations (Draft)

General Principles
- The formulary defines all medications approved for coverage under FMC Health Insurance.
- Medications outside the formulary, or not compliant with the rules below, are not covered (denied).
- Prescriptions must be issued by a licensed physician and linked to a valid diagnosis.
- All prescriptions must clearly include dosage, strength, frequency, and duration.

Coverage Rules
- Generic Preference:
  - Covered: Generic equivalents where available.
  - Branded: Covered only if no equivalent generic exists or if explicitly justified by the physician.

- Dosage & Strength:
  - Only approved strengths are covered.
  - Example (Procid): Covered → Procid 20 mg; Not covered → Procid 40 mg.

- Brand Substitution:
  - Non-formulary brands are not covered when a formulary brand exists.
  - Example: Panadol → Not covered; Adol → Covered.

Duration Limits
- Acute conditions (e.g., fever, cough, gastritis, sinusitis):
  - Maximum covered duration: 10 days.
  - Prescriptions exceeding 10 days are not covered unless medically justified and pre-authorized.

- Chronic conditions (e.g., diabetes, hypertension, asthma):
  - Maintenance medicines: Covered up to 30 days per refill.
  - Durations beyond 30 days require prior approval.

Exclusions (Not Covered)
- Non-medically necessary items (vitamins, supplements, tonics, herbal remedies, cosmetic products, weight-loss medications).
- Experimental / non-standard therapies (e.g., stem cell therapy, unregistered biologics).
- Over-the-counter (OTC) medications unless prescribed and included in the formulary.

Prescription Compliance
- The prescription must match the clinical diagnosis and chief complaints.
  - Example: Gastritis diagnosis should align with complaints like abdominal pain, bloating, reflux.
  - Mismatch (e.g., headache complaint with sinusitis diagnosis) → Not covered.
- All five clinical fields are mandatory for evaluation:
  - Chief Complaints, Symptoms, Diagnosis, Lab/Investigations, Pharmacy.
- Missing or incomplete documentation may lead to rejection.

Pharmacy Dispensing Rules
- Medicines must be dispensed strictly as per the physician prescription and formulary guidelines.
- Substitution to covered alternatives (e.g., Adol instead of Panadol) must be documented in the claim submission.
- Any deviation requires prior approval from the FMC insurance medical review team.

Examples (Applied Rules)
- Procid 20 mg → Covered (e.g., for gastritis/GERD/PUD).
- Procid 40 mg → Not covered.
- Panadol → Not covered.
- Adol → Covered.
- Antibiotics for acute sinusitis → Covered up to 10 days.
- Cough syrups (acute) → Covered, maximum 10 days.
- Multivitamins → Not covered unless deficiency is proven by lab.
`

// ruleKeywords mark lines carrying policy rule/exclusion phrasing
var ruleKeywords = []string{
	"not covered",
	"excluded",
	"will be denied",
	"denied unless",
	"maximum prescription coverage",
	"max 10 days",
	"require prior approval",
	"requires prior approval",
	"only approved strengths",
	"non-formulary",
	"generic equivalents",
	"brand substitution",
	"must be",
	"mandatory for evaluation",
}

// ExtractExclusionLines chunks a policy document into clause lines:
// bulleted lines, lines with rule keywords, and explicit arrow examples.
func ExtractExclusionLines(policyText string) []string {
	var extracted []string
	for _, rawLine := range strings.Split(policyText, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		if line == "---" || line == "—" || line == "–––" {
			continue
		}
		if strings.HasPrefix(line, "-") {
			extracted = append(extracted, strings.TrimSpace(strings.TrimLeft(line, "- ")))
			continue
		}
		lower := strings.ToLower(line)
		matched := false
		for _, kw := range ruleKeywords {
			if strings.Contains(lower, kw) {
				extracted = append(extracted, line)
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		if strings.Contains(line, "→") {
			extracted = append(extracted, line)
		}
	}
	return extracted
}

// LoadPolicy chunks the main policy, embeds each clause and seeds the
// store. Returns the number of loaded clauses.
func LoadPolicy(ctx context.Context, store *MemoryStore, embedder Embedder) (int, error) {
	if store.Count() > 0 {
		return store.Count(), nil
	}

	lines := ExtractExclusionLines(MainPolicyText)
	for i, text := range lines {
		vec, err := embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embed policy clause %d: %w", i, err)
		}
		store.Add(fmt.Sprintf("policy_%d", i), text, vec, map[string]string{
			"source": "policy_document",
		})
	}
	return len(lines), nil
}
