package engine

import (
	"fmt"

	"github.com/fmchealth/insuragent/internal/model"
)

// Field-specific adjudication prompt templates. Each instructs the model
// to answer with a single leading "Allowed" or "Excluded" word decided
// strictly from the retrieved clause text, never from medical reasoning.

const diagnosisPromptTemplate = `You are an expert insurance claim verification assistant.

IMPORTANT RULES:
- The following policy clause is from an exclusion list.
- Only answer "Excluded" if the diagnosis below is explicitly mentioned or very clearly described in the clause.
- If the diagnosis is not found in the policy clause text at all, respond with: "Allowed"
- DO NOT infer exclusions from medical reasoning, associations, or assumed causes.
- If the diagnosis term is not present in the clause, it is considered covered by default.

Policy clause:
"%s"

Diagnosis:
"%s"

Respond with only one word: "Allowed" or "Excluded". Then explain in one short sentence based strictly on the policy clause text.
Final Rule:
- If the diagnosis term (e.g., "piles") is not explicitly mentioned or clearly described in the policy clause, respond with:
  "Allowed. This item is not excluded in the clause."
- Do NOT infer exclusions from medical associations or logical reasoning.`

const complaintPromptTemplate = `You are an expert insurance claim verification assistant.

IMPORTANT RULES:
- Decide strictly from the policy clause text (retrieved by RAG).
- Only respond "Excluded" if the clause explicitly uses non-coverage phrasing
  ("not covered", "denied", "not approved", "non-formulary", "not payable") for the complaint.
- Mere mention/examples of complaints without non-coverage phrasing → "Allowed".
- If the complaint text is not present in the clause → "Allowed".

Policy clause:
"%s"

Chief Complaint:
"%s"

Respond with exactly one of: Allowed or Excluded. Then add one short justification based strictly on the clause.

Final Rule:
- If the complaint (e.g., "vomiting", "pain") is not found in the policy clause, respond with:
  "Allowed. This item is not excluded in the clause."
- Do NOT infer exclusions based on likely diagnosis or assumed causes.`

const symptomPromptTemplate = `You are an expert insurance claim verification assistant.

IMPORTANT RULES:
- Decide strictly from the policy clause text (retrieved by RAG).
- Only respond "Excluded" if the clause explicitly uses non-coverage phrasing
  ("not covered", "denied", "not approved", "non-formulary", "not payable") for the symptom(s).
- Mere mention/examples of symptoms without non-coverage phrasing → "Allowed".
- If the symptom(s) are not present in the clause → "Allowed".

Policy clause:
"%s"

Symptoms:
"%s"

Respond with exactly one of: Allowed or Excluded. Then add one short justification based strictly on the clause.
Final Rule:
- If the term (e.g., diagnosis, medicine, lab test, symptom, complaint) is not explicitly found in the policy clause, respond with:
  "Allowed. This item is not excluded in the clause."
- Do NOT infer, assume, generalize, or fabricate exclusions.`

const labPromptTemplate = `You are an expert insurance claim verification assistant.

IMPORTANT RULES:
- Decide strictly from the policy clause text (retrieved by RAG).
- Respond "Excluded" ONLY if the clause uses explicit non-coverage phrasing for the lab test:
  "not covered", "not approved", "denied", "not payable", "rejected", "non-formulary".
- Mere mention/examples of lab tests without non-coverage phrasing → "Allowed".
- If the test name/abbreviation is not present in the clause → "Allowed".
- Do NOT infer from medical reasoning.

Policy clause:
"%s"

Lab Test:
"%s"

Respond with exactly one of: Allowed or Excluded. Then add one short justification based strictly on the clause.`

const pharmacyPromptTemplate = `You are an expert insurance claim verification assistant.

IMPORTANT RULES:
- Decide strictly from the policy clause text (retrieved by RAG).
- Treat as NOT COVERED → respond exactly "Excluded":
  "not covered", "not approved", "denied", "non-formulary", "not payable", "rejected",
  strength/dose restrictions explicitly stating a strength is not covered,
  duration violations (e.g., exceeds the allowed days stated in clause).
- Treat as COVERED → respond exactly "Allowed":
  "covered", "approved", "allowed", "payable".
- If the medicine or any applicable non-coverage phrasing is NOT present, respond "Allowed".
- Do NOT infer from medical reasoning.

Policy clause:
"%s"

Medicine:
"%s"

Respond with exactly one of: Allowed or Excluded. Then add one short justification based strictly on the clause.

Final Rule:
- If the medicine name (e.g., 'Ozempic') is not explicitly mentioned in the policy clause text, you must respond: "Allowed. This item is not excluded in the clause."
- Do NOT invent exclusions. Do NOT assume or explain based on medical knowledge.`

// fieldPrompt formats the adjudication prompt for a field kind. The
// switch is exhaustive over the five field kinds; an unknown kind gets
// the diagnosis template, the most conservative of the set.
func fieldPrompt(kind model.FieldKind, clause, question string) string {
	var template string
	switch kind {
	case model.FieldDiagnosis:
		template = diagnosisPromptTemplate
	case model.FieldComplaint:
		template = complaintPromptTemplate
	case model.FieldSymptoms:
		template = symptomPromptTemplate
	case model.FieldLab:
		template = labPromptTemplate
	case model.FieldPharmacy:
		template = pharmacyPromptTemplate
	default:
		template = diagnosisPromptTemplate
	}
	return fmt.Sprintf(template, clause, question)
}
