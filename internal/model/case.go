package model

// Decision is the coverage verdict for a field or a whole case
type Decision string

const (
	DecisionAllowed  Decision = "Allowed"
	DecisionExcluded Decision = "Excluded"
)

// FieldKind identifies one of the five clinical fields of a case
type FieldKind string

const (
	FieldDiagnosis FieldKind = "diagnosis"
	FieldComplaint FieldKind = "complaint"
	FieldSymptoms  FieldKind = "symptoms"
	FieldLab       FieldKind = "lab"
	FieldPharmacy  FieldKind = "pharmacy"
)

// EvaluationOrder returns the fixed order in which fields are evaluated.
// Consumers depend on diagnosis being processed first.
func EvaluationOrder() []FieldKind {
	return []FieldKind{FieldDiagnosis, FieldComplaint, FieldSymptoms, FieldLab, FieldPharmacy}
}

// CaseRequest holds the five optional clinical fields of a claim case.
// Blank values mean "no data", never an error.
type CaseRequest struct {
	Complaint string `json:"complaint,omitempty"`
	Symptoms  string `json:"symptoms,omitempty"`
	Diagnosis string `json:"diagnosis,omitempty"`
	Lab       string `json:"lab,omitempty"`
	Pharmacy  string `json:"pharmacy,omitempty"`
}

// Field returns the raw value for the given field kind
func (r CaseRequest) Field(kind FieldKind) string {
	switch kind {
	case FieldDiagnosis:
		return r.Diagnosis
	case FieldComplaint:
		return r.Complaint
	case FieldSymptoms:
		return r.Symptoms
	case FieldLab:
		return r.Lab
	case FieldPharmacy:
		return r.Pharmacy
	default:
		return ""
	}
}

// Empty reports whether no field carries data
func (r CaseRequest) Empty() bool {
	return r.Complaint == "" && r.Symptoms == "" && r.Diagnosis == "" && r.Lab == "" && r.Pharmacy == ""
}

// FieldResult is the per-field verification outcome.
// Result and Decision mirror the same value; two consumer generations
// expect different key names and both must stay populated.
type FieldResult struct {
	Field           string   `json:"field"`
	Value           string   `json:"value"`
	Result          Decision `json:"result"`
	Decision        Decision `json:"decision"`
	Explanation     string   `json:"explanation"`
	PolicySource    string   `json:"policy_source"`
	Probability     int      `json:"probability"`
	Recommendations []string `json:"recommendations"`
}

// ClinicalFlag is a cross-field coherence warning, independent of
// coverage exclusion. A case carries at most one.
type ClinicalFlag struct {
	FlaggedField    string   `json:"flagged_field"`
	FlaggedItem     string   `json:"flagged_item"`
	Recommendations []string `json:"recommendations"`
}

// CaseDecision is the complete verdict for one case. Built once by the
// aggregation step and read-only afterwards.
type CaseDecision struct {
	CaseID              string                 `json:"case_id"`
	FinalDecision       Decision               `json:"final_decision"`
	ApprovalProbability int                    `json:"approval_probability"`
	FieldBreakdown      map[string]FieldResult `json:"field_breakdown"`
	ClinicalFlags       []ClinicalFlag         `json:"clinical_flags"`
	PolicySources       []string               `json:"policy_sources"`
}
