package worker

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/fmchealth/insuragent/internal/model"
)

// stubVerifier returns a fixed decision shaped from the request
type stubVerifier struct{}

func (stubVerifier) VerifyCase(_ context.Context, caseID string, req model.CaseRequest) model.CaseDecision {
	time.Sleep(5 * time.Millisecond)

	decision := model.DecisionAllowed
	probability := 100
	if req.Pharmacy == "Vitamin D" {
		decision = model.DecisionExcluded
		probability = 80
	}
	return model.CaseDecision{
		CaseID:              caseID,
		FinalDecision:       decision,
		ApprovalProbability: probability,
		FieldBreakdown:      map[string]model.FieldResult{},
		ClinicalFlags:       []model.ClinicalFlag{},
		PolicySources:       []string{},
	}
}

func TestBatchProcessor_ProcessCases(t *testing.T) {
	processor := NewBatchProcessor(stubVerifier{}, 2)

	cases := []Case{
		{ID: "1", Request: model.CaseRequest{Diagnosis: "migraine"}},
		{ID: "2", Request: model.CaseRequest{Pharmacy: "Vitamin D"}},
		{ID: "3", Request: model.CaseRequest{Lab: "CBC"}},
	}

	results := processor.ProcessCases(context.Background(), cases)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	excluded := 0
	for _, res := range results {
		if res.GetError() != nil {
			t.Errorf("unexpected error for case %s: %v", res.CaseID, res.Error)
		}
		if res.Decision.FinalDecision == model.DecisionExcluded {
			excluded++
		}
	}
	if excluded != 1 {
		t.Errorf("expected 1 excluded case, got %d", excluded)
	}
}

func TestBatchProcessor_ProcessCases_LargeBatch(t *testing.T) {
	// Far more cases than workers can hold in flight; the run must
	// still complete with one result per case.
	processor := NewBatchProcessor(stubVerifier{}, 2)

	cases := make([]Case, 40)
	for i := range cases {
		cases[i] = Case{ID: strconv.Itoa(i + 1), Request: model.CaseRequest{Diagnosis: "flu"}}
	}

	done := make(chan []*CaseResult, 1)
	go func() {
		done <- processor.ProcessCases(context.Background(), cases)
	}()

	select {
	case results := <-done:
		if len(results) != len(cases) {
			t.Fatalf("expected %d results, got %d", len(cases), len(results))
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("ProcessCases wedged on %d cases with 2 workers", len(cases))
	}
}

func TestBatchProcessor_ProcessCases_Empty(t *testing.T) {
	processor := NewBatchProcessor(stubVerifier{}, 2)

	results := processor.ProcessCases(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "cases*.csv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}
	return tmpfile.Name()
}

func TestReadCasesFromCSV_PayerHeaders(t *testing.T) {
	path := writeTempCSV(t, `case_id,chief_complaints,symptoms,diagnosis_description,service_detail,payer_product_category_name
C-100,abdominal pain,bloating,gastritis,CBC,Procid 20 mg
C-101,headache,,migraine,,`)

	cases, err := ReadCasesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadCasesFromCSV failed: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}

	first := cases[0]
	if first.ID != "C-100" {
		t.Errorf("case ID = %q, want C-100", first.ID)
	}
	if first.Request.Complaint != "abdominal pain" || first.Request.Pharmacy != "Procid 20 mg" {
		t.Errorf("unexpected mapped request: %+v", first.Request)
	}
	if cases[1].Request.Diagnosis != "migraine" {
		t.Errorf("diagnosis = %q, want migraine", cases[1].Request.Diagnosis)
	}
}

func TestReadCasesFromCSV_GenericHeadersAndRowNumberIDs(t *testing.T) {
	path := writeTempCSV(t, `complaint,symptom,diagnosis,lab_test,medication
fever,chills,flu,CBC,paracetamol
,,bronchitis,,Amoxicillin`)

	cases, err := ReadCasesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadCasesFromCSV failed: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}

	if cases[0].ID != "1" || cases[1].ID != "2" {
		t.Errorf("IDs = %q/%q, want row numbers", cases[0].ID, cases[1].ID)
	}
	if cases[0].Request.Symptoms != "chills" {
		t.Errorf("symptoms = %q, want chills", cases[0].Request.Symptoms)
	}
	if cases[1].Request.Pharmacy != "Amoxicillin" {
		t.Errorf("pharmacy = %q, want Amoxicillin", cases[1].Request.Pharmacy)
	}
}

func TestReadCasesFromCSV_MissingColumnsBecomeEmpty(t *testing.T) {
	path := writeTempCSV(t, `diagnosis
gastritis`)

	cases, err := ReadCasesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadCasesFromCSV failed: %v", err)
	}
	if len(cases) != 1 {
		t.Fatalf("expected 1 case, got %d", len(cases))
	}
	req := cases[0].Request
	if req.Diagnosis != "gastritis" {
		t.Errorf("diagnosis = %q", req.Diagnosis)
	}
	if req.Complaint != "" || req.Symptoms != "" || req.Lab != "" || req.Pharmacy != "" {
		t.Errorf("unmapped fields must stay empty: %+v", req)
	}
}

func TestReadCasesFromCSV_NonExistent(t *testing.T) {
	if _, err := ReadCasesFromCSV("no_such_file.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTempCSV(t, `id,diagnosis,pharmacy
1,flu,paracetamol
2,rickets,Vitamin D`)

	processor := NewBatchProcessor(stubVerifier{}, 2)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(stubVerifier{}, 2)
	if _, err := processor.ProcessFile(context.Background(), "no_such_file.csv"); err == nil {
		t.Error("expected error for non-existent file")
	}
}
