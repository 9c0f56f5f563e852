package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fmchealth/insuragent/internal/llm"
	"github.com/fmchealth/insuragent/internal/model"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }
func (failingProvider) Complete(context.Context, llm.CompletionRequest) (string, error) {
	return "", errors.New("connection refused")
}

func TestRecommend_CoveredPairFromClause(t *testing.T) {
	r := NewRecommender(llm.NewMockProvider())

	recs := r.Recommend(context.Background(), RecommendationInput{
		Field:  model.FieldPharmacy,
		Value:  "Procid 40 mg for 10 days",
		Clause: "Covered → Procid 20 mg; Not covered → Procid 40 mg.",
	})

	if len(recs) == 0 {
		t.Fatal("expected clause-derived recommendation")
	}
	if !strings.Contains(strings.ToLower(recs[0]), "procid 20 mg") {
		t.Errorf("recommendation %q must name the covered item", recs[0])
	}
	if !strings.Contains(recs[0], "for 10 days") {
		t.Errorf("recommendation %q must carry the duration from the value", recs[0])
	}
}

func TestRecommend_PanadolSubstitution(t *testing.T) {
	r := NewRecommender(llm.NewMockProvider())

	recs := r.Recommend(context.Background(), RecommendationInput{
		Field:  model.FieldPharmacy,
		Value:  "Penadol tablets",
		Clause: "Panadol → Not covered; Adol → Covered.",
	})

	found := false
	for _, rec := range recs {
		if strings.Contains(rec, "Adol") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected Adol substitution, got %v", recs)
	}
}

func TestRecommend_AmoxicillinBronchitisDuration(t *testing.T) {
	r := NewRecommender(llm.NewMockProvider())

	recs := r.Recommend(context.Background(), RecommendationInput{
		Field:     model.FieldPharmacy,
		Value:     "Amoxicillin 500mg for 15 days",
		Diagnosis: "Acute bronchitis",
		Clause:    "Antibiotics for acute sinusitis → Covered up to 10 days.",
	})

	if len(recs) != 2 {
		t.Fatalf("recs = %v, want exactly 2", recs)
	}
	for _, rec := range recs {
		if !strings.Contains(rec, "Amoxicillin 500 mg") || !strings.Contains(rec, "7 days") {
			t.Errorf("recommendation %q must be a 7-day amoxicillin regimen", rec)
		}
	}
}

func TestRecommend_CapAtTwo(t *testing.T) {
	r := NewRecommender(llm.NewMockProvider())

	recs := r.Recommend(context.Background(), RecommendationInput{
		Field:       model.FieldLab,
		Value:       "Genetic testing panel",
		Explanation: "Excluded. Experimental therapy.",
	})

	if len(recs) > maxFieldRecommendations {
		t.Errorf("got %d recommendations, cap is %d", len(recs), maxFieldRecommendations)
	}
}

func TestRecommend_ProviderErrorFallsBackByField(t *testing.T) {
	r := NewRecommender(failingProvider{})
	ctx := context.Background()

	cases := []struct {
		field model.FieldKind
		want  string
	}{
		{model.FieldPharmacy, "Standard pain relief medication"},
		{model.FieldLab, "Basic blood panel"},
		{model.FieldDiagnosis, "Acute medical condition"},
		{model.FieldSymptoms, "Documented medical symptoms"},
	}
	for _, tc := range cases {
		recs := r.Recommend(ctx, RecommendationInput{Field: tc.field, Value: "anything"})
		if len(recs) != 2 {
			t.Fatalf("field %s: recs = %v, want 2 fallbacks", tc.field, recs)
		}
		if recs[0] != tc.want {
			t.Errorf("field %s: recs[0] = %q, want %q", tc.field, recs[0], tc.want)
		}
	}
}

func TestSuggestions_FixedForKnownExclusions(t *testing.T) {
	r := NewRecommender(failingProvider{})

	recs := r.Suggestions(context.Background(), "Vitamin D supplement")
	if len(recs) != 3 {
		t.Fatalf("recs = %v, want 3 fixed suggestions", recs)
	}
	if recs[0] != "Request physician documentation of deficiency" {
		t.Errorf("unexpected first suggestion %q", recs[0])
	}
}

func TestSuggestions_ProviderErrorFallsBack(t *testing.T) {
	r := NewRecommender(failingProvider{})

	recs := r.Suggestions(context.Background(), "Experimental gene therapy")
	want := []string{"Document medical necessity", "Consider covered alternatives", "Consult with physician"}
	if len(recs) != len(want) {
		t.Fatalf("recs = %v, want %v", recs, want)
	}
	for i := range want {
		if recs[i] != want[i] {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i], want[i])
		}
	}
}
