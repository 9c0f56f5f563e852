package rules

import (
	"strings"
	"testing"

	"github.com/fmchealth/insuragent/internal/model"
)

func TestIsExcluded_HepatitisAAlwaysAllowed(t *testing.T) {
	engine := NewEngine()

	clauses := []string{
		"all hepatitis types are excluded",
		"hepatitis a is excluded",
		"",
	}
	for _, clause := range clauses {
		excluded, explanation := engine.IsExcluded("Hepatitis A", clause)
		if excluded {
			t.Errorf("Hepatitis A must always be allowed (clause %q): %s", clause, explanation)
		}
		if !strings.Contains(explanation, "Hepatitis A is explicitly covered") {
			t.Errorf("unexpected explanation: %s", explanation)
		}
	}
}

func TestIsExcluded_VitaminDAlwaysExcluded(t *testing.T) {
	engine := NewEngine()

	for _, clause := range []string{"vitamins are covered", ""} {
		excluded, explanation := engine.IsExcluded("Vitamin D", clause)
		if !excluded {
			t.Errorf("Vitamin D must always be excluded (clause %q): %s", clause, explanation)
		}
		if !strings.Contains(explanation, "routine checkup exclusions") {
			t.Errorf("unexpected explanation: %s", explanation)
		}
	}
}

func TestIsExcluded_NonDVitaminNeverExcluded(t *testing.T) {
	engine := NewEngine()

	excluded, _ := engine.IsExcluded("Vitamin C", "vitamin c is not covered")
	if excluded {
		t.Error("non-D vitamins must never be excluded")
	}
}

func TestIsExcluded_PhototherapyNeonatalJaundice(t *testing.T) {
	engine := NewEngine()

	excluded, explanation := engine.IsExcluded("Phototherapy for neonatal jaundice", "phototherapy is excluded")
	if excluded {
		t.Errorf("phototherapy for neonatal jaundice must be allowed: %s", explanation)
	}
}

func TestIsExcluded_NoEntities(t *testing.T) {
	engine := NewEngine()

	excluded, explanation := engine.IsExcluded("persistent cough", "coughs are excluded")
	if excluded {
		t.Error("query without medical entities must be allowed")
	}
	if explanation != "No medical entities found" {
		t.Errorf("unexpected explanation: %s", explanation)
	}
}

func TestIsExcluded_ExceptionBeforeExclusion(t *testing.T) {
	engine := NewEngine()

	excluded, explanation := engine.IsExcluded("Hepatitis B", "hepatitis b is excluded except hepatitis b carriers")
	if excluded {
		t.Errorf("exception span must take precedence: %s", explanation)
	}
}

func TestIsExcluded_SimilarityMatch(t *testing.T) {
	engine := NewEngine()

	excluded, explanation := engine.IsExcluded("Hepatitis B", "vaccination for hepatitis b is excluded")
	if !excluded {
		t.Errorf("expected exclusion for hepatitis b, got: %s", explanation)
	}
}

func TestCheckOverride_Ordering(t *testing.T) {
	tests := []struct {
		value    string
		decision model.Decision
		contains string
	}{
		{"Vitamin C", model.DecisionAllowed, "Skipped non-D vitamin"},
		{"Hepatitis A", model.DecisionAllowed, "explicitly covered"},
		{"Hepatitis B", model.DecisionExcluded, "except Hepatitis A"},
		{"Vitamin D", model.DecisionExcluded, "routine checkup exclusions"},
	}

	for _, tt := range tests {
		o := CheckOverride(tt.value)
		if o == nil {
			t.Errorf("CheckOverride(%q) = nil, expected %s", tt.value, tt.decision)
			continue
		}
		if o.Decision != tt.decision {
			t.Errorf("CheckOverride(%q) = %s, expected %s", tt.value, o.Decision, tt.decision)
		}
		if !strings.Contains(o.Explanation, tt.contains) {
			t.Errorf("CheckOverride(%q) explanation %q missing %q", tt.value, o.Explanation, tt.contains)
		}
	}

	if o := CheckOverride("Amoxicillin 500mg"); o != nil {
		t.Errorf("expected nil override for plain medication, got %+v", o)
	}
}

func TestCheckSubTerms(t *testing.T) {
	excluded, reasons := CheckSubTerms("calcium, vitamin d and hepatitis b")
	if !excluded {
		t.Fatal("expected sub-term exclusion")
	}
	if len(reasons) != 2 {
		t.Fatalf("expected 2 reasons, got %d: %v", len(reasons), reasons)
	}
	if !strings.Contains(reasons[0], "vitamin d") && !strings.Contains(reasons[0], "Vitamin D") {
		t.Errorf("unexpected first reason: %s", reasons[0])
	}

	excluded, reasons = CheckSubTerms("paracetamol and ibuprofen")
	if excluded || len(reasons) != 0 {
		t.Errorf("expected no sub-term exclusions, got %v", reasons)
	}
}

func TestNormalizePharmacyBrand(t *testing.T) {
	if got := NormalizePharmacyBrand("Penadol 500mg"); got != "panadol 500mg" {
		t.Errorf("expected typo fix, got %q", got)
	}
	if got := NormalizePharmacyBrand("Adol 500mg"); got != "adol 500mg" {
		t.Errorf("expected lowercasing only, got %q", got)
	}
}

func TestRetrievalBoostTerms(t *testing.T) {
	terms := RetrievalBoostTerms("Penadol 500mg twice daily")
	if len(terms) != 1 || terms[0] != "panadol" {
		t.Errorf("expected canonical [panadol], got %v", terms)
	}

	terms = RetrievalBoostTerms("Procid 40 mg")
	found := map[string]bool{}
	for _, term := range terms {
		found[term] = true
	}
	if !found["procid"] || !found["40 mg"] {
		t.Errorf("expected procid and 40 mg boost terms, got %v", terms)
	}

	if terms := RetrievalBoostTerms("Metformin 500mg"); len(terms) != 0 {
		t.Errorf("expected no boost terms, got %v", terms)
	}
}
