package textproc

import (
	"math"
	"testing"

	"github.com/fmchealth/insuragent/internal/model"
)

func entity(normalized string, components ...string) model.MedicalEntity {
	return model.MedicalEntity{
		Original:   normalized,
		Normalized: normalized,
		Components: components,
	}
}

func TestMatcher_SelfSimilarity(t *testing.T) {
	m := NewMatcher()

	e := entity("hepatitis b", "hepatitis", "b")
	if got := m.Similarity(e, e); got != 1.0 {
		t.Errorf("Similarity(e, e) = %v, expected 1.0", got)
	}
}

func TestMatcher_Asymmetry(t *testing.T) {
	m := NewMatcher()

	broad := entity("vitamin d deficiency", "vitamin", "d", "deficiency")
	narrow := entity("vitamin d", "vitamin", "d")

	// narrow is contained in broad and has fewer tokens, so matching
	// broad against narrow takes the 0.7 containment penalty
	forward := m.Similarity(broad, narrow)
	backward := m.Similarity(narrow, broad)

	wantForward := (2.0 / 3.0) * 0.7
	wantBackward := 2.0 / 3.0

	if math.Abs(forward-wantForward) > 1e-9 {
		t.Errorf("Similarity(broad, narrow) = %v, expected %v", forward, wantForward)
	}
	if math.Abs(backward-wantBackward) > 1e-9 {
		t.Errorf("Similarity(narrow, broad) = %v, expected %v", backward, wantBackward)
	}
	if forward == backward {
		t.Error("expected asymmetric similarity for differing token-set sizes")
	}
}

func TestMatcher_EmptyEntities(t *testing.T) {
	m := NewMatcher()

	if got := m.Similarity(entity(""), entity("")); got != 0 {
		t.Errorf("expected 0 for empty entities, got %v", got)
	}
}

func TestMatcher_Disjoint(t *testing.T) {
	m := NewMatcher()

	a := entity("hepatitis b", "hepatitis", "b")
	b := entity("vitamin d", "vitamin", "d")
	if got := m.Similarity(a, b); got != 0 {
		t.Errorf("expected 0 for disjoint entities, got %v", got)
	}
}
