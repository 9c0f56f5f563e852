package retrieval

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/fmchealth/insuragent/internal/mode"
)

func TestCosine_Identity(t *testing.T) {
	v := []float32{0.5, 0.3, -0.2}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("Cosine(v, v) = %v, expected 1.0", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := Cosine(a, b); got != 0 {
		t.Errorf("expected 0 for orthogonal vectors, got %v", got)
	}
}

func TestCosine_MismatchedOrEmpty(t *testing.T) {
	if got := Cosine([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %v", got)
	}
	if got := Cosine(nil, nil); got != 0 {
		t.Errorf("expected 0 for empty vectors, got %v", got)
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(1536)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "Amoxicillin 500mg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, _ := e.Embed(ctx, "Amoxicillin 500mg")

	if len(v1) != 1536 {
		t.Fatalf("expected 1536 dims, got %d", len(v1))
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("mock embeddings must be deterministic per text")
		}
	}

	v3, _ := e.Embed(ctx, "different text")
	same := true
	for i := range v1 {
		if v1[i] != v3[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should produce different vectors")
	}

	// Unit magnitude
	var mag float64
	for _, x := range v1 {
		mag += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(mag)-1.0) > 1e-5 {
		t.Errorf("expected unit vector, magnitude %v", math.Sqrt(mag))
	}
}

func TestMemoryStore_QueryOrdering(t *testing.T) {
	store := NewMemoryStore()
	store.Add("a", "clause a", []float32{1, 0, 0}, nil)
	store.Add("b", "clause b", []float32{0.9, 0.1, 0}, nil)
	store.Add("c", "clause c", []float32{0, 0, 1}, nil)

	docs, err := store.Query(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "a" || docs[1].ID != "b" {
		t.Errorf("unexpected ranking: %s, %s", docs[0].ID, docs[1].ID)
	}
	if docs[0].Score < docs[1].Score {
		t.Error("results must be ordered best first")
	}
}

type failingEmbedder struct{ err error }

func (f *failingEmbedder) Embed(context.Context, string) ([]float32, error) { return nil, f.err }

func TestFallbackEmbedder_QuotaDegrades(t *testing.T) {
	state := mode.NewState()
	fb := NewFallbackEmbedder(
		&failingEmbedder{err: errQuota{}},
		NewMockEmbedder(8),
		state,
	)

	vec, err := fb.Embed(context.Background(), "test")
	if err != nil {
		t.Fatalf("fallback must not propagate errors: %v", err)
	}
	if len(vec) != 8 {
		t.Fatalf("expected mock vector, got %d dims", len(vec))
	}
	if !state.Degraded() {
		t.Error("quota error must flip degraded mode")
	}

	state.Reset()
	if state.Degraded() {
		t.Error("reset must clear degraded mode")
	}
}

type errQuota struct{}

func (errQuota) Error() string { return "429: insufficient quota" }

func TestExtractExclusionLines(t *testing.T) {
	lines := ExtractExclusionLines(MainPolicyText)
	if len(lines) == 0 {
		t.Fatal("expected extracted clause lines")
	}

	var hasProcid, hasPanadol, hasDuration bool
	for _, line := range lines {
		if strings.Contains(line, "Procid 40 mg") {
			hasProcid = true
		}
		if strings.Contains(line, "Panadol") {
			hasPanadol = true
		}
		if strings.Contains(line, "Maximum covered duration: 10 days") {
			hasDuration = true
		}
		if line == "" {
			t.Error("extracted lines must be non-empty")
		}
	}
	if !hasProcid || !hasPanadol || !hasDuration {
		t.Errorf("expected key formulary clauses extracted (procid=%v panadol=%v duration=%v)",
			hasProcid, hasPanadol, hasDuration)
	}
}

func TestLoadPolicy_SeedsOnce(t *testing.T) {
	store := NewMemoryStore()
	embedder := NewMockEmbedder(32)
	ctx := context.Background()

	n, err := LoadPolicy(ctx, store, embedder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == 0 || store.Count() != n {
		t.Fatalf("expected %d stored clauses, got %d", n, store.Count())
	}

	// Second load is a no-op
	n2, err := LoadPolicy(ctx, store, embedder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n2 != n || store.Count() != n {
		t.Errorf("reload must not duplicate clauses: %d vs %d", n2, store.Count())
	}
}
