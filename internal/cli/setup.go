package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fmchealth/insuragent/internal/engine"
	"github.com/fmchealth/insuragent/internal/llm"
	"github.com/fmchealth/insuragent/internal/mode"
	"github.com/fmchealth/insuragent/internal/model"
	"github.com/fmchealth/insuragent/internal/retrieval"
)

// buildConfig resolves the effective configuration from defaults, flags
// and environment. With mockMode the engine never touches the live API.
func buildConfig(mockMode bool) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose

	if mockMode {
		cfg.LLM.Provider = "mock"
		return cfg
	}

	cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.LLM.APIKey == "" {
		// No key means mock mode, stated up front rather than failing
		// on the first call
		fmt.Fprintf(os.Stderr, "OPENAI_API_KEY not set, running in mock mode\n")
		cfg.LLM.Provider = "mock"
	}
	return cfg
}

// buildEvaluator wires the evaluator from configuration: embedder with
// degraded-mode fallback, provider, and the policy clause store seeded
// from the built-in corpus.
func buildEvaluator(ctx context.Context, cfg *model.Config) (*engine.Evaluator, *mode.State, error) {
	state := mode.NewState()

	mockEmbedder := retrieval.NewMockEmbedder(cfg.Retrieval.EmbeddingDimensions)
	var embedder retrieval.Embedder
	if strings.ToLower(cfg.LLM.Provider) == "openai" {
		real, err := retrieval.NewOpenAIEmbedder(cfg.LLM, cfg.Cache, cfg.RateLimiting)
		if err != nil {
			return nil, nil, fmt.Errorf("create embedder: %w", err)
		}
		embedder = retrieval.NewFallbackEmbedder(real, mockEmbedder, state)
	} else {
		state.Degrade()
		embedder = retrieval.NewFallbackEmbedder(nil, mockEmbedder, state)
	}

	provider, err := llm.NewProvider(cfg.LLM, cfg.RateLimiting, state)
	if err != nil {
		return nil, nil, fmt.Errorf("create provider: %w", err)
	}

	store := retrieval.NewMemoryStore()
	loaded, err := retrieval.LoadPolicy(ctx, store, embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("load policy corpus: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d policy clauses\n", loaded)
		if state.Degraded() {
			fmt.Fprintf(os.Stderr, "Running with deterministic mock collaborators\n")
		}
	}

	return engine.NewEvaluator(cfg, embedder, store, provider), state, nil
}
