package retrieval

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/fmchealth/insuragent/internal/cache"
	"github.com/fmchealth/insuragent/internal/mode"
	"github.com/fmchealth/insuragent/internal/model"
)

// Embedder generates a fixed-dimensionality vector for a text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OpenAIEmbedder calls the OpenAI embeddings API, memoizing vectors per
// input text and rate-limiting outbound requests.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   openai.EmbeddingModel
	timeout time.Duration
	cache   cache.Cache
	limiter *rate.Limiter
}

// NewOpenAIEmbedder creates an embedder from configuration
func NewOpenAIEmbedder(cfg model.LLMConfig, cacheCfg model.CacheConfig, rl model.RateLimitingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var vectors cache.Cache
	if cacheCfg.Enabled {
		ttl := time.Duration(cacheCfg.TTLMinutes) * time.Minute
		if cacheCfg.Dir != "" {
			vectors = cache.NewLayeredCache(ttl, cacheCfg.Dir, 24*time.Hour)
		} else {
			vectors = cache.NewMemoryCache(ttl, 2*ttl)
		}
	}

	burst := rl.BurstSize
	if burst <= 0 {
		burst = 5
	}

	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   openai.EmbeddingModel(cfg.EmbeddingModel),
		timeout: timeout,
		cache:   vectors,
		limiter: rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), burst),
	}, nil
}

// Embed returns the embedding vector for the text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var key string
	if e.cache != nil {
		key = cache.Key(text)
		if cached, found := e.cache.Get(key); found {
			return cached, nil
		}
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := resp.Data[0].Embedding
	if e.cache != nil {
		_ = e.cache.Set(key, vec, 0)
	}
	return vec, nil
}

// MockEmbedder produces deterministic unit vectors seeded from the input
// text hash, so identical texts always embed identically in mock mode.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder creates a mock embedder with the given dimensionality
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a hash-seeded normalized pseudo-random vector
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float32, e.dimensions)
	var magnitude float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		magnitude += v * v
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / magnitude)
		}
	}
	return vec, nil
}

// FallbackEmbedder wraps a real embedder with the degraded-mode mock.
// A quota or availability error flips the shared mode state; any other
// failure still yields a deterministic mock vector so retrieval never
// aborts a case.
type FallbackEmbedder struct {
	real  Embedder
	mock  *MockEmbedder
	state *mode.State
}

// NewFallbackEmbedder wires a real embedder to the mock stand-in
func NewFallbackEmbedder(real Embedder, mock *MockEmbedder, state *mode.State) *FallbackEmbedder {
	return &FallbackEmbedder{real: real, mock: mock, state: state}
}

// Embed uses the real embedder unless the process is degraded
func (e *FallbackEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.real == nil || e.state.Degraded() {
		return e.mock.Embed(ctx, text)
	}

	vec, err := e.real.Embed(ctx, text)
	if err != nil {
		if isQuotaError(err) {
			e.state.Degrade()
		}
		return e.mock.Embed(ctx, text)
	}
	return vec, nil
}

// isQuotaError reports whether the error indicates exhausted quota or an
// unavailable API, the triggers for one-way degradation to mock mode.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "insufficient") ||
		strings.Contains(msg, "429")
}
