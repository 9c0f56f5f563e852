package model

// Config holds the full application configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm"`
	Retrieval    RetrievalConfig    `yaml:"retrieval"`
	Cache        CacheConfig        `yaml:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	Output       OutputConfig       `yaml:"output"`
}

// LLMConfig holds language-model provider configuration
type LLMConfig struct {
	// Provider name: "openai" or "mock"
	Provider string `yaml:"provider"`

	// Model for chat adjudication calls
	Model string `yaml:"model"`

	// EmbeddingModel for retrieval embeddings
	EmbeddingModel string `yaml:"embedding_model"`

	// APIKey for OpenAI
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL for custom endpoints
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout for API requests, seconds
	Timeout int `yaml:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens"`
}

// RetrievalConfig controls policy clause retrieval
type RetrievalConfig struct {
	// Collection is the logical clause collection name
	Collection string `yaml:"collection"`

	// TopN candidate clauses fetched per query
	TopN int `yaml:"top_n"`

	// MinScore is the cosine similarity floor below which no
	// exclusion is considered matched
	MinScore float64 `yaml:"min_score"`

	// EmbeddingDimensions of the vector space
	EmbeddingDimensions int `yaml:"embedding_dimensions"`
}

// CacheConfig controls embedding memoization. With Dir set, vectors
// are also persisted to disk and survive restarts.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLMinutes int    `yaml:"ttl_minutes"`
	Dir        string `yaml:"dir,omitempty"`
}

// RateLimitingConfig throttles outbound API calls
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// ConcurrencyConfig controls batch processing parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-ada-002",
			Timeout:        30,
			MaxTokens:      1000,
		},
		Retrieval: RetrievalConfig{
			Collection:          "main_exclusions",
			TopN:                3,
			MinScore:            0.3,
			EmbeddingDimensions: 1536,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLMinutes: 60,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
