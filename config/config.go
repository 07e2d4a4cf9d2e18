// Package config reads runtime configuration from environment variables,
// optionally seeded from a .env file. Every knob has a production default so
// a bare environment with just the API keys boots.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	// Provider selects the generation backend: openai, anthropic or gemini.
	Provider string
	Model    string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	EmbeddingModel   string
	EmbeddingBaseURL string

	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantUseTLS     bool
	QdrantCollection string

	RerankerEndpoint string
	RerankerModel    string
	RerankerAPIKey   string

	VectorTopK  int
	BM25TopK    int
	HybridTopK  int
	RRFK        int
	RerankTopN  int
	PathTimeout time.Duration

	MemoryTokenLimit int
	SkipRouting      bool

	CorpusPath string
	ListenAddr string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider: getString("LLM_PROVIDER", "openai"),
		Model:    getString("LLM_MODEL", ""),

		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),

		EmbeddingModel:   getString("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingBaseURL: os.Getenv("EMBEDDING_BASE_URL"),

		QdrantHost:       getString("QDRANT_HOST", "localhost"),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: getString("QDRANT_COLLECTION", "legal_decrees"),

		RerankerEndpoint: os.Getenv("RERANKER_ENDPOINT"),
		RerankerModel:    getString("RERANKER_MODEL", "BAAI/bge-reranker-v2-m3"),
		RerankerAPIKey:   os.Getenv("RERANKER_API_KEY"),

		CorpusPath: getString("CORPUS_PATH", "data/corpus.json"),
		ListenAddr: getString("LISTEN_ADDR", ":8000"),

		LogLevel:  getString("LOG_LEVEL", "info"),
		LogFormat: getString("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.QdrantPort, err = getInt("QDRANT_PORT", 6334); err != nil {
		return nil, err
	}
	if cfg.QdrantUseTLS, err = getBool("QDRANT_USE_TLS", false); err != nil {
		return nil, err
	}
	if cfg.VectorTopK, err = getInt("VECTOR_TOP_K", 15); err != nil {
		return nil, err
	}
	if cfg.BM25TopK, err = getInt("BM25_TOP_K", 15); err != nil {
		return nil, err
	}
	if cfg.HybridTopK, err = getInt("HYBRID_TOP_K", 25); err != nil {
		return nil, err
	}
	if cfg.RRFK, err = getInt("RRF_K", 30); err != nil {
		return nil, err
	}
	if cfg.RerankTopN, err = getInt("RERANK_TOP_N", 7); err != nil {
		return nil, err
	}
	if cfg.MemoryTokenLimit, err = getInt("MEMORY_TOKEN_LIMIT", 12000); err != nil {
		return nil, err
	}
	if cfg.SkipRouting, err = getBool("SKIP_ROUTING", false); err != nil {
		return nil, err
	}
	if cfg.PathTimeout, err = getDuration("RETRIEVAL_PATH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required with LLM_PROVIDER=openai")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required with LLM_PROVIDER=anthropic")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required with LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
	return nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
