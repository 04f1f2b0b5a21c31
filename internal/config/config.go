package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/util"
	"github.com/joho/godotenv"
)

type Config struct {
	LLMProvider     string
	ChatModel       string
	OpenAIKey       string
	AnthropicKey    string
	GoogleKey       string
	WikipediaURL    string
	EmbeddingVendor string
	EmbeddingModel  string
	EmbeddingCache  bool

	VectorBackend string
	VectorDBPath  string
	Collection    string
	QdrantHost    string
	QdrantPort    int

	RedisAddr     string
	RedisPassword string

	ChunkSize      int
	ChunkOverlap   int
	RetrievalK     int
	ScoreThreshold float64

	// ChatScoreThreshold filters passages for conversational turns. Zero
	// keeps the top k regardless of score.
	ChatScoreThreshold float64

	CallTimeout time.Duration
	MaxRetries  int
	RetryDelay  time.Duration

	LogLevel  string
	LogFormat string

	ListenAddr   string
	AuthToken    string
	NoAuthBypass bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LLMProvider:     strings.ToLower(getEnv("LLM_PROVIDER", DefaultLLMProvider)),
		ChatModel:       os.Getenv("CHAT_MODEL"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		GoogleKey:       firstNonEmpty(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GEMINI_API_KEY")),
		WikipediaURL:    getEnv("WIKIPEDIA_URL", WikipediaAPIBase),
		EmbeddingVendor: strings.ToLower(getEnv("EMBEDDING_PROVIDER", DefaultEmbeddingProvider)),
		EmbeddingModel:  os.Getenv("EMBEDDING_MODEL"),
		EmbeddingCache:  getEnvBool("EMBEDDING_CACHE", true),
		VectorBackend:   strings.ToLower(getEnv("VECTOR_BACKEND", DefaultVectorBackend)),
		VectorDBPath:    getEnv("VECTOR_DB_PATH", DefaultVectorDBPath),
		Collection:      getEnv("VECTOR_COLLECTION", DefaultCollection),
		QdrantHost:      getEnv("QDRANT_HOST", QdrantHost),
		QdrantPort:      getEnvInt("QDRANT_PORT", QdrantGrpcPort),
		RedisAddr:       getEnv("REDIS_ADDR", RedisAddr),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ChunkSize:       getEnvInt("CHUNK_SIZE", DefaultChunkSize),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", DefaultChunkOverlap),
		RetrievalK:      getEnvInt("RETRIEVAL_K", DefaultRetrievalK),
		ScoreThreshold:  getEnvFloat("SCORE_THRESHOLD", DefaultScoreThreshold),
		CallTimeout:     getEnvDuration("CALL_TIMEOUT", DefaultCallTimeout),
		MaxRetries:      getEnvInt("MAX_RETRIES", DefaultMaxRetries),
		RetryDelay:      getEnvDuration("RETRY_DELAY", DefaultRetryDelay),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		ListenAddr:      getEnv("LISTEN_ADDR", ServerListenAddr),
		AuthToken:       os.Getenv("AUTH_TOKEN"),
		NoAuthBypass:    getEnvBool("NO_AUTH_BYPASS", false),
	}
	cfg.ChatScoreThreshold = getEnvFloat("CHAT_SCORE_THRESHOLD", 0)
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel(cfg.LLMProvider)
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel(cfg.EmbeddingVendor)
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges only; credentials are checked per command
// with RequireKeys.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return apperrors.NewConfigError("LLM_PROVIDER", "unknown provider %q", c.LLMProvider)
	}
	switch c.EmbeddingVendor {
	case ProviderOpenAI, ProviderGoogle, ProviderGemini:
	default:
		return apperrors.NewConfigError("EMBEDDING_PROVIDER", "unknown provider %q", c.EmbeddingVendor)
	}
	switch c.VectorBackend {
	case VectorBackendBolt, VectorBackendQdrant:
	default:
		return apperrors.NewConfigError("VECTOR_BACKEND", "unknown backend %q", c.VectorBackend)
	}
	if c.ChunkSize <= 0 {
		return apperrors.NewConfigError("CHUNK_SIZE", "must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return apperrors.NewConfigError("CHUNK_OVERLAP", "must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.RetrievalK <= 0 {
		return apperrors.NewConfigError("RETRIEVAL_K", "must be positive, got %d", c.RetrievalK)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return apperrors.NewConfigError("SCORE_THRESHOLD", "must be 0-1, got %f", c.ScoreThreshold)
	}
	if c.ChatScoreThreshold < 0 || c.ChatScoreThreshold > 1 {
		return apperrors.NewConfigError("CHAT_SCORE_THRESHOLD", "must be 0-1, got %f", c.ChatScoreThreshold)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return apperrors.NewConfigError("MAX_RETRIES", "must be 0-10, got %d", c.MaxRetries)
	}
	if c.CallTimeout <= 0 {
		return apperrors.NewConfigError("CALL_TIMEOUT", "must be positive, got %s", c.CallTimeout)
	}
	return nil
}

// APIKeyFor returns the credential for a provider and the env key it comes from.
func (c *Config) APIKeyFor(provider string) (string, string) {
	switch provider {
	case ProviderOpenAI:
		return c.OpenAIKey, "OPENAI_API_KEY"
	case ProviderAnthropic:
		return c.AnthropicKey, "ANTHROPIC_API_KEY"
	case ProviderGemini, ProviderGoogle:
		return c.GoogleKey, "GOOGLE_API_KEY"
	}
	return "", ""
}

// RequireKeys fails with a ConfigError when a provider a command depends on
// has no credential.
func (c *Config) RequireKeys(providers ...string) error {
	for _, p := range providers {
		key, name := c.APIKeyFor(p)
		if name == "" {
			return apperrors.NewConfigError("provider", "unknown provider %q", p)
		}
		if key == "" {
			return apperrors.NewConfigError(name, "is required for provider %s", p)
		}
	}
	return nil
}

// RetryPolicy is the backoff every external client uses.
func (c *Config) RetryPolicy() util.RetryPolicy {
	return util.RetryPolicy{MaxRetries: c.MaxRetries, BaseDelay: c.RetryDelay, Timeout: c.CallTimeout}
}

func DefaultChatModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicModel
	default:
		return DefaultGeminiModel
	}
}

func DefaultEmbeddingModel(provider string) string {
	if provider == ProviderGoogle || provider == ProviderGemini {
		return DefaultGoogleEmbeddingModel
	}
	return DefaultOpenAIEmbeddingModel
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
