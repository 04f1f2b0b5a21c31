package config

import (
	"time"
)

const (
	TRACE_ID_KEY = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5
	LimiterSweepInterval        = 5 * time.Minute
	LimiterIdleTTL              = 10 * time.Minute

	//llm
	DefaultLLMProvider    = ProviderGemini
	DefaultOpenAIModel    = "gpt-3.5-turbo"
	DefaultAnthropicModel = "claude-3-haiku-20240307"
	DefaultGeminiModel    = "gemini-1.5-flash"
	ModelTemperature      = 0.7
	AnthropicMaxTokens    = 1024

	//embeddings
	DefaultEmbeddingProvider      = ProviderOpenAI
	DefaultOpenAIEmbeddingModel   = "text-embedding-3-small"
	DefaultGoogleEmbeddingModel   = "gemini-embedding-001"
	EmbeddingOutputDimensionality = 1536
	EmbeddingBatchSize            = 100

	//vectorDB
	VectorBackendBolt    = "bolt"
	VectorBackendQdrant  = "qdrant"
	DefaultVectorBackend = VectorBackendBolt
	DefaultVectorDBPath  = "db/chroma_db.bolt"
	EmbeddingCachePath   = "db/embedding_cache.bolt"
	DefaultCollection    = "documents"
	QdrantHost           = "localhost"
	QdrantGrpcPort       = 6334
	QdrantUseTLS         = false
	QdrantPoolSize       = 1
	BoltOpenTimeout      = 5 * time.Second

	//splitter and retriever, same literals the tutorials use
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 0
	DefaultRetrievalK     = 3
	DefaultScoreThreshold = 0.4

	//external calls
	DefaultCallTimeout = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 2 * time.Second
	FetchTimeout       = 30 * time.Second
	MaxFetchBytes      = 10 << 20

	//http client pool
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	//agent
	AgentMaxIterations = 5
	WikipediaAPIBase   = "https://en.wikipedia.org/api/rest_v1"

	//worker pool
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute
	BufferLimit                     = 100
	JobTimeout                      = 60 * time.Second

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	ServerListenAddr       = ":3000"
	UploadDir              = "uploads"

	//redis
	RedisAddr            = "127.0.0.1:6379"
	RedisJobStore        = 0
	RedisHistoryStore    = 1
	RedisJobStoreTTL     = 24 * time.Hour
	RedisHistoryStoreTTL = 24 * time.Hour * 30
	RedisPingTimeout     = 3 * time.Second
	RedisIOTimeout       = 30 * time.Second

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGoogle    = "google"
)
