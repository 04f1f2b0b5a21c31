// Package app builds the clients a command needs from configuration and
// releases them together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/rag"
	"github.com/akolanti/ragchain/internal/rag/embedding"
	"github.com/akolanti/ragchain/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/ragchain/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/ragchain/internal/rag/ingest"
	"github.com/akolanti/ragchain/internal/rag/llm"
	"github.com/akolanti/ragchain/internal/rag/vectorDB"
	"github.com/akolanti/ragchain/internal/rag/vectorDB/boltDB"
	"github.com/akolanti/ragchain/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Needs int

const (
	NeedModel Needs = 1 << iota
	NeedRetrieval
)

// Session holds the clients of one run. Fields a command did not ask for
// stay nil.
type Session struct {
	Config   *config.Config
	Model    llm.ChatModel
	Embedder embedding.Embedder
	Index    vectorDB.VectorIndex

	cache  *bbolt.DB
	logger *logger_i.Logger
}

func Open(ctx context.Context, cfg *config.Config, needs Needs) (*Session, error) {
	s := &Session{Config: cfg, logger: logger_i.NewLogger("session")}

	if needs&NeedModel != 0 {
		m, err := llm.New(ctx, cfg, cfg.LLMProvider)
		if err != nil {
			return nil, err
		}
		s.Model = m
	}

	if needs&NeedRetrieval != 0 {
		if err := s.openRetrieval(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) openRetrieval(ctx context.Context) error {
	e, err := NewEmbedder(ctx, s.Config)
	if err != nil {
		return err
	}
	s.Embedder = e

	if s.Config.EmbeddingCache {
		db, err := openBolt(config.EmbeddingCachePath)
		if err != nil {
			return fmt.Errorf("open embedding cache: %w", err)
		}
		s.cache = db
		cached, err := embedding.NewCached(e, db)
		if err != nil {
			return err
		}
		s.Embedder = cached
	}

	idx, err := NewIndex(ctx, s.Config)
	if err != nil {
		return err
	}
	s.Index = idx
	return nil
}

// NewEmbedder builds the embedding client of the configured vendor.
func NewEmbedder(ctx context.Context, cfg *config.Config) (embedding.Embedder, error) {
	if err := cfg.RequireKeys(cfg.EmbeddingVendor); err != nil {
		return nil, err
	}
	key, _ := cfg.APIKeyFor(cfg.EmbeddingVendor)

	switch cfg.EmbeddingVendor {
	case config.ProviderOpenAI:
		return openaiEmbedding.New(key, cfg.EmbeddingModel, cfg.RetryPolicy()), nil
	case config.ProviderGoogle, config.ProviderGemini:
		c, err := googleEmbedding.New(ctx, key, cfg.EmbeddingModel, cfg.RetryPolicy())
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, apperrors.NewConfigError("EMBEDDING_PROVIDER", "unknown provider %q", cfg.EmbeddingVendor)
}

// NewIndex opens the configured vector backend, creating the collection if
// needed.
func NewIndex(ctx context.Context, cfg *config.Config) (vectorDB.VectorIndex, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendBolt:
		st, err := boltDB.Open(cfg.VectorDBPath, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.VectorBackendQdrant:
		st, err := qdrantDB.Open(ctx, qdrantOptions(cfg))
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, apperrors.NewConfigError("VECTOR_BACKEND", "unknown backend %q", cfg.VectorBackend)
}

// IndexExists reports whether the configured collection already holds
// records, without creating anything.
func IndexExists(ctx context.Context, cfg *config.Config) (bool, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendBolt:
		return boltDB.Exists(cfg.VectorDBPath, cfg.Collection)
	case config.VectorBackendQdrant:
		return qdrantDB.Exists(ctx, qdrantOptions(cfg))
	}
	return false, apperrors.NewConfigError("VECTOR_BACKEND", "unknown backend %q", cfg.VectorBackend)
}

func qdrantOptions(cfg *config.Config) qdrantDB.Options {
	return qdrantDB.Options{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		Collection: cfg.Collection,
		Dimension:  config.EmbeddingOutputDimensionality,
	}
}

func openBolt(path string) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return bbolt.Open(path, 0600, &bbolt.Options{Timeout: config.BoltOpenTimeout})
}

func (s *Session) Ingester() (*ingest.Ingester, error) {
	if s.Embedder == nil || s.Index == nil {
		return nil, errors.New("session opened without retrieval")
	}
	return ingest.New(s.Embedder, s.Index, ingest.NewWebFetcher(s.Config.RetryPolicy()), ingest.Options{
		ChunkSize:    s.Config.ChunkSize,
		ChunkOverlap: s.Config.ChunkOverlap,
	})
}

// Options are the retrieval settings for one-shot queries. A zero threshold
// means no threshold.
func (s *Session) Options() rag.Options {
	return s.retrievalOptions(s.Config.ScoreThreshold)
}

// ChatOptions are the retrieval settings for conversational turns, which
// take the top k passages unless CHAT_SCORE_THRESHOLD is set.
func (s *Session) ChatOptions() rag.Options {
	return s.retrievalOptions(s.Config.ChatScoreThreshold)
}

func (s *Session) retrievalOptions(threshold float64) rag.Options {
	opts := rag.Options{K: s.Config.RetrievalK, CallTimeout: s.Config.CallTimeout}
	if threshold > 0 {
		opts.Threshold = vectorDB.Threshold(float32(threshold))
	}
	return opts
}

func (s *Session) ConversationalRAG() *rag.ConversationalRAG {
	return rag.NewConversationalRAG(s.Model, s.Embedder, s.Index, s.ChatOptions())
}

func (s *Session) Retriever() *rag.Retriever {
	return rag.NewRetriever(s.Embedder, s.Index, s.Options())
}

func (s *Session) Close() error {
	var errs []error
	if s.Index != nil {
		errs = append(errs, s.Index.Close())
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
	}
	err := errors.Join(errs...)
	if err != nil {
		s.logger.Error("closing session", "error", err)
	}
	return err
}
