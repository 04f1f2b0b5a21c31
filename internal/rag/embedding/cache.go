package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"go.etcd.io/bbolt"

	"github.com/akolanti/ragchain/pkg/logger_i"
)

var cacheBucket = []byte("embeddings")

// CachedEmbedder stores vectors in a bbolt file keyed by sha256(model, text),
// so re-running ingestion over unchanged chunks skips the provider.
type CachedEmbedder struct {
	inner  Embedder
	db     *bbolt.DB
	logger *logger_i.Logger
}

func NewCached(inner Embedder, db *bbolt.DB) (*CachedEmbedder, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache bucket: %w", err)
	}
	return &CachedEmbedder{inner: inner, db: db, logger: logger_i.NewLogger("embedding_cache")}, nil
}

func (c *CachedEmbedder) Model() string { return c.inner.Model() }

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([][]byte, len(texts))
	var missIdx []int
	var missTexts []string

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		for i, t := range texts {
			keys[i] = cacheKey(c.inner.Model(), t)
			if v := b.Get(keys[i]); v != nil {
				out[i] = decodeVector(v)
				continue
			}
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("embedding cache lookup", "hits", len(texts)-len(missTexts), "misses", len(missTexts))
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		for j, i := range missIdx {
			out[i] = fresh[j]
			if err := b.Put(keys[i], encodeVector(fresh[j])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// vectors are still valid, only the cache write failed
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return out, nil
}

func cacheKey(model string, text string) []byte {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return []byte(hex.EncodeToString(h.Sum(nil)))
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
