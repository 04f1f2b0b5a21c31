package rag

import (
	"context"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/rag/embedding"
	"github.com/akolanti/ragchain/internal/rag/vectorDB"
)

// Retriever embeds a query and looks up its nearest passages.
type Retriever struct {
	embedder  embedding.Embedder
	index     vectorDB.VectorIndex
	k         int
	threshold *float32
	timeout   time.Duration
}

func NewRetriever(e embedding.Embedder, index vectorDB.VectorIndex, opts Options) *Retriever {
	if opts.K <= 0 {
		opts.K = config.DefaultRetrievalK
	}
	return &Retriever{embedder: e, index: index, k: opts.K, threshold: opts.Threshold, timeout: opts.CallTimeout}
}

// WithSearch returns a copy using k and threshold instead.
func (r *Retriever) WithSearch(k int, threshold *float32) *Retriever {
	cp := *r
	if k > 0 {
		cp.k = k
	}
	cp.threshold = threshold
	return &cp
}

func (r *Retriever) Retrieve(ctx context.Context, query string) (commonModels.RetrievalResult, error) {
	vec, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.search(ctx, vec)
}

func (r *Retriever) embed(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return r.embedder.Embed(ctx, query)
}

func (r *Retriever) search(ctx context.Context, vec []float32) (commonModels.RetrievalResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	res, err := r.index.Query(ctx, vec, r.k, r.threshold)
	if err != nil {
		return nil, err
	}
	metrics.ObserveRetrieved(len(res))
	return res, nil
}
