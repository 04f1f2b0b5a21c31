package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/metrics"
	"github.com/akolanti/ragchain/internal/rag/chunker"
	"github.com/akolanti/ragchain/internal/rag/embedding"
	"github.com/akolanti/ragchain/internal/rag/vectorDB"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// Ingester loads documents, splits them and writes the embedded chunks to
// a vector index.
type Ingester struct {
	embedder embedding.Embedder
	index    vectorDB.VectorIndex
	fetcher  Fetcher
	opts     Options
	logger   *logger_i.Logger
}

func New(e embedding.Embedder, index vectorDB.VectorIndex, fetcher Fetcher, opts Options) (*Ingester, error) {
	if err := chunker.Validate(opts.ChunkSize, opts.ChunkOverlap); err != nil {
		return nil, err
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = config.EmbeddingBatchSize
	}
	return &Ingester{
		embedder: e,
		index:    index,
		fetcher:  fetcher,
		opts:     opts,
		logger:   logger_i.NewLogger("Document Ingestion"),
	}, nil
}

type Report struct {
	Documents int
	Chunks    int
	Sample    string
	Total     int
}

// Ingest loads source and indexes it.
func (in *Ingester) Ingest(ctx context.Context, source string, name string) (Report, error) {
	docs, err := in.Load(ctx, source, name)
	if err != nil {
		return Report{}, err
	}
	return in.BuildIndex(ctx, docs)
}

// BuildIndex chunks docs, embeds the chunks in batches and inserts them.
// Records left from an earlier ingest of the same documents are removed
// first, so re-ingesting replaces a document instead of growing it.
func (in *Ingester) BuildIndex(ctx context.Context, docs []commonModels.Document) (Report, error) {
	log := in.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	docs = withDocIds(docs)
	for _, id := range distinctDocIds(docs) {
		if err := in.index.DeleteDocument(ctx, id); err != nil {
			return Report{}, fmt.Errorf("clear previous chunks: %w", err)
		}
	}

	chunks, err := chunker.SplitAll(docs, in.opts.ChunkSize, in.opts.ChunkOverlap)
	if err != nil {
		return Report{}, err
	}
	report := Report{Documents: len(docs), Chunks: len(chunks)}
	if len(chunks) > 0 {
		report.Sample = chunks[0].Content
	}
	log.Debug("Processing documents", "documents", len(docs), "chunks", len(chunks))

	for i := 0; i < len(chunks); i += in.opts.BatchSize {
		end := min(i+in.opts.BatchSize, len(chunks))
		if err := in.ingestBatch(ctx, chunks[i:end]); err != nil {
			return report, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
	}

	report.Total, err = in.index.Count(ctx)
	if err != nil {
		return report, fmt.Errorf("count index: %w", err)
	}
	log.Info("Ingestion complete", "chunks", report.Chunks, "total", report.Total)
	return report, nil
}

func (in *Ingester) ingestBatch(ctx context.Context, batch []commonModels.Chunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Content
	}

	start := time.Now()
	vectors, err := in.embedder.EmbedBatch(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return fmt.Errorf("embedding batch failed: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedding batch returned %d vectors for %d chunks", len(vectors), len(batch))
	}

	records := make([]commonModels.VectorRecord, len(batch))
	for i, c := range batch {
		records[i] = commonModels.VectorRecord{Id: c.Id, Vector: vectors[i], Content: c.Content, Metadata: c.Metadata}
	}

	start = time.Now()
	err = in.index.Insert(ctx, records)
	metrics.CaptureExecutionMetrics("vector_insert", time.Since(start))
	if err != nil {
		return fmt.Errorf("index insert failed: %w", err)
	}
	metrics.AddChunksIngested(len(records))
	return nil
}

// withDocIds tags documents that carry no doc_id with their own id.
func withDocIds(docs []commonModels.Document) []commonModels.Document {
	out := make([]commonModels.Document, len(docs))
	for i, d := range docs {
		if d.Metadata.String(commonModels.MetaDocId) == "" {
			d.Metadata = d.Metadata.Clone()
			d.Metadata[commonModels.MetaDocId] = d.Id
		}
		out[i] = d
	}
	return out
}

func distinctDocIds(docs []commonModels.Document) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, d := range docs {
		id := d.Metadata.String(commonModels.MetaDocId)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
