package vectorDB

import (
	"context"
	"math"
	"sort"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

// VectorIndex stores embedded chunks and answers nearest-neighbour queries.
// Insert with an existing id replaces that record. Query returns at most k
// results in descending score order; when threshold is non-nil every result
// scores at least *threshold. An empty result is not an error.
// DeleteDocument removes every record whose doc_id metadata equals docId.
type VectorIndex interface {
	Insert(ctx context.Context, records []commonModels.VectorRecord) error
	DeleteDocument(ctx context.Context, docId string) error
	Query(ctx context.Context, vector []float32, k int, threshold *float32) (commonModels.RetrievalResult, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

func Threshold(v float32) *float32 { return &v }

func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// TopK keeps the k best scored chunks at or above threshold.
func TopK(scored commonModels.RetrievalResult, k int, threshold *float32) commonModels.RetrievalResult {
	out := make(commonModels.RetrievalResult, 0, len(scored))
	for _, s := range scored {
		if threshold != nil && s.Score < *threshold {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k >= 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
