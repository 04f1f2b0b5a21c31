package vectorDB

import (
	"math"
	"testing"

	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		got := CosineSimilarity(tt.a, tt.b)
		if math.Abs(float64(got)-tt.want) > 1e-6 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTopK(t *testing.T) {
	in := commonModels.RetrievalResult{
		{Content: "c", Score: 0.3},
		{Content: "a", Score: 0.9},
		{Content: "b", Score: 0.5},
		{Content: "d", Score: 0.1},
	}

	got := TopK(in, 2, nil)
	if len(got) != 2 || got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("unexpected top 2: %+v", got)
	}

	got = TopK(in, 10, Threshold(0.4))
	if len(got) != 2 {
		t.Errorf("expected 2 above threshold, got %d", len(got))
	}

	if got := TopK(nil, 3, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
