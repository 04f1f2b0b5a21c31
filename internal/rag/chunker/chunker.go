// Package chunker splits documents into fixed-size, optionally overlapping
// character windows.
package chunker

import (
	"fmt"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

// Split cuts doc.Content into windows of at most chunkSize runes. Each
// window after the first starts chunkSize-overlap runes after the previous
// one, so neighbours share exactly overlap runes. The last window may be
// shorter. Empty content yields no chunks.
func Split(doc commonModels.Document, chunkSize int, overlap int) ([]commonModels.Chunk, error) {
	if err := Validate(chunkSize, overlap); err != nil {
		return nil, err
	}

	text := []rune(doc.Content)
	if len(text) == 0 {
		return nil, nil
	}

	step := chunkSize - overlap
	chunks := make([]commonModels.Chunk, 0, Count(len(text), chunkSize, overlap))

	for start := 0; ; start += step {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}

		meta := doc.Metadata.Clone()
		meta["start_index"] = start
		chunks = append(chunks, commonModels.Chunk{
			Id:       fmt.Sprintf("%s-%d", doc.Id, len(chunks)),
			DocId:    doc.Id,
			Start:    start,
			Content:  string(text[start:end]),
			Metadata: meta,
		})

		if end == len(text) {
			break
		}
	}
	return chunks, nil
}

// SplitAll splits every document, keeping document order.
func SplitAll(docs []commonModels.Document, chunkSize int, overlap int) ([]commonModels.Chunk, error) {
	var all []commonModels.Chunk
	for _, d := range docs {
		c, err := Split(d, chunkSize, overlap)
		if err != nil {
			return nil, err
		}
		all = append(all, c...)
	}
	return all, nil
}

func Validate(chunkSize int, overlap int) error {
	if chunkSize <= 0 {
		return apperrors.NewConfigError("chunk_size", "must be positive, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return apperrors.NewConfigError("chunk_overlap", "must be in [0, %d), got %d", chunkSize, overlap)
	}
	return nil
}

// Count is the number of windows Split produces for a text of length n.
func Count(n int, chunkSize int, overlap int) int {
	if n <= 0 {
		return 0
	}
	if n <= chunkSize {
		return 1
	}
	step := chunkSize - overlap
	return (n - overlap + step - 1) / step
}
