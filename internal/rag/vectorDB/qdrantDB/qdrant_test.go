package qdrantDB

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
)

func TestPointID_Deterministic(t *testing.T) {
	assert.Equal(t, PointID("odyssey-0"), PointID("odyssey-0"))
	assert.NotEqual(t, PointID("odyssey-0"), PointID("odyssey-1"))
	assert.Len(t, PointID("x"), 36)
}

func TestPayloadRoundTrip(t *testing.T) {
	p, err := toPoint(commonModels.VectorRecord{
		Id:      "doc-3",
		Vector:  []float32{0.1, 0.2},
		Content: "Sing to me of the man, Muse",
		Metadata: commonModels.Metadata{
			"source":      "odyssey.txt",
			"start_index": 3000,
			"keywords":    []string{"epic", "homer"},
		},
	}, 2)
	require.NoError(t, err)

	content, meta := fromPayload(p.Payload)
	assert.Equal(t, "Sing to me of the man, Muse", content)
	assert.Equal(t, "odyssey.txt", meta.String("source"))
	assert.Equal(t, int64(3000), meta["start_index"])
	assert.Equal(t, "epic, homer", meta["keywords"])
	assert.NotContains(t, meta, payloadRecordId)
}

func TestToPoint_DimensionChecked(t *testing.T) {
	_, err := toPoint(commonModels.VectorRecord{Id: "a", Vector: []float32{1}}, 2)
	assert.ErrorIs(t, err, apperrors.ErrDimensionMismatch)

	_, err = toPoint(commonModels.VectorRecord{Vector: []float32{1, 2}}, 2)
	assert.Error(t, err)
}

func TestDocumentFilter_MatchesDocId(t *testing.T) {
	f := documentFilter("/data/books/notes.txt")
	require.Len(t, f.Must, 1)

	field := f.Must[0].GetField()
	require.NotNil(t, field)
	assert.Equal(t, commonModels.MetaDocId, field.Key)
	assert.Equal(t, "/data/books/notes.txt", field.Match.GetKeyword())
}
