package qdrantDB

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/vectorDB"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

const (
	payloadContent  = "content"
	payloadRecordId = "record_id"
)

type Store struct {
	client     *qdrant.Client
	collection string
	dimension  int
	logger     *logger_i.Logger
}

var _ vectorDB.VectorIndex = (*Store)(nil)

type Options struct {
	Host       string
	Port       int
	Collection string
	Dimension  int
}

func NewClient(opts Options) (*qdrant.Client, error) {
	host, port := opts.Host, opts.Port
	if host == "" {
		host = config.QdrantHost
	}
	if port == 0 {
		port = config.QdrantGrpcPort
	}
	return qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
}

// Open connects and creates the collection when it does not exist yet.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Collection == "" {
		return nil, apperrors.NewConfigError("VECTOR_COLLECTION", "empty collection name")
	}
	if opts.Dimension <= 0 {
		opts.Dimension = config.EmbeddingOutputDimensionality
	}
	client, err := NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	s := &Store{
		client:     client,
		collection: opts.Collection,
		dimension:  opts.Dimension,
		logger:     logger_i.NewLogger("Qdrant").With("collection", opts.Collection),
	}
	if err := s.createCollection(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create collection %s: %w", opts.Collection, err)
	}
	return s, nil
}

// Exists reports whether the collection exists and holds at least one point.
func Exists(ctx context.Context, opts Options) (bool, error) {
	client, err := NewClient(opts)
	if err != nil {
		return false, err
	}
	defer client.Close()

	ok, err := client.CollectionExists(ctx, opts.Collection)
	if err != nil || !ok {
		return false, err
	}
	n, err := client.Count(ctx, &qdrant.CountPoints{CollectionName: opts.Collection, Exact: qdrant.PtrOf(true)})
	return n > 0, err
}

func (s *Store) createCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	s.logger.Info("creating collection", "dimension", s.dimension)
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(s.dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (s *Store) Insert(ctx context.Context, records []commonModels.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]*qdrant.PointStruct, 0, len(records))
	for _, r := range records {
		p, err := toPoint(r, s.dimension)
		if err != nil {
			return err
		}
		points = append(points, p)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, docId string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelectorFilter(documentFilter(docId)),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete %s: %w", docId, err)
	}
	return nil
}

func documentFilter(docId string) *qdrant.Filter {
	return &qdrant.Filter{Must: []*qdrant.Condition{qdrant.NewMatch(commonModels.MetaDocId, docId)}}
}

func (s *Store) Query(ctx context.Context, vector []float32, k int, threshold *float32) (commonModels.RetrievalResult, error) {
	if k <= 0 {
		return commonModels.RetrievalResult{}, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query has %d dimensions, collection has %d: %w", len(vector), s.dimension, apperrors.ErrDimensionMismatch)
	}
	log := s.logger.With(config.TRACE_ID_KEY, ctx.Value(config.TRACE_ID_KEY))

	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		ScoreThreshold: threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		log.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	out := make(commonModels.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		content, meta := fromPayload(hit.Payload)
		out = append(out, commonModels.ScoredChunk{Content: content, Score: hit.Score, Metadata: meta})
	}
	log.Debug("Found matches", "count", len(out))
	return vectorDB.TopK(out, k, threshold), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.collection, Exact: qdrant.PtrOf(true)})
	return int(n), err
}

func (s *Store) Close() error {
	s.logger.Info("Closing Qdrant")
	return s.client.Close()
}

// PointID maps a record id onto the UUID qdrant requires.
func PointID(recordId string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(recordId)).String()
}

func toPoint(r commonModels.VectorRecord, dimension int) (*qdrant.PointStruct, error) {
	if r.Id == "" {
		return nil, errors.New("vector record without id")
	}
	if len(r.Vector) != dimension {
		return nil, fmt.Errorf("record %s has %d dimensions, collection has %d: %w", r.Id, len(r.Vector), dimension, apperrors.ErrDimensionMismatch)
	}

	payload := map[string]any(r.Metadata.Normalize())
	payload[payloadContent] = r.Content
	payload[payloadRecordId] = r.Id

	values, err := qdrant.TryValueMap(payload)
	if err != nil {
		return nil, fmt.Errorf("record %s payload: %w", r.Id, err)
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(PointID(r.Id)),
		Vectors: qdrant.NewVectors(r.Vector...),
		Payload: values,
	}, nil
}

func fromPayload(payload map[string]*qdrant.Value) (string, commonModels.Metadata) {
	meta := make(commonModels.Metadata, len(payload))
	content := ""
	for k, v := range payload {
		switch k {
		case payloadContent:
			content = v.GetStringValue()
			continue
		case payloadRecordId:
			continue
		}
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			meta[k] = kind.StringValue
		case *qdrant.Value_IntegerValue:
			meta[k] = kind.IntegerValue
		case *qdrant.Value_DoubleValue:
			meta[k] = kind.DoubleValue
		case *qdrant.Value_BoolValue:
			meta[k] = kind.BoolValue
		}
	}
	return content, meta
}
