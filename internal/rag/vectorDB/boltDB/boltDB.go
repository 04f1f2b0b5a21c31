// Package boltDB is a file-backed VectorIndex. Records live in a bbolt
// bucket per collection and are mirrored in memory for brute-force cosine
// search.
package boltDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/akolanti/ragchain/internal/apperrors"
	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/internal/rag/vectorDB"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

var (
	bucketRecords = []byte("records")
	keyDimension  = []byte("dimension")
)

type Store struct {
	db         *bbolt.DB
	collection []byte
	logger     *logger_i.Logger

	mu        sync.RWMutex
	dimension int
	records   []commonModels.VectorRecord
	position  map[string]int
}

var _ vectorDB.VectorIndex = (*Store)(nil)

// Open loads or creates the collection stored at path. A path that does not
// exist yet starts empty.
func Open(path string, collection string) (*Store, error) {
	if collection == "" {
		return nil, apperrors.NewConfigError("VECTOR_COLLECTION", "empty collection name")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create vector db dir: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: config.BoltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open vector db %s: %w", path, err)
	}

	s := &Store{
		db:         db,
		collection: []byte(collection),
		logger:     logger_i.NewLogger("bolt_vector_db").With("collection", collection),
		position:   make(map[string]int),
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	s.logger.Debug("vector db opened", "path", path, "records", len(s.records))
	return s, nil
}

// Exists reports whether path already holds a non-empty collection.
func Exists(path string, collection string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: config.BoltOpenTimeout, ReadOnly: true})
	if err != nil {
		return false, fmt.Errorf("open vector db %s: %w", path, err)
	}
	defer db.Close()

	found := false
	err = db.View(func(tx *bbolt.Tx) error {
		col := tx.Bucket([]byte(collection))
		if col == nil {
			return nil
		}
		if rec := col.Bucket(bucketRecords); rec != nil {
			found = rec.Stats().KeyN > 0
		}
		return nil
	})
	return found, err
}

func (s *Store) load() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		col, err := tx.CreateBucketIfNotExists(s.collection)
		if err != nil {
			return err
		}
		rec, err := col.CreateBucketIfNotExists(bucketRecords)
		if err != nil {
			return err
		}
		if d := col.Get(keyDimension); d != nil {
			if s.dimension, err = strconv.Atoi(string(d)); err != nil {
				return fmt.Errorf("corrupt dimension %q: %w", d, err)
			}
		}

		return rec.ForEach(func(k, v []byte) error {
			var r commonModels.VectorRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode record %s: %w", k, err)
			}
			s.position[r.Id] = len(s.records)
			s.records = append(s.records, r)
			return nil
		})
	})
}

func (s *Store) Insert(ctx context.Context, records []commonModels.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.dimension
	if dim == 0 {
		dim = len(records[0].Vector)
	}
	for _, r := range records {
		if r.Id == "" {
			return errors.New("vector record without id")
		}
		if len(r.Vector) != dim || dim == 0 {
			return fmt.Errorf("record %s has %d dimensions, index has %d: %w", r.Id, len(r.Vector), dim, apperrors.ErrDimensionMismatch)
		}
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		col := tx.Bucket(s.collection)
		if s.dimension == 0 {
			if err := col.Put(keyDimension, []byte(strconv.Itoa(dim))); err != nil {
				return err
			}
		}
		rec := col.Bucket(bucketRecords)
		for _, r := range records {
			data, err := json.Marshal(r)
			if err != nil {
				return err
			}
			if err := rec.Put([]byte(r.Id), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt insert: %w", err)
	}

	s.dimension = dim
	for _, r := range records {
		if i, ok := s.position[r.Id]; ok {
			s.records[i] = r
			continue
		}
		s.position[r.Id] = len(s.records)
		s.records = append(s.records, r)
	}
	s.logger.Debug("inserted records", "count", len(records), "total", len(s.records))
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, docId string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []string
	for _, r := range s.records {
		if r.Metadata.String(commonModels.MetaDocId) == docId {
			stale = append(stale, r.Id)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		rec := tx.Bucket(s.collection).Bucket(bucketRecords)
		for _, id := range stale {
			if err := rec.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bolt delete %s: %w", docId, err)
	}

	kept := s.records[:0]
	s.position = make(map[string]int, len(s.records)-len(stale))
	for _, r := range s.records {
		if r.Metadata.String(commonModels.MetaDocId) == docId {
			continue
		}
		s.position[r.Id] = len(kept)
		kept = append(kept, r)
	}
	s.records = kept
	s.logger.Debug("deleted document records", "docId", docId, "count", len(stale))
	return nil
}

func (s *Store) Query(ctx context.Context, vector []float32, k int, threshold *float32) (commonModels.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 || k <= 0 {
		return commonModels.RetrievalResult{}, nil
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(vector), s.dimension, apperrors.ErrDimensionMismatch)
	}

	scored := make(commonModels.RetrievalResult, 0, len(s.records))
	for _, r := range s.records {
		scored = append(scored, commonModels.ScoredChunk{
			Content:  r.Content,
			Score:    vectorDB.CosineSimilarity(vector, r.Vector),
			Metadata: r.Metadata,
		})
	}
	return vectorDB.TopK(scored, k, threshold), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
