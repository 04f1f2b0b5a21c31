package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/data/redisStore"
	"github.com/akolanti/ragchain/internal/domain/commonModels"
	"github.com/akolanti/ragchain/pkg/logger_i"
)

// RedisHistoryStore keeps each chat as a redis list of JSON messages under
// "history:<id>", next to a "chat:<id>" marker so a chat with no turns yet
// still exists. Both keys expire ttl after the last write.
type RedisHistoryStore struct {
	store  *redisStore.Store
	ttl    time.Duration
	logger *logger_i.Logger
}

func NewRedisHistoryStore(s *redisStore.Store, ttl time.Duration) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  s,
		ttl:    ttl,
		logger: logger_i.NewLogger("HistoryStore"),
	}
}

func markerKey(chatId string) string  { return "chat:" + chatId }
func historyKey(chatId string) string { return "history:" + chatId }

func (s *RedisHistoryStore) Exists(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	found, err := s.store.Exists(ctx, markerKey(chatId))
	if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return found
}

// Init starts chatId with an empty history, dropping any earlier turns.
func (s *RedisHistoryStore) Init(ctx context.Context, chatId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, historyKey(chatId)); err != nil {
		return err
	}
	return s.store.Set(ctx, markerKey(chatId), time.Now().UTC().Format(time.RFC3339), s.ttl)
}

func (s *RedisHistoryStore) Load(ctx context.Context, chatId string) ([]commonModels.Message, error) {
	raw, err := s.store.ListGetAll(ctx, historyKey(chatId))
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", chatId, err)
	}

	out := make([]commonModels.Message, 0, len(raw))
	for i, r := range raw {
		var m commonModels.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("decode history %s entry %d: %w", chatId, i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *RedisHistoryStore) Append(ctx context.Context, chatId string, messages ...commonModels.Message) error {
	if len(messages) == 0 {
		return nil
	}
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)

	values := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, data)
	}

	if err := s.store.ListPush(ctx, historyKey(chatId), s.ttl, []string{markerKey(chatId)}, values...); err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat successfully", "count", len(messages))
	return nil
}
