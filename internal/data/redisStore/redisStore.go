package redisStore

import (
	"context"
	"fmt"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

// New connects to the redis database db at addr and pings it.
func New(ctx context.Context, addr string, password string, db int) (*Store, error) {
	if addr == "" {
		addr = config.RedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    db,
		ContextTimeoutEnabled: true,
		ReadTimeout:           config.RedisIOTimeout,
		WriteTimeout:          config.RedisIOTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s db %d is offline: %w", addr, db, err)
	}

	s := NewFromClient(client)
	s.Type = db
	s.logger.Info("Redis store init successfully", "db", db)
	return s, nil
}

// NewFromClient wraps an existing client, e.g. one pointed at miniredis.
func NewFromClient(client *redis.Client) *Store {
	return &Store{
		client: client,
		Type:   client.Options().DB,
		logger: logger_i.NewLogger("Redis Store"),
	}
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Error closing redis client", "error", err)
		return err
	}
	s.logger.Info("Redis store closed successfully", "db", s.Type)
	return nil
}
