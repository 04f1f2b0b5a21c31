package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/akolanti/ragchain/internal/config"
	"github.com/akolanti/ragchain/internal/domain/jobModel"
)

func TestInMemoryJobStore_Expires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := InitInMemoryJobStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_ = s.SaveJob(ctx, jobModel.Job{Id: "old"})
	now = now.Add(config.RedisJobStoreTTL + time.Second)

	_, found := s.GetJob(ctx, "old")
	assert.False(t, found)

	_ = s.SaveJob(ctx, jobModel.Job{Id: "new"})
	assert.Equal(t, 1, s.Len())
}
