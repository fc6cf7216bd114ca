package cache

import (
	"clausecheck/internal/model"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatusCache keeps the latest pipeline status per contract so status polls
// don't hit MongoDB
type StatusCache interface {
	Set(ctx context.Context, contractID string, status model.PipelineStatus) error
	Get(ctx context.Context, contractID string) (model.PipelineStatus, error)
}

type statusCache struct {
	client *redis.Client
}

func NewStatusCache(client *redis.Client) StatusCache {
	return &statusCache{
		client: client,
	}
}

func (c *statusCache) Set(ctx context.Context, contractID string, status model.PipelineStatus) error {
	return c.client.Set(ctx, "pipeline:status:"+contractID, string(status), time.Hour).Err()
}

// Get returns "" on cache miss
func (c *statusCache) Get(ctx context.Context, contractID string) (model.PipelineStatus, error) {
	val, err := c.client.Get(ctx, "pipeline:status:"+contractID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return model.PipelineStatus(val), nil
}
