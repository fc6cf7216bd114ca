package cache

import (
	"clausecheck/internal/model"
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type ReportCache interface {
	Set(ctx context.Context, report *model.Report) error
	Get(ctx context.Context, contractID string) (*model.Report, error)
	Delete(ctx context.Context, contractID string) error
}

type reportCache struct {
	client *redis.Client
}

func NewReportCache(client *redis.Client) ReportCache {
	return &reportCache{
		client: client,
	}
}

func (c *reportCache) Set(ctx context.Context, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "report:"+report.ContractID, data, 10*time.Minute).Err()
}

func (c *reportCache) Get(ctx context.Context, contractID string) (*model.Report, error) {
	data, err := c.client.Get(ctx, "report:"+contractID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.Report
	err = json.Unmarshal([]byte(data), &report)
	return &report, err
}

func (c *reportCache) Delete(ctx context.Context, contractID string) error {
	return c.client.Del(ctx, "report:"+contractID).Err()
}
