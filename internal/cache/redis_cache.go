package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
)

const salesVersionKey = "sales:version"

type RedisReportCache struct {
	client *redis.Client
}

// NewRedisReportCache parses a redis:// URL.
func NewRedisReportCache(url string) (*RedisReportCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisReportCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) GetCommissions(ctx context.Context, key string) (*domain.CommissionReport, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var report domain.CommissionReport
	if err := json.Unmarshal(val, &report); err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *RedisReportCache) SetCommissions(ctx context.Context, key string, report domain.CommissionReport, ttl time.Duration) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisReportCache) SalesVersion(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, salesVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisReportCache) BumpSalesVersion(ctx context.Context) error {
	return c.client.Incr(ctx, salesVersionKey).Err()
}
