package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recopesa/intake-backend/internal/config"
	"github.com/recopesa/intake-backend/internal/domain"
)

const (
	summaryKeyPrefix = "intake:summary"
	configKey        = "intake:config"
	scanBatchSize    = 100
)

// SummaryCache caches the dashboard intake summary per filter. Every report
// mutation invalidates the whole prefix.
type SummaryCache interface {
	Get(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, bool, error)
	Set(ctx context.Context, filter *domain.ReportFilter, summary *domain.IntakeSummary) error
	InvalidateAll(ctx context.Context) error
}

// ConfigCache caches the singleton surcharge configuration between the
// settings screen and finish operations.
type ConfigCache interface {
	Get(ctx context.Context) (*domain.SystemConfig, bool, error)
	Set(ctx context.Context, cfg *domain.SystemConfig) error
	Invalidate(ctx context.Context) error
}

// New builds the summary and config caches. When caching is disabled both
// fall back to no-ops.
func New(cfg config.CacheConfig) (SummaryCache, ConfigCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, &noopConfigCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	return &redisSummaryCache{client: client, ttl: ttl},
		&redisConfigCache{client: client, ttl: ttl}, nil
}

// NewNoop returns disabled caches, for tests and cache-less deployments.
func NewNoop() (SummaryCache, ConfigCache) {
	return &noopSummaryCache{}, &noopConfigCache{}
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisSummaryCache) Get(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, bool, error) {
	payload, err := c.client.Get(ctx, buildSummaryKey(filter)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.IntakeSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode intake summary cache: %w", err)
	}
	return &summary, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, filter *domain.ReportFilter, summary *domain.IntakeSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode intake summary cache: %w", err)
	}
	if err := c.client.Set(ctx, buildSummaryKey(filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSummaryCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, summaryKeyPrefix, scanBatchSize)
}

type redisConfigCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisConfigCache) Get(ctx context.Context) (*domain.SystemConfig, bool, error) {
	payload, err := c.client.Get(ctx, configKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var cfg domain.SystemConfig
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, false, fmt.Errorf("decode config cache: %w", err)
	}
	return &cfg, true, nil
}

func (c *redisConfigCache) Set(ctx context.Context, cfg *domain.SystemConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config cache: %w", err)
	}
	if err := c.client.Set(ctx, configKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisConfigCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, configKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func buildSummaryKey(filter *domain.ReportFilter) string {
	if filter == nil {
		return summaryKeyPrefix + ":all"
	}

	parts := []string{}
	if filter.StartDate != nil {
		parts = append(parts, "from="+filter.StartDate.Format(time.RFC3339))
	}
	if filter.EndDate != nil {
		parts = append(parts, "to="+filter.EndDate.Format(time.RFC3339))
	}
	if filter.SupplierID != "" {
		parts = append(parts, "supplier="+filter.SupplierID)
	}
	if filter.ProductID != "" {
		parts = append(parts, "product="+filter.ProductID)
	}
	if filter.Search != "" {
		parts = append(parts, "search="+filter.Search)
	}
	if len(parts) == 0 {
		return summaryKeyPrefix + ":all"
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "&")))
	return summaryKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

type noopSummaryCache struct{}

func (noopSummaryCache) Get(ctx context.Context, filter *domain.ReportFilter) (*domain.IntakeSummary, bool, error) {
	return nil, false, nil
}

func (noopSummaryCache) Set(ctx context.Context, filter *domain.ReportFilter, summary *domain.IntakeSummary) error {
	return nil
}

func (noopSummaryCache) InvalidateAll(ctx context.Context) error {
	return nil
}

type noopConfigCache struct{}

func (noopConfigCache) Get(ctx context.Context) (*domain.SystemConfig, bool, error) {
	return nil, false, nil
}

func (noopConfigCache) Set(ctx context.Context, cfg *domain.SystemConfig) error {
	return nil
}

func (noopConfigCache) Invalidate(ctx context.Context) error {
	return nil
}
