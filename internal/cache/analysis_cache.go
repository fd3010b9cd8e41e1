// internal/cache/analysis_cache.go
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/havers0n/my-awesome-project-sub004/internal/config"
	"github.com/havers0n/my-awesome-project-sub004/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	abcKeyPrefix      = "analytics:abc"
	xyzKeyPrefix      = "analytics:xyz"
	analysisScanBatch = 100
)

// AnalysisCache caches ABC/XYZ analysis results keyed by their normalized
// request parameters. Forecasts are not cached: they are single-product and
// cheap relative to a catalog-wide ranking.
type AnalysisCache interface {
	GetAbc(ctx context.Context, productIDs []string, window domain.TimeRange) (*domain.AbcAnalysisResult, bool, error)
	SetAbc(ctx context.Context, productIDs []string, window domain.TimeRange, result *domain.AbcAnalysisResult) error
	GetXyz(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int) (*domain.XyzAnalysisResult, bool, error)
	SetXyz(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int, result *domain.XyzAnalysisResult) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

// NewAnalysisCache returns a redis-backed cache when enabled, a noop otherwise.
func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{client: client, ttl: ttl}, nil
}

// NewNoopAnalysisCache returns the cache that never hits.
func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) GetAbc(ctx context.Context, productIDs []string, window domain.TimeRange) (*domain.AbcAnalysisResult, bool, error) {
	var result domain.AbcAnalysisResult
	ok, err := c.get(ctx, abcKey(productIDs, window), &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisAnalysisCache) SetAbc(ctx context.Context, productIDs []string, window domain.TimeRange, result *domain.AbcAnalysisResult) error {
	return c.set(ctx, abcKey(productIDs, window), result)
}

func (c *redisAnalysisCache) GetXyz(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int) (*domain.XyzAnalysisResult, bool, error) {
	var result domain.XyzAnalysisResult
	ok, err := c.get(ctx, xyzKey(productIDs, window, bucketHours), &result)
	if !ok || err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *redisAnalysisCache) SetXyz(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int, result *domain.XyzAnalysisResult) error {
	return c.set(ctx, xyzKey(productIDs, window, bucketHours), result)
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, abcKeyPrefix, analysisScanBatch); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, xyzKeyPrefix, analysisScanBatch)
}

func (c *redisAnalysisCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode analysis cache: %w", err)
	}
	return true, nil
}

func (c *redisAnalysisCache) set(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode analysis cache: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (n *noopAnalysisCache) GetAbc(ctx context.Context, productIDs []string, window domain.TimeRange) (*domain.AbcAnalysisResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetAbc(ctx context.Context, productIDs []string, window domain.TimeRange, result *domain.AbcAnalysisResult) error {
	return nil
}

func (n *noopAnalysisCache) GetXyz(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int) (*domain.XyzAnalysisResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetXyz(ctx context.Context, productIDs []string, window domain.TimeRange, bucketHours int, result *domain.XyzAnalysisResult) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func abcKey(productIDs []string, window domain.TimeRange) string {
	return fmt.Sprintf("%s:%s", abcKeyPrefix, requestHash(productIDs, window, 0))
}

func xyzKey(productIDs []string, window domain.TimeRange, bucketHours int) string {
	return fmt.Sprintf("%s:%s", xyzKeyPrefix, requestHash(productIDs, window, bucketHours))
}

// requestHash builds a stable digest of the request parameters: product IDs
// are sorted and deduplicated so equivalent requests share an entry.
func requestHash(productIDs []string, window domain.TimeRange, bucketHours int) string {
	parts := []string{}

	if len(productIDs) > 0 {
		ids := make([]string, 0, len(productIDs))
		seen := make(map[string]struct{}, len(productIDs))
		for _, id := range productIDs {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		sort.Strings(ids)
		parts = append(parts, "ids="+strings.Join(ids, ","))
	}

	if !window.From.IsZero() {
		parts = append(parts, "from="+window.From.UTC().Format(time.RFC3339))
	}
	if !window.To.IsZero() {
		parts = append(parts, "to="+window.To.UTC().Format(time.RFC3339))
	}
	if bucketHours > 0 {
		parts = append(parts, fmt.Sprintf("bucket=%d", bucketHours))
	}

	if len(parts) == 0 {
		return "default"
	}

	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}
