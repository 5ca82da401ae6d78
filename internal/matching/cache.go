package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheKey identifies a cached score. The tender version makes entries computed before a
// tender mutation unreachable.
type CacheKey struct {
	TenderID      uint
	TenderVersion int
	ConsultantID  uint
}

// String renders the key as stored in Redis
func (k CacheKey) String() string {
	return fmt.Sprintf("%s%d:%d:%d", redisKeyPrefix, k.TenderID, k.TenderVersion, k.ConsultantID)
}

// ScoreCache stores computed breakdowns per (tender, version, consultant)
type ScoreCache interface {
	Get(ctx context.Context, key CacheKey) (Breakdown, bool, error)
	Set(ctx context.Context, key CacheKey, b Breakdown) error
	InvalidateTender(ctx context.Context, tenderID uint) error
	InvalidateConsultant(ctx context.Context, consultantID uint) error
	Clear(ctx context.Context) error
}

// MemoryScoreCache is a process-local ScoreCache
type MemoryScoreCache struct {
	mu      sync.RWMutex
	entries map[CacheKey]Breakdown
}

// NewMemoryScoreCache creates an empty in-process cache
func NewMemoryScoreCache() *MemoryScoreCache {
	return &MemoryScoreCache{entries: make(map[CacheKey]Breakdown)}
}

// Get returns the cached breakdown for key
func (c *MemoryScoreCache) Get(_ context.Context, key CacheKey) (Breakdown, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[key]
	return b, ok, nil
}

// Set stores b under key
func (c *MemoryScoreCache) Set(_ context.Context, key CacheKey, b Breakdown) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = b
	return nil
}

// InvalidateTender drops every entry of a tender, whatever its version
func (c *MemoryScoreCache) InvalidateTender(_ context.Context, tenderID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.TenderID == tenderID {
			delete(c.entries, k)
		}
	}
	return nil
}

// InvalidateConsultant drops every entry of a consultant across tenders
func (c *MemoryScoreCache) InvalidateConsultant(_ context.Context, consultantID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.ConsultantID == consultantID {
			delete(c.entries, k)
		}
	}
	return nil
}

// Clear drops every entry
func (c *MemoryScoreCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]Breakdown)
	return nil
}

// Len returns the number of cached entries
func (c *MemoryScoreCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const (
	redisKeyPrefix = "score:"
	scanBatchSize  = 500
)

// RedisScoreCache is a ScoreCache shared between API instances
type RedisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScoreCache wraps a connected client. A zero ttl keeps entries until invalidated.
func NewRedisScoreCache(client *redis.Client, ttl time.Duration) (*RedisScoreCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	return &RedisScoreCache{client: client, ttl: ttl}, nil
}

// Get returns the cached breakdown for key
func (c *RedisScoreCache) Get(ctx context.Context, key CacheKey) (Breakdown, bool, error) {
	raw, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return Breakdown{}, false, nil
	}
	if err != nil {
		return Breakdown{}, false, fmt.Errorf("failed to read score %s: %w", key, err)
	}
	var b Breakdown
	if err := json.Unmarshal(raw, &b); err != nil {
		return Breakdown{}, false, fmt.Errorf("failed to decode score %s: %w", key, err)
	}
	return b, true, nil
}

// Set stores b under key
func (c *RedisScoreCache) Set(ctx context.Context, key CacheKey, b Breakdown) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode score %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write score %s: %w", key, err)
	}
	return nil
}

// InvalidateTender drops every entry of a tender, whatever its version
func (c *RedisScoreCache) InvalidateTender(ctx context.Context, tenderID uint) error {
	return c.deleteMatching(ctx, fmt.Sprintf("%s%d:*", redisKeyPrefix, tenderID))
}

// InvalidateConsultant drops every entry of a consultant across tenders
func (c *RedisScoreCache) InvalidateConsultant(ctx context.Context, consultantID uint) error {
	return c.deleteMatching(ctx, fmt.Sprintf("%s*:*:%d", redisKeyPrefix, consultantID))
}

// Clear drops every score entry
func (c *RedisScoreCache) Clear(ctx context.Context) error {
	return c.deleteMatching(ctx, redisKeyPrefix+"*")
}

func (c *RedisScoreCache) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete scores %s: %w", pattern, err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan scores %s: %w", pattern, err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete scores %s: %w", pattern, err)
		}
	}
	return nil
}
