package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	answerCachePrefix = "anscache:"
	invalidateBatch   = 100
)

// CachedAnswer is the payload stored for a fingerprinted query
type CachedAnswer struct {
	Answer   string    `json:"answer"`
	Model    string    `json:"model,omitempty"`
	Sources  []string  `json:"sources,omitempty"`
	CachedAt time.Time `json:"cached_at"`
}

// AnswerCache maps (tenant, normalized query) pairs to previously computed
// answers. All operations are non-fatal on store unavailability: the
// pipeline degrades to slower, never to incorrect.
type AnswerCache struct {
	client *Client
	ttl    time.Duration
}

// NewAnswerCache creates a new answer cache with the given entry TTL
func NewAnswerCache(client *Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// NormalizeQuery lowercases, trims, and collapses internal whitespace so
// queries differing only in case or spacing share a fingerprint.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(query))), " ")
}

// CacheKey derives the tenant-namespaced fingerprint key for a query
func CacheKey(tenantID uuid.UUID, query string) string {
	sum := sha256.Sum256([]byte(NormalizeQuery(query)))
	return fmt.Sprintf("%s%s:%s", answerCachePrefix, tenantID.String(), hex.EncodeToString(sum[:]))
}

// Get returns the cached answer for a query, or nil on miss. Store errors
// are logged and reported as a miss.
func (c *AnswerCache) Get(ctx context.Context, tenantID uuid.UUID, query string) *CachedAnswer {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.rdb.Get(ctx, CacheKey(tenantID, query)).Bytes()
	if err != nil {
		return nil // miss, or store unavailable
	}

	var answer CachedAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable cache entry")
		return nil
	}

	return &answer
}

// Set stores an answer under the query fingerprint. A failed write is a
// no-op; the next identical query just misses again.
func (c *AnswerCache) Set(ctx context.Context, tenantID uuid.UUID, query string, answer *CachedAnswer) {
	if c == nil || c.client == nil || answer == nil {
		return
	}

	data, err := json.Marshal(answer)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal cache entry")
		return
	}

	if err := c.client.rdb.Set(ctx, CacheKey(tenantID, query), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("answer cache write failed")
	}
}

// Invalidate removes every cached answer in a tenant's namespace. Deletion
// runs in bounded SCAN batches so arbitrarily large namespaces never pin a
// full key listing in memory.
func (c *AnswerCache) Invalidate(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}

	pattern := fmt.Sprintf("%s%s:*", answerCachePrefix, tenantID.String())
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, invalidateBatch).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete cache keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
