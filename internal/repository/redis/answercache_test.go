package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mahmoud-fouad2/chatdesk/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "What Are Your HOURS?", "what are your hours?"},
		{"trim", "  hello  ", "hello"},
		{"collapse whitespace", "do  you\tship \n internationally", "do you ship internationally"},
		{"already normalized", "refund policy", "refund policy"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
		{"arabic preserved", "  ما هي  أسعاركم ", "ما هي أسعاركم"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeQuery(tt.input))
		})
	}
}

func TestCacheKey_NormalizationCollision(t *testing.T) {
	tenant := uuid.New()

	// Queries differing only in case or whitespace must share a key.
	assert.Equal(t,
		CacheKey(tenant, "What are your hours?"),
		CacheKey(tenant, "  what   are your HOURS?  "),
	)

	// Different questions must not collide.
	assert.NotEqual(t,
		CacheKey(tenant, "what are your hours?"),
		CacheKey(tenant, "what are your prices?"),
	)
}

func TestCacheKey_TenantIsolation(t *testing.T) {
	t1 := uuid.New()
	t2 := uuid.New()

	// Identical question, different tenants: keys must differ.
	assert.NotEqual(t,
		CacheKey(t1, "what are your hours?"),
		CacheKey(t2, "what are your hours?"),
	)
}

func TestAnswerCache_InvalidateEvictsTenant(t *testing.T) {
	client, err := NewClient(config.RedisConfig{Host: "localhost", Port: 6379})
	if err != nil {
		t.Skip("Requires Redis connection - run as integration test")
	}
	defer client.Close()

	cache := NewAnswerCache(client, time.Minute)
	ctx := context.Background()
	tenant := uuid.New()

	cache.Set(ctx, tenant, "what are your hours?", &CachedAnswer{Answer: "9am to 5pm"})
	cache.Set(ctx, tenant, "do you ship?", &CachedAnswer{Answer: "Yes, worldwide."})

	hit := cache.Get(ctx, tenant, "what are your hours?")
	if assert.NotNil(t, hit) {
		assert.Equal(t, "9am to 5pm", hit.Answer)
	}

	deleted, err := cache.Invalidate(ctx, tenant)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(2))

	// Every entry for the tenant is gone; the next lookup misses.
	assert.Nil(t, cache.Get(ctx, tenant, "what are your hours?"))
	assert.Nil(t, cache.Get(ctx, tenant, "do you ship?"))
}

func TestAnswerCache_NilSafe(t *testing.T) {
	// A nil cache behaves as an always-miss, no-op store so the pipeline
	// can run without Redis configured.
	var c *AnswerCache
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, uuid.New(), "anything"))
	c.Set(ctx, uuid.New(), "anything", &CachedAnswer{Answer: "x"})

	deleted, err := c.Invalidate(ctx, uuid.New())
	assert.NoError(t, err)
	assert.Zero(t, deleted)
}
