package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T, enabled bool) Cache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled
	log, err := logger.NewLogger(cfg)
	assert.NoError(t, err)
	return NewInMemoryCache(cfg, log)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "plan:v1::id:plan_123", GenerateKey(PrefixPlan, "id", "plan_123"))
	assert.Equal(t, "plan:v1::tier:humanpro", GenerateKey(PrefixPlan, "tier", "humanpro"))
}

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, true)

	key := GenerateKey(PrefixPlan, "id", "plan_1")
	c.Set(ctx, key, "value", time.Minute)

	v, found := c.Get(ctx, key)
	assert.True(t, found)
	assert.Equal(t, "value", v)

	c.Delete(ctx, key)
	_, found = c.Get(ctx, key)
	assert.False(t, found)
}

func TestDeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, true)

	c.Set(ctx, GenerateKey(PrefixPlan, "id", "plan_1"), 1, time.Minute)
	c.Set(ctx, GenerateKey(PrefixPlan, "id", "plan_2"), 2, time.Minute)
	c.Set(ctx, "other:v1::id:x", 3, time.Minute)

	c.DeleteByPrefix(ctx, PrefixPlan)

	_, found := c.Get(ctx, GenerateKey(PrefixPlan, "id", "plan_1"))
	assert.False(t, found)
	_, found = c.Get(ctx, "other:v1::id:x")
	assert.True(t, found)
}

func TestDisabledCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t, false)

	key := GenerateKey(PrefixPlan, "id", "plan_1")
	c.Set(ctx, key, "value", time.Minute)

	_, found := c.Get(ctx, key)
	assert.False(t, found)
}
