package learning

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-play-api/internal/observability"
)

const defaultCacheTTL = 10 * time.Minute

// CachedLookup is a read-through redis cache in front of another lookup.
// Cache failures are logged and never change the result.
type CachedLookup struct {
	inner  Lookup
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedLookup wraps inner with a redis cache. A nil client disables caching.
func NewCachedLookup(inner Lookup, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedLookup{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "concept_cache").Logger(),
	}
}

func (c *CachedLookup) Resolve(ctx context.Context, conceptID string) Context {
	if cached, ok := c.fetch(ctx, conceptID); ok {
		observability.ConceptLookups().WithLabelValues("cache").Inc()
		return cached
	}

	resolved := c.inner.Resolve(ctx, conceptID)
	c.store(ctx, conceptID, resolved)
	return resolved
}

func (c *CachedLookup) fetch(ctx context.Context, conceptID string) (Context, bool) {
	if c.cache == nil {
		return Context{}, false
	}
	payload, err := c.cache.Get(ctx, cacheKey(conceptID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Msg("failed to read concept cache")
		}
		return Context{}, false
	}

	var cached Context
	if err := json.Unmarshal(payload, &cached); err != nil {
		c.logger.Warn().Err(err).Msg("failed to decode concept cache")
		return Context{}, false
	}
	cached.ConceptID = conceptID
	return Normalize(cached), true
}

func (c *CachedLookup) store(ctx context.Context, conceptID string, resolved Context) {
	if c.cache == nil {
		return
	}
	payload, err := json.Marshal(resolved)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode concept cache")
		return
	}
	if err := c.cache.Set(ctx, cacheKey(conceptID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to store concept cache")
	}
}

func cacheKey(conceptID string) string {
	return "gema:play:concept:v1:" + slug(conceptID)
}
