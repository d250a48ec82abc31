// Package ratecache decorates a RateSource with a redis-backed cache so the
// external provider is consulted at most once per currency per TTL.
package ratecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/remitline/remitline-backend/internal/domain"
)

// DefaultTTL is how long a cached quote stays fresh
const DefaultTTL = 5 * time.Minute

// CachedSource wraps a RateSource with read-through caching. Cache trouble
// degrades to the inner source; it never fails a lookup on its own.
type CachedSource struct {
	inner domain.RateSource
	rdb   *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

// New creates a caching decorator around source
func New(source domain.RateSource, rdb *redis.Client, log *slog.Logger) *CachedSource {
	return &CachedSource{
		inner: source,
		rdb:   rdb,
		ttl:   DefaultTTL,
		log:   log,
	}
}

// Rate answers from cache when possible, otherwise asks the inner source and
// caches its quote.
func (c *CachedSource) Rate(ctx context.Context, code string) (*domain.RateQuote, error) {
	key := cacheKey(code)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var quote domain.RateQuote
		if err := json.Unmarshal([]byte(cached), &quote); err == nil {
			return &quote, nil
		}
		// A corrupt entry falls through to the inner source
		c.log.Warn("dropping corrupt cached rate", slog.String("currency", code))
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("rate cache read failed",
			slog.String("currency", code),
			slog.String("error", err.Error()))
	}

	quote, err := c.inner.Rate(ctx, code)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(quote); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.log.Warn("rate cache write failed",
				slog.String("currency", code),
				slog.String("error", err.Error()))
		}
	}
	return quote, nil
}

func cacheKey(code string) string {
	return fmt.Sprintf("rates:%s", code)
}

var _ domain.RateSource = (*CachedSource)(nil)
