package suggestcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/db"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
)

const cacheKeyPrefix = "dctsearch:suggest:"

// DefaultTTL bounds staleness of cached suggestion pages. Suggestion
// frequencies drift slowly, so a short TTL is enough.
const DefaultTTL = 60 * time.Second

// Suggester is the upstream contract this cache decorates.
type Suggester interface {
	Suggestions(ctx context.Context, q string) ([]suggest.Item, error)
}

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSuggester serves suggestion lookups from a short-TTL cache
// keyed by the normalized query prefix. Cache failures degrade to the
// upstream suggester; they never fail a lookup.
type CachedSuggester struct {
	inner      Suggester
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Suggester,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSuggester {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSuggester{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Suggestions returns cached items or calls the upstream suggester.
func (c *CachedSuggester) Suggestions(ctx context.Context, q string) ([]suggest.Item, error) {
	key := c.cacheKey(q)

	if items, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return items, nil
	}

	c.incCache("miss")

	items, err := c.inner.Suggestions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}

	c.putToCache(ctx, key, items)
	return items, nil
}

func (c *CachedSuggester) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey normalizes case and whitespace so "Cust" and "cust " share
// an entry.
func (c *CachedSuggester) cacheKey(q string) string {
	norm := strings.ToLower(strings.TrimSpace(q))
	h := sha256.Sum256([]byte(norm))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSuggester) getFromCache(ctx context.Context, key string) ([]suggest.Item, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached suggestions", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var items []suggest.Item
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Warn("Failed to parse cached suggestions", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return items, true
}

func (c *CachedSuggester) putToCache(ctx context.Context, key string, items []suggest.Item) {
	data, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("Failed to encode suggestions for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache suggestions", zap.String("key", key), zap.Error(err))
	}
}
