package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-verify/core"
)

const latestAttemptCacheKeyPrefix = "go-verify::latest_delivery_attempt::v1"

// AttemptRepository is a store that both records and reads attempts.
type AttemptRepository interface {
	core.AttemptRecorder
	core.AttemptReader
}

// CachedAttemptReader caches Latest per attribute. Record writes through to the
// base store and drops the cached entry for the attribute it touched.
type CachedAttemptReader struct {
	base  AttemptRepository
	cache repositorycache.CacheService
}

func NewCachedAttemptReader(
	base AttemptRepository,
	cacheService repositorycache.CacheService,
) (*CachedAttemptReader, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base attempt store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: attempt cache service is required")
	}
	return &CachedAttemptReader{base: base, cache: cacheService}, nil
}

// LatestAttemptCacheKey returns
// go-verify::latest_delivery_attempt::v1::<attribute> with the attribute
// URL-path escaped.
func LatestAttemptCacheKey(attribute core.AttributeKey) (string, error) {
	trimmed := strings.TrimSpace(string(attribute))
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: attribute is required for attempt cache key")
	}
	return latestAttemptCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (r *CachedAttemptReader) Record(ctx context.Context, attempt core.DeliveryAttempt) error {
	if r == nil || r.base == nil || r.cache == nil {
		return fmt.Errorf("sqlstore: cached attempt reader is not configured")
	}
	if err := r.base.Record(ctx, attempt); err != nil {
		return err
	}
	cacheKey, err := LatestAttemptCacheKey(attempt.Attribute)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, cacheKey)
}

func (r *CachedAttemptReader) List(ctx context.Context, filter core.AttemptFilter) (core.AttemptPage, error) {
	if r == nil || r.base == nil {
		return core.AttemptPage{}, fmt.Errorf("sqlstore: cached attempt reader is not configured")
	}
	return r.base.List(ctx, filter)
}

func (r *CachedAttemptReader) Latest(ctx context.Context, attribute core.AttributeKey) (core.DeliveryAttempt, error) {
	if r == nil || r.base == nil || r.cache == nil {
		return core.DeliveryAttempt{}, fmt.Errorf("sqlstore: cached attempt reader is not configured")
	}
	cacheKey, err := LatestAttemptCacheKey(attribute)
	if err != nil {
		return core.DeliveryAttempt{}, err
	}
	return repositorycache.GetOrFetch(ctx, r.cache, cacheKey, func(ctx context.Context) (core.DeliveryAttempt, error) {
		return r.base.Latest(ctx, attribute)
	})
}

var _ AttemptRepository = (*CachedAttemptReader)(nil)
