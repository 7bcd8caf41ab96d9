package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/gymlog/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// CachedStore is a read-through cache of raw values in front of another Store.
// Writes go to the backing store first and then refresh the cached value.
type CachedStore struct {
	backing Store
	cache   *freecache.Cache
}

var _ Store = (*CachedStore)(nil)

// NewCachedStore wraps backing with a freecache of sizeMB megabytes
// (freecache enforces a 512KB minimum).
func NewCachedStore(backing Store, sizeMB int) *CachedStore {
	return &CachedStore{
		backing: backing,
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

func (s *CachedStore) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.cached.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if value, err := s.cache.Get([]byte(key)); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return value, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	value, err := s.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set([]byte(key), value, 0); err != nil {
		// too large for the cache; served uncached
		log.Debugf("cache set [%s]: %s", key, err)
	}

	return value, nil
}

func (s *CachedStore) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kvstore.cached.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := s.backing.Set(ctx, key, value); err != nil {
		s.cache.Del([]byte(key))
		return err
	}

	if err := s.cache.Set([]byte(key), value, 0); err != nil {
		s.cache.Del([]byte(key))
		if !errors.Is(err, freecache.ErrLargeEntry) && !errors.Is(err, freecache.ErrLargeKey) {
			return fmt.Errorf("refresh cache: %w", err)
		}
	}

	return nil
}

func (s *CachedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return s.backing.Keys(ctx, prefix)
}

func (s *CachedStore) HitCount() int64 {
	return s.cache.HitCount()
}
