// Package cache provides the read-through caching contracts used to memoize
// local store reads.
//
// # Overview
//
//   - CacheService: read-through get-or-fetch plus key and prefix invalidation
//   - KeySerializer: builds stable keys from a method name and its arguments
//
// The generic GetOrFetch helper keeps call sites typed:
//
//	key := serializer.SerializeKey("GetByID", id)
//	record, err := cache.GetOrFetch(ctx, service, key, func(ctx context.Context) (lookup, error) {
//		return fetch(ctx, id)
//	})
//
// Keys are built as method::arg1::arg2. Decorators invalidate by method
// prefix after writes, so arguments must never contain KeySeparator in a way
// that collides with another method name.
//
// Cached values are shared between callers. Store values that are safe to
// share, or copy them on the way out.
package cache
