// Package storecache memoizes Local Cache Store reads in process memory.
//
// Store decorates any localstore.Store. Reads go through a cache.CacheService
// keyed by method and arguments; every write passes through to the base store
// and, on success, invalidates the keys it can affect:
//
//	Upsert            every list key plus GetByID for each written id
//	UpdateLikeStatus  every list key plus GetByID for the id
//	Clear             everything
//
// Returned slices and values are deep copies, so callers may keep or modify
// them without touching memoized data.
//
// Typical wiring:
//
//	base, _ := localstore.Open(ctx, dsn, logger)
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	store := storecache.New(base, svc, cache.NewNamespacedKeySerializer("experiences"), logger)
package storecache
