// Package cache stores fetched list pages keyed by (resource, page).
//
// Two stores implement the Store interface:
//
//   - MemoryStore keeps pages in process memory
//   - RedisStore keeps JSON-encoded pages in Redis so several processes
//     share one warm cache
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	key := cache.Key{Resource: "categories", Page: 2}
//
//	if err := store.Set(ctx, key, cache.NewEntry(items, 5*time.Minute)); err != nil {
//		return err
//	}
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the data source
//	}
//
// # Redis
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	store := cache.NewRedisStore(redisClient, cache.DefaultTTL)
//
// Entries carrying an Expires time are stored with the remaining TTL;
// entries without one are kept for the store's default TTL.
//
// # Metrics
//
//   - pager_cache_hits_total{layer} - Cache hits
//   - pager_cache_misses_total{layer} - Cache misses
//   - pager_cache_entries{layer} - Stored pages (memory layer)
//   - pager_cache_errors_total{operation} - Cache operation errors
package cache
