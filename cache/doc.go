// Package cache provides the entity caches: a generic coalescing store
// plus the typed user, guild, channel, and message caches built on it.
//
// The store guarantees that concurrent misses for the same id share a
// single in-flight REST fetch (singleflight), that a failed fetch
// leaves no pending state behind, and that write-through from gateway
// push events unconditionally overwrites the cached value. Bounded
// stores evict least-recently-used entries; an in-flight fetch is never
// evictable because pending work lives in the flight group, not the
// backing store.
package cache
