package internal

import (
	"fmt"
	"sync"
	"time"
)

// QueryScope names a family of cached queries
type QueryScope string

const (
	ScopeCampaigns   QueryScope = "campaigns"
	ScopeCampaign    QueryScope = "campaign"
	ScopeDashboard   QueryScope = "dashboard"
	ScopeSessions    QueryScope = "sessions"
	ScopeSession     QueryScope = "session"
	ScopePersonas    QueryScope = "personas"
	ScopePersona     QueryScope = "persona"
	ScopePersonaBook QueryScope = "persona_book" // personas with their artifacts
	ScopeHighlights  QueryScope = "highlights"
	ScopeQuotes      QueryScope = "quotes"
	ScopeMoments     QueryScope = "moments"
)

// QueryKey identifies one cached query. ID is the entity id for detail
// scopes and the campaign id for list scopes.
type QueryKey struct {
	Scope QueryScope
	ID    int
}

// Key builds a QueryKey
func Key(scope QueryScope, id int) QueryKey {
	return QueryKey{Scope: scope, ID: id}
}

func (k QueryKey) String() string {
	return fmt.Sprintf("%s:%d", k.Scope, k.ID)
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// QueryCache holds backend responses for the lifetime of a client. It is
// never written to disk. Every mutation is expected to invalidate the keys
// it affects.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[QueryKey]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewQueryCache creates a cache. A zero ttl keeps entries until invalidated.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		entries: make(map[QueryKey]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set stores a value
func (c *QueryCache) Set(key QueryKey, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}

// Get returns a live value
func (c *QueryCache) Get(key QueryKey) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getLocked(key)
}

func (c *QueryCache) getLocked(key QueryKey) (any, bool) {
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

// CacheGet returns a live value of type T
func CacheGet[T any](c *QueryCache, key QueryKey) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Invalidate drops the given keys
func (c *QueryCache) Invalidate(keys ...QueryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	LogDebug("cache: invalidated %d key(s)", len(keys))
}

// InvalidateScope drops every key in the given scopes
func (c *QueryCache) InvalidateScope(scopes ...QueryScope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	for key := range c.entries {
		for _, scope := range scopes {
			if key.Scope == scope {
				delete(c.entries, key)
				dropped++
				break
			}
		}
	}
	LogDebug("cache: invalidated %d key(s) in %v", dropped, scopes)
}

// Clear empties the cache
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[QueryKey]cacheEntry)
}

// Len returns the number of stored entries, expired or not
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Optimistic applies fn to the cached value right away and returns a
// rollback that restores what was there before, including absence.
func (c *QueryCache) Optimistic(key QueryKey, fn func(current any, ok bool) any) (rollback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous, existed := c.entries[key]
	current, ok := c.getLocked(key)
	c.entries[key] = cacheEntry{value: fn(current, ok), storedAt: c.now()}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if existed {
			c.entries[key] = previous
		} else {
			delete(c.entries, key)
		}
		LogDebug("cache: rolled back %s", key)
	}
}

// UpdateCached applies fn to a cached value of type T. When nothing of
// that type is cached it does nothing and returns a no-op rollback.
func UpdateCached[T any](c *QueryCache, key QueryKey, fn func(T) T) (rollback func(), updated bool) {
	if _, ok := CacheGet[T](c, key); !ok {
		return func() {}, false
	}
	rollback = c.Optimistic(key, func(current any, ok bool) any {
		typed, isT := current.(T)
		if !ok || !isT {
			return current
		}
		return fn(typed)
	})
	return rollback, true
}
