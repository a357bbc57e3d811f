// Package cache holds loaded collections in memory between reads and drops
// them when a mutation invalidates the kind.
package cache

import (
	"context"
	"sync"
	"time"

	"gitlab.com/yelinaung/invoicekit/internal/logger"
	"gitlab.com/yelinaung/invoicekit/internal/models"
)

// DefaultTTL is how long a loaded collection stays fresh when no TTL is given.
const DefaultTTL = 5 * time.Minute

type cachedEntry struct {
	value     any
	expiresAt time.Time
}

type inFlightCall struct {
	done       chan struct{}
	generation uint64
	value      any
	err        error
}

// QueryCache caches one loaded collection per kind. Concurrent misses for the
// same kind share a single load.
type QueryCache struct {
	ttl time.Duration
	now func() time.Time

	mu          sync.Mutex
	entries     map[models.Kind]cachedEntry
	inFlight    map[models.Kind]*inFlightCall
	generations map[models.Kind]uint64
}

// New returns an empty cache. A non-positive ttl selects DefaultTTL and a nil
// clock selects time.Now.
func New(ttl time.Duration, now func() time.Time) *QueryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &QueryCache{
		ttl:         ttl,
		now:         now,
		entries:     make(map[models.Kind]cachedEntry),
		inFlight:    make(map[models.Kind]*inFlightCall),
		generations: make(map[models.Kind]uint64),
	}
}

// Fetch returns the cached collection for kind, calling load on a miss. The
// load runs detached from ctx so a cancelled caller does not fail the other
// waiters; ctx only bounds how long this caller waits. A failed load is
// returned to every waiter, value included, and is never cached.
func Fetch[T any](
	ctx context.Context,
	c *QueryCache,
	kind models.Kind,
	load func(context.Context) (T, error),
) (T, error) {
	c.mu.Lock()
	if entry, ok := c.entries[kind]; ok {
		if value, typed := entry.value.(T); typed && c.now().Before(entry.expiresAt) {
			c.mu.Unlock()
			return value, nil
		}
		delete(c.entries, kind)
	}

	if call, waiting := c.inFlight[kind]; waiting {
		c.mu.Unlock()
		return waitForInFlight[T](ctx, call)
	}

	call := &inFlightCall{done: make(chan struct{}), generation: c.generations[kind]}
	c.inFlight[kind] = call
	c.mu.Unlock()

	go c.fetchAndBroadcast(context.WithoutCancel(ctx), kind, call, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	return waitForInFlight[T](ctx, call)
}

func (c *QueryCache) fetchAndBroadcast(
	ctx context.Context,
	kind models.Kind,
	call *inFlightCall,
	load func(context.Context) (any, error),
) {
	value, err := load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case err != nil:
		logger.Log.Debug().Err(err).Str("kind", string(kind)).Msg("Load failed, not caching")
	case c.generations[kind] != call.generation:
		logger.Log.Debug().Str("kind", string(kind)).Msg("Load finished after invalidation, not caching")
	default:
		c.entries[kind] = cachedEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	}

	call.value = value
	call.err = err
	if c.inFlight[kind] == call {
		delete(c.inFlight, kind)
	}
	close(call.done)
}

func waitForInFlight[T any](ctx context.Context, call *inFlightCall) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-call.done:
		value, _ := call.value.(T)
		return value, call.err
	}
}

// Invalidate drops the cached collection for kind. A load already running
// for kind will not store its result; the next Fetch starts a fresh load.
func (c *QueryCache) Invalidate(kind models.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(kind)
}

// InvalidateAll drops every cached collection.
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, kind := range models.AllKinds {
		c.invalidateLocked(kind)
	}
	for kind := range c.entries {
		c.invalidateLocked(kind)
	}
}

func (c *QueryCache) invalidateLocked(kind models.Kind) {
	delete(c.entries, kind)
	delete(c.inFlight, kind)
	c.generations[kind]++
}

// Cached reports whether a fresh value for kind is held.
func (c *QueryCache) Cached(kind models.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[kind]
	return ok && c.now().Before(entry.expiresAt)
}
