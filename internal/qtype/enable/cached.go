package enable

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds a shared lookup against the remote source.
const DefaultLookupTimeout = 5 * time.Second

// Cached fronts a remote Source with a TTL cache. Concurrent misses for the
// same key share one lookup, which runs detached from any single caller's
// cancellation. Errors are not cached.
type Cached struct {
	src     Source
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	gens    map[string]uint64 // bumped by Set and Invalidate
	group   singleflight.Group
}

type cacheEntry struct {
	enabled, found bool
	expires        time.Time
}

type lookupResult struct{ enabled, found bool }

func NewCached(src Source, ttl time.Duration) *Cached {
	return &Cached{
		src:     src,
		ttl:     ttl,
		timeout: DefaultLookupTimeout,
		now:     time.Now,
		entries: map[string]cacheEntry{},
		gens:    map[string]uint64{},
	}
}

func (c *Cached) Lookup(ctx context.Context, key string) (bool, bool, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Before(e.expires) {
		return e.enabled, e.found, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.mu.Lock()
		gen := c.gens[key]
		c.mu.Unlock()

		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		on, found, err := c.src.Lookup(lctx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// a Set or Invalidate during the lookup makes this result stale
		if c.gens[key] == gen {
			c.entries[key] = cacheEntry{enabled: on, found: found, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return lookupResult{on, found}, nil
	})

	select {
	case <-ctx.Done():
		return false, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, false, res.Err
		}
		r := res.Val.(lookupResult)
		return r.enabled, r.found, nil
	}
}

// Set writes through to the underlying source when it is a Writer and drops
// the cached entry.
func (c *Cached) Set(ctx context.Context, key string, enabled bool) error {
	w, ok := c.src.(Writer)
	if !ok {
		return ErrReadOnly
	}
	if err := w.Set(ctx, key, enabled); err != nil {
		return err
	}
	c.Invalidate(key)
	return nil
}

// Invalidate drops the cached entry for key. A lookup already in flight for
// key is not reused by later callers and its result is not cached.
func (c *Cached) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
	c.group.Forget(key)
}
