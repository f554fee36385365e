package cache

import (
	"sync"
	"time"

	"btc-command-center/internal/metrics"
)

// TTLCache memoizes producer results per key for a caller-chosen TTL. The
// cache itself carries no TTL policy: callers pass the lifetime they want
// per endpoint family. Producer failures are returned but never cached, so
// the next read retries upstream.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	value   any
	err     error
	expires time.Time
	ready   chan struct{}
}

func New() *TTLCache {
	return &TTLCache{entries: make(map[string]*entry)}
}

// GetOrFetch returns the memoized value for key when it is still fresh,
// otherwise invokes producer and stores its result with expiry now+ttl.
// Concurrent misses on the same key share a single producer call.
func (c *TTLCache) GetOrFetch(key string, ttl time.Duration, producer func() (any, error)) (any, error) {
	for {
		c.mu.Lock()
		e, ok := c.entries[key]
		if ok {
			select {
			case <-e.ready:
				if e.err == nil && time.Now().Before(e.expires) {
					c.mu.Unlock()
					metrics.CacheHitsTotal.Inc()
					return e.value, nil
				}
				// expired; fall through and refetch
			default:
				// another caller is already fetching this key
				c.mu.Unlock()
				<-e.ready
				if e.err == nil {
					return e.value, nil
				}
				continue
			}
		}
		ne := &entry{ready: make(chan struct{})}
		c.entries[key] = ne
		c.mu.Unlock()

		metrics.CacheMissesTotal.Inc()
		ne.value, ne.err = producer()
		ne.expires = time.Now().Add(ttl)
		close(ne.ready)

		if ne.err != nil {
			c.mu.Lock()
			if c.entries[key] == ne {
				delete(c.entries, key)
			}
			c.mu.Unlock()
			return nil, ne.err
		}
		return ne.value, nil
	}
}

// Purge drops every entry so the next reads go back upstream. Backs the
// dashboard's manual refresh.
func (c *TTLCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len reports the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fetch is a typed convenience over GetOrFetch.
func Fetch[T any](c *TTLCache, key string, ttl time.Duration, producer func() (T, error)) (T, error) {
	v, err := c.GetOrFetch(key, ttl, func() (any, error) { return producer() })
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
