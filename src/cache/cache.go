package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"nepse-gateway/src/interfaces"
	"nepse-gateway/src/logger"
)

// -----------------------------------------------------------------------------
// EndpointCache memoizes upstream responses by request path for a fixed TTL.
// Expired entries are evicted on the first post-expiry read. Upstream errors
// propagate to the caller and are never stored, so a failed fetch cannot
// poison the cache. Concurrent misses on the same path may each call
// upstream; there is deliberately no single-flight coalescing, preserving
// the observable behavior callers already depend on.
// -----------------------------------------------------------------------------

type entry struct {
	payload   json.RawMessage
	expiresAt time.Time
}

type EndpointCache struct {
	Upstream interfaces.IUpstream
	Logger   *logger.Logger
	ttl      time.Duration

	mu      sync.Mutex
	entries map[string]entry

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewEndpointCache(upstream interfaces.IUpstream, ttl time.Duration, log *logger.Logger) *EndpointCache {
	return &EndpointCache{
		Upstream: upstream,
		Logger:   log,
		ttl:      ttl,
		entries:  make(map[string]entry),
		now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// FetchJSON serves a memoized payload when one is still live, otherwise
// delegates to the upstream client and stores the result.
func (c *EndpointCache) FetchJSON(ctx context.Context, path string) (json.RawMessage, error) {
	c.mu.Lock()
	if e, ok := c.entries[path]; ok {
		if c.now().Before(e.expiresAt) {
			payload := e.payload
			c.mu.Unlock()
			return payload, nil
		}
		delete(c.entries, path)
	}
	c.mu.Unlock()

	payload, err := c.Upstream.FetchJSON(ctx, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = entry{payload: payload, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	c.Logger.Debug("Cached %s for %s", path, c.ttl)
	return payload, nil
}

// -----------------------------------------------------------------------------

// Size reports the number of live entries, counting not-yet-evicted expired
// ones. Used by tests and the health endpoint.
func (c *EndpointCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
