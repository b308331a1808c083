package insights

import (
	"sync"
	"time"

	"github.com/peterdir/bedrock-usage/internal/models"
)

// QueryCache holds query handles keyed by window size (trailing days). Reusing
// a fresh handle avoids starting a redundant billed query for the same window.
// Safe for concurrent use; construct one per service instance so tests can run
// without cross-contamination.
type QueryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int]models.QueryHandle
	now     func() time.Time
}

// NewQueryCache creates an empty cache whose handles expire after ttl.
func NewQueryCache(ttl time.Duration) *QueryCache {
	return &QueryCache{
		ttl:     ttl,
		entries: make(map[int]models.QueryHandle),
		now:     time.Now,
	}
}

// Get returns the cached handle for a window if it is still fresh. Expired
// entries are dropped on access.
func (c *QueryCache) Get(windowDays int) (models.QueryHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	handle, ok := c.entries[windowDays]
	if !ok {
		return models.QueryHandle{}, false
	}
	if c.now().Sub(handle.CreatedAt) >= c.ttl {
		delete(c.entries, windowDays)
		return models.QueryHandle{}, false
	}
	return handle, true
}

// Put stores a handle for a window, replacing any previous one.
func (c *QueryCache) Put(windowDays int, handle models.QueryHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[windowDays] = handle
}

// SetStatus updates the status of the cached handle, provided the cache still
// holds the same query.
func (c *QueryCache) SetStatus(windowDays int, queryID string, status models.QueryStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if handle, ok := c.entries[windowDays]; ok && handle.ID == queryID {
		handle.Status = status
		c.entries[windowDays] = handle
	}
}

// Evict removes the cached handle for a window, provided the cache still
// holds the same query. Failed handles are never left behind for reuse.
func (c *QueryCache) Evict(windowDays int, queryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if handle, ok := c.entries[windowDays]; ok && handle.ID == queryID {
		delete(c.entries, windowDays)
	}
}

// Clear drops every cached handle.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Len reports the number of cached handles.
func (c *QueryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
