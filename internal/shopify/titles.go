package shopify

import "sync"

// titleCache remembers resolved variant titles for the process lifetime so
// repeated checkouts of the same variant skip the Admin API lookups.
type titleCache struct {
	mu sync.RWMutex
	m  map[string]string
}

func newTitleCache() *titleCache {
	return &titleCache{m: make(map[string]string)}
}

func (c *titleCache) get(variantID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.m[variantID]
	return t, ok
}

func (c *titleCache) set(variantID, title string) {
	if variantID == "" || title == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[variantID] = title
}

func (c *titleCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
