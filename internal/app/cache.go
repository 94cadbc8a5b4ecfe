package service

import (
	"fmt"
	"sync"

	"github.com/okian/roadreport/internal/domain/model"
)

// cache is the read-through cache of the query facade. Any ticket write
// invalidates every cached page.
type cache struct {
	mu      sync.RWMutex
	tickets map[string]model.Ticket
	pages   map[string]model.Page
}

func newCache() *cache {
	return &cache{
		tickets: make(map[string]model.Ticket),
		pages:   make(map[string]model.Page),
	}
}

func pageKey(owner string, skip, limit int) string {
	return fmt.Sprintf("%s|%d|%d", owner, skip, limit)
}

func (c *cache) ticket(uuid string) (model.Ticket, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tickets[uuid]
	return t, ok
}

func (c *cache) put(t model.Ticket) { //nolint:gocritic // hugeParam: stored by value
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets[t.UUID] = t
	clear(c.pages)
}

func (c *cache) page(key string) (model.Page, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pages[key]
	return p, ok
}

func (c *cache) putPage(key string, p model.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = p
}

func (c *cache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.tickets)
	clear(c.pages)
}

func (c *cache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tickets)
}
