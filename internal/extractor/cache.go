package extractor

import (
	"container/list"
	"sync"
	"time"
)

const (
	pageCacheMaxEntries = 256
	pageCacheTTL        = 30 * time.Minute
)

type pageCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type pageCacheEntry struct {
	key       string
	page      Page
	expiresAt time.Time
}

func newPageCache(maxEntries int) *pageCache {
	if maxEntries <= 0 {
		return nil
	}

	return &pageCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *pageCache) get(key string, now time.Time) (Page, bool) {
	if c == nil || key == "" {
		return Page{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return Page{}, false
	}

	entry := elem.Value.(*pageCacheEntry) //nolint:forcetypeassert // Only entries are stored.

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return Page{}, false
	}

	c.order.MoveToFront(elem)

	return entry.page, true
}

func (c *pageCache) set(key string, page Page, expiresAt time.Time, now time.Time) {
	if c == nil || key == "" || page.Text == "" || !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*pageCacheEntry) //nolint:forcetypeassert // Only entries are stored.
		entry.page = page
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	c.entries[key] = c.order.PushFront(&pageCacheEntry{
		key:       key,
		page:      page,
		expiresAt: expiresAt,
	})

	c.evictExpiredLocked(now)

	for len(c.entries) > c.maxEntries {
		c.removeElement(c.order.Back())
	}
}

func (c *pageCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*pageCacheEntry).expiresAt) { //nolint:forcetypeassert // Only entries are stored.
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *pageCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*pageCacheEntry) //nolint:forcetypeassert // Only entries are stored.

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
