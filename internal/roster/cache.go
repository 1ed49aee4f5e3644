package roster

import (
	"container/list"
	"sync"
	"time"
)

// Cache holds recently read rosters keyed by org. Entries are evicted least
// recently used first and expire after ttl, so a roster replaced by another
// process is picked up again. A zero ttl never expires.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	lru     *list.List // front is most recent
	byOrg   map[string]*list.Element
}

type cacheEntry struct {
	roster  Roster
	expires time.Time
}

// NewCache creates a cache holding at most maxSize rosters (20 when
// maxSize <= 0).
func NewCache(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &Cache{
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		lru:     list.New(),
		byOrg:   make(map[string]*list.Element),
	}
}

// Get returns the cached roster for orgID if present and not expired.
func (c *Cache) Get(orgID string) (Roster, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byOrg[orgID]
	if !ok {
		return Roster{}, false
	}
	e := el.Value.(*cacheEntry)
	if c.ttl > 0 && !c.now().Before(e.expires) {
		c.remove(el)
		return Roster{}, false
	}
	c.lru.MoveToFront(el)
	return e.roster, true
}

// Put stores r, replacing any cached roster of the same org.
func (c *Cache) Put(r Roster) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &cacheEntry{roster: r, expires: c.now().Add(c.ttl)}
	if el, ok := c.byOrg[r.OrgID]; ok {
		el.Value = e
		c.lru.MoveToFront(el)
		return
	}
	c.byOrg[r.OrgID] = c.lru.PushFront(e)
	for c.lru.Len() > c.maxSize {
		c.remove(c.lru.Back())
	}
}

// Len returns the number of cached rosters, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *Cache) remove(el *list.Element) {
	delete(c.byOrg, el.Value.(*cacheEntry).roster.OrgID)
	c.lru.Remove(el)
}
