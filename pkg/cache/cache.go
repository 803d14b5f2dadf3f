package cache

import (
	"sync"
	"time"

	"calendareventservice/pkg/models"
)

// DefaultTTL is the validity window for cached per-user data.
const DefaultTTL = 60 * time.Second

// entry holds both cached views for one user. The expiry is shared: storing
// either view re-arms the window for both. A view can still miss while the
// entry is fresh if it was never populated.
type entry struct {
	events    []models.Event
	hasEvents bool
	summary   *models.Summary
	expiry    time.Time
}

// Cache is an in-memory per-user cache for normalized event lists and
// summaries. Entries expire by wall clock only; there is no size bound and
// no eviction beyond staleness, which is acceptable at the expected user
// cardinality. Concurrent misses for the same user are not coalesced; each
// caller fetches independently.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]*entry
}

func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// GetEvents returns the cached event list for email, if present and fresh.
func (c *Cache) GetEvents(email string) ([]models.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[email]
	if !ok || !e.hasEvents || !c.now().Before(e.expiry) {
		return nil, false
	}
	return e.events, true
}

// PutEvents stores the event list for email and re-arms the entry's expiry.
func (c *Cache) PutEvents(email string, events []models.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensure(email)
	e.events = events
	e.hasEvents = true
	e.expiry = c.now().Add(c.ttl)
}

// GetSummary returns the cached summary for email, if present and fresh.
func (c *Cache) GetSummary(email string) (*models.Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[email]
	if !ok || e.summary == nil || !c.now().Before(e.expiry) {
		return nil, false
	}
	return e.summary, true
}

// PutSummary stores the summary for email and re-arms the entry's expiry.
func (c *Cache) PutSummary(email string, summary models.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensure(email)
	e.summary = &summary
	e.expiry = c.now().Add(c.ttl)
}

// Invalidate drops both cached views for email so the next read always goes
// to the provider.
func (c *Cache) Invalidate(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[email]
	if !ok {
		return
	}
	e.events = nil
	e.hasEvents = false
	e.summary = nil
	e.expiry = time.Time{}
}

// ensure returns the entry for email, creating it if absent. Caller must
// hold the write lock.
func (c *Cache) ensure(email string) *entry {
	e, ok := c.entries[email]
	if !ok {
		e = &entry{}
		c.entries[email] = e
	}
	return e
}
