// Package cache holds an in-memory cache for scrape results, keyed by URL
// and the options that shape the output.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lead-agent/prospect/models"
)

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    *models.ScrapeResult
	createdAt time.Time
}

// Cache is a bounded in-memory cache for scrape results.
// It is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict entries older
// than 1 hour.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from the URL and every option that changes the
// produced document.
func Key(url string, opts *models.ScrapeOptions) string {
	h := sha256.New()
	h.Write([]byte(url))
	if opts != nil {
		h.Write([]byte("|"))
		h.Write([]byte(strings.Join(opts.Formats, ",")))
		h.Write([]byte("|"))
		h.Write([]byte(strconv.FormatBool(opts.MainContentOnly())))
		h.Write([]byte("|"))
		h.Write([]byte(opts.CSSSelector))
		h.Write([]byte("|"))
		h.Write([]byte(strconv.FormatBool(opts.Mobile)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if it exists and is younger than maxAge.
// If maxAge <= 0, no lookup is performed.
func (c *Cache) Get(key string, maxAge time.Duration) (*models.ScrapeResult, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}

	return e.result, true
}

// Set stores a result. Failures are dropped so a transient error never
// shadows a later retry.
func (c *Cache) Set(key string, res *models.ScrapeResult) {
	if res == nil || !res.Success {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    res,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
