package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type cacheEntry struct {
	Hash      string
	Records   []Record
	CreatedAt time.Time
}

// Cache keeps the records of files by content so that unchanged files are
// not parsed again.
type Cache struct {
	mutex   sync.Mutex
	entries map[string]cacheEntry
	maxAge  time.Duration
}

// NewCache returns an empty cache whose entries expire after maxAge; zero
// means never.
func NewCache(maxAge time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		maxAge:  maxAge,
	}
}

// Get returns the records stored for path if they were computed from src.
func (c *Cache) Get(path string, src []byte) ([]Record, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[path]
	if !exists {
		return nil, false
	}
	if c.isEntryInvalid(entry, src) {
		delete(c.entries, path)
		return nil, false
	}
	return entry.Records, true
}

// Set stores the records computed from src for path.
func (c *Cache) Set(path string, src []byte, records []Record) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[path] = cacheEntry{
		Hash:      contentHash(src),
		Records:   records,
		CreatedAt: time.Now(),
	}
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry)
}

func (c *Cache) isEntryInvalid(entry cacheEntry, src []byte) bool {
	// too old
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}
	return entry.Hash != contentHash(src)
}

func contentHash(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}
