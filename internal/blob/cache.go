// Package blob is a content-addressed cache of opaque artifacts keyed by a
// caller-computed fingerprint.
package blob

import "sync"

// Cache maps a fingerprint to the last artifact stored under it. Entries are
// never removed.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]byte)}
}

// Put stores artifact under fingerprint, replacing any previous artifact.
// The fingerprint is not checked against the artifact.
func (c *Cache) Put(fingerprint string, artifact []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = clone(artifact)
}

// Get returns the artifact stored under fingerprint and whether one exists.
func (c *Cache) Get(fingerprint string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	artifact, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	return clone(artifact), true
}

// Len reports the number of fingerprints held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Export copies the cache contents.
func (c *Cache) Export() map[string][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]byte, len(c.entries))
	for fp, artifact := range c.entries {
		out[fp] = clone(artifact)
	}
	return out
}

// Import replaces the cache contents with entries.
func (c *Cache) Import(entries map[string][]byte) {
	fresh := make(map[string][]byte, len(entries))
	for fp, artifact := range entries {
		fresh[fp] = clone(artifact)
	}
	c.mu.Lock()
	c.entries = fresh
	c.mu.Unlock()
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
