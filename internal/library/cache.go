package library

import (
	"fmt"
	"sync"

	"github.com/danmuck/g2dtex/internal/archive"
	"github.com/danmuck/g2dtex/internal/observability"
)

// Cache maps material keys to built materials. Each key is written once.
type Cache struct {
	mu    sync.RWMutex
	items map[archive.Key]*Material
}

// NewCache creates an empty material cache.
func NewCache() *Cache {
	return &Cache{items: make(map[archive.Key]*Material)}
}

// Insert stores one material.
func (c *Cache) Insert(m *Material) error {
	return c.InsertAll([]*Material{m})
}

// InsertAll stores every material or none of them.
func (c *Cache) InsertAll(materials []*Material) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[archive.Key]struct{}, len(materials))
	for _, m := range materials {
		if _, ok := c.items[m.Key]; ok {
			return fmt.Errorf("%w: material %s (%s)", ErrDuplicateKey, m.Hash, m.Key)
		}
		if _, ok := seen[m.Key]; ok {
			return fmt.Errorf("%w: material %s (%s) repeated in archive", ErrDuplicateKey, m.Hash, m.Key)
		}
		seen[m.Key] = struct{}{}
	}
	for _, m := range materials {
		c.items[m.Key] = m
	}
	return nil
}

// Lookup returns the material stored under key.
func (c *Cache) Lookup(key archive.Key) (*Material, bool) {
	c.mu.RLock()
	m, ok := c.items[key]
	c.mu.RUnlock()
	observability.RecordCacheLookup(ok)
	return m, ok
}

// Len returns the number of cached materials.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
