// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"sync"

	"github.com/mavensync/mavensync/internal/maven"
)

// VersionCache remembers the resolved "latest" version of each artifact key.
// One cache lives for one run; entries are never invalidated.
type VersionCache struct {
	mu       sync.Mutex
	versions map[maven.Key]string
}

// NewVersionCache creates an empty cache.
func NewVersionCache() *VersionCache {
	return &VersionCache{versions: make(map[maven.Key]string)}
}

// Get returns the cached version for key.
func (c *VersionCache) Get(key maven.Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.versions[key]
	return v, ok
}

// Put stores the resolved version for key.
func (c *VersionCache) Put(key maven.Key, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key] = version
}

// Len returns the number of cached keys.
func (c *VersionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.versions)
}
