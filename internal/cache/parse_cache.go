// Package cache holds recently parsed pipeline configurations so repeated
// requests for the same YAML skip the parse step. Only parsed input is
// cached; dependency graphs are rebuilt for every request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/psarz/g2g-converter/internal/model"
)

const defaultSize = 256

// ParseCache is a fixed-size LRU keyed by content hash. Cached configs are
// shared across requests and must be treated as read-only by callers.
type ParseCache struct {
	cache *lru.Cache[string, *model.PipelineConfig]
}

// New returns a cache holding up to size entries; size <= 0 uses a default.
func New(size int) (*ParseCache, error) {
	if size <= 0 {
		size = defaultSize
	}
	c, err := lru.New[string, *model.PipelineConfig](size)
	if err != nil {
		return nil, fmt.Errorf("init parse cache: %w", err)
	}
	return &ParseCache{cache: c}, nil
}

// Key derives the cache key for raw YAML content.
func Key(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached config for key, if present.
func (c *ParseCache) Get(key string) (*model.PipelineConfig, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// Add stores a parsed config under key.
func (c *ParseCache) Add(key string, cfg *model.PipelineConfig) {
	if c == nil {
		return
	}
	c.cache.Add(key, cfg)
}

// Len reports the number of cached entries.
func (c *ParseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
