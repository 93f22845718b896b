// Package cache memoizes recent mention search results so repeated queries
// skip redundant backend calls. The base cache is bounded by size and age;
// the git-aware variant additionally flushes whenever the repository state
// changes, since file search results depend on working-tree contents.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

const (
	// DefaultSize bounds the number of cached results.
	DefaultSize = 256
	// DefaultTTL bounds their age. Mention dropdowns go stale fast.
	DefaultTTL = 30 * time.Second
)

// SearchCache is a bounded, expiring memo of per-provider search results.
// Concurrent use is safe; distinct keys never observe each other's writes.
type SearchCache struct {
	lru *expirable.LRU[string, *mention.SearchResult]
}

// NewSearchCache creates a cache with the given size and TTL bounds,
// falling back to defaults for non-positive values.
func NewSearchCache(size int, ttl time.Duration) *SearchCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{
		lru: expirable.NewLRU[string, *mention.SearchResult](size, nil, ttl),
	}
}

// Key fingerprints a search: provider id, normalized query, project path,
// limit, and the context-fed tool/server/changed-file inputs. Two requests
// with equal keys are interchangeable.
func Key(providerID string, req *mention.SearchRequest) string {
	h := sha256.New()
	write := func(parts ...string) {
		for _, p := range parts {
			h.Write([]byte(p))
			h.Write([]byte{0})
		}
	}
	write(providerID, strings.ToLower(strings.TrimSpace(req.Query)), req.ProjectPath,
		strconv.Itoa(req.EffectiveLimit()))
	write(req.MCPTools...)
	for _, s := range req.MCPServers {
		write(s.Name, s.Status)
	}
	for _, cf := range req.ChangedFiles {
		write(cf.Path, strconv.Itoa(cf.Additions), strconv.Itoa(cf.Deletions))
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// Get returns the cached result for an equivalent earlier search.
func (c *SearchCache) Get(providerID string, req *mention.SearchRequest) (*mention.SearchResult, bool) {
	return c.lru.Get(Key(providerID, req))
}

// Put stores a search result.
func (c *SearchCache) Put(providerID string, req *mention.SearchRequest, res *mention.SearchResult) {
	if res == nil {
		return
	}
	c.lru.Add(Key(providerID, req), res)
}

// Purge drops all entries.
func (c *SearchCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *SearchCache) Len() int {
	return c.lru.Len()
}
