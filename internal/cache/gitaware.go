package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// RepoFingerprint summarizes the repository state a file search depends on:
// HEAD (and the ref it points to) plus the index file's mtime and size,
// which move on any staged/unstaged change. Returns "" when projectPath is
// not a git repository.
func RepoFingerprint(projectPath string) string {
	gitDir := filepath.Join(projectPath, ".git")
	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}

	h := sha256.New()
	h.Write(head)

	if ref, ok := strings.CutPrefix(strings.TrimSpace(string(head)), "ref: "); ok {
		if target, err := os.ReadFile(filepath.Join(gitDir, filepath.FromSlash(ref))); err == nil {
			h.Write(target)
		}
	}
	if fi, err := os.Stat(filepath.Join(gitDir, "index")); err == nil {
		fmt.Fprintf(h, "%d:%d", fi.ModTime().UnixNano(), fi.Size())
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// GitAwareCache wraps a SearchCache and flushes it whenever the repository
// fingerprint changes (new commit, branch switch, index update). Reads
// re-check the fingerprint; an fsnotify watcher (see GitWatcher) can push
// invalidations instead by calling Invalidate.
type GitAwareCache struct {
	inner       *SearchCache
	projectPath string

	mu        sync.Mutex
	state     string
	lastCheck time.Time

	// checkEvery throttles fingerprint stats on the read path. Zero means
	// every read re-checks, which keeps the cache strictly consistent.
	checkEvery time.Duration
}

// NewGitAware wraps a search cache with repository-state invalidation for
// the given project path.
func NewGitAware(inner *SearchCache, projectPath string) *GitAwareCache {
	return &GitAwareCache{
		inner:       inner,
		projectPath: projectPath,
		state:       RepoFingerprint(projectPath),
	}
}

// Get returns a cached result, unless the repository moved since it was
// stored — then the whole cache is flushed first.
func (c *GitAwareCache) Get(providerID string, req *mention.SearchRequest) (*mention.SearchResult, bool) {
	c.refresh(false)
	return c.inner.Get(providerID, req)
}

// Put stores a result under the current repository state.
func (c *GitAwareCache) Put(providerID string, req *mention.SearchRequest, res *mention.SearchResult) {
	c.refresh(false)
	c.inner.Put(providerID, req, res)
}

// Invalidate forces a fingerprint re-check, flushing on change. Called by
// the git watcher.
func (c *GitAwareCache) Invalidate() {
	c.refresh(true)
}

// Len returns the number of live entries in the wrapped cache.
func (c *GitAwareCache) Len() int {
	return c.inner.Len()
}

func (c *GitAwareCache) refresh(force bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !force && c.checkEvery > 0 && now.Sub(c.lastCheck) < c.checkEvery {
		return
	}
	c.lastCheck = now

	state := RepoFingerprint(c.projectPath)
	if state != c.state {
		c.state = state
		c.inner.Purge()
	}
}
