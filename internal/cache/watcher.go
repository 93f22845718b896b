package cache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce delays invalidation after a burst of .git writes (git
// touches several files per commit).
const watchDebounce = 500 * time.Millisecond

// GitWatcher monitors a repository's .git directory and invalidates a
// GitAwareCache when HEAD, the index or branch refs change.
type GitWatcher struct {
	cache  *GitAwareCache
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// debounce state
	mu    sync.Mutex
	timer *time.Timer
}

// NewGitWatcher creates a watcher bound to the cache's project path.
func NewGitWatcher(cache *GitAwareCache) (*GitWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &GitWatcher{cache: cache, fsw: fsw}, nil
}

// Start begins watching. Missing directories are tolerated: a project
// without a .git directory simply produces no invalidations.
func (w *GitWatcher) Start(ctx context.Context) error {
	gitDir := filepath.Join(w.cache.projectPath, ".git")
	watched := 0
	for _, dir := range []string{gitDir, filepath.Join(gitDir, "refs", "heads")} {
		if err := w.fsw.Add(dir); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("git watcher: cannot watch dir", "path", dir, "error", err)
			}
			continue
		}
		watched++
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	slog.Debug("git watcher started", "path", gitDir, "watched", watched)
	return nil
}

// Stop shuts down the watcher.
func (w *GitWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.fsw.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

func (w *GitWatcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if relevant(ev) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("git watcher error", "error", err)
		}
	}
}

// relevant filters the .git noise down to state-changing writes.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	switch base {
	case "HEAD", "index", "packed-refs", "ORIG_HEAD", "MERGE_HEAD":
		return true
	}
	// Anything under refs/heads (branch tip moved).
	return filepath.Base(filepath.Dir(ev.Name)) == "heads"
}

func (w *GitWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.cache.Invalidate)
}
