package skills

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce delays invalidation after a burst of skill file writes
// (editors touch a file several times per save).
const watchDebounce = 500 * time.Millisecond

// Watcher monitors the skill roots for a working directory and invalidates
// the loader's snapshot when SKILL.md files or skill folders change.
type Watcher struct {
	loader *Loader
	cwd    string
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// debounce state
	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher over the loader's skill roots for cwd.
func NewWatcher(loader *Loader, cwd string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{loader: loader, cwd: cwd, fsw: fsw}, nil
}

// Start begins watching. Missing directories are tolerated: a project
// without skill dirs simply produces no invalidations.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, root := range w.loader.Dirs(w.cwd) {
		if err := w.fsw.Add(root); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("skills watcher: cannot watch dir", "path", root, "error", err)
			}
			continue
		}
		watched++

		// Watching the root only reports entry create/remove; each skill
		// folder is watched too so SKILL.md edits are seen.
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if err := w.fsw.Add(filepath.Join(root, e.Name())); err == nil {
				watched++
			}
		}
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	slog.Debug("skills watcher started", "watched", watched)
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() {
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

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("skills watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	// A new skill folder must itself be watched for later SKILL.md edits.
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			_ = w.fsw.Add(ev.Name)
		}
		w.schedule()
		return
	}
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.schedule()
		return
	}
	if ev.Has(fsnotify.Write) && strings.EqualFold(filepath.Base(ev.Name), skillFile) {
		w.schedule()
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.loader.Invalidate)
}
