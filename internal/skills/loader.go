// Package skills discovers SKILL.md definitions from project and user
// directories and serves them to the skill mention provider.
//
// Hierarchy (highest priority wins on name collisions):
//  1. Project skills        — <cwd>/skills/
//  2. Project agent skills  — <cwd>/.agents/skills/
//  3. User skills           — ~/.agents/skills/
package skills

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/nextlevelbuilder/mention/internal/frontmatter"
	"github.com/nextlevelbuilder/mention/internal/providers"
)

// skillFile is the definition file looked for in each skill directory.
const skillFile = "SKILL.md"

// metadata is the SKILL.md frontmatter.
type metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// sourceDir pairs a skill root with the source tag of its entries.
type sourceDir struct {
	path   string
	source string
}

// Loader discovers skills for a working directory. Scans are memoized
// against a version counter; a Watcher (or Invalidate) bumps the version so
// the next ListEnabled rescans.
type Loader struct {
	// ExtraDirs are additional user-level skill directories (from config).
	ExtraDirs []string

	// home overrides the user home dir in tests.
	home string

	version atomic.Int64

	mu       sync.Mutex
	snapCwd  string
	snapVer  int64
	snapshot []providers.SkillInfo
}

// NewLoader creates a skill loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Version returns the current snapshot version. Consumers compare it to a
// cached value to detect changes.
func (l *Loader) Version() int64 {
	return l.version.Load()
}

// Invalidate bumps the version so the next listing rescans the directories.
// Called by the watcher after skill files change.
func (l *Loader) Invalidate() {
	l.version.Add(1)
}

// ListEnabled returns all skills visible from cwd, project sources first.
// It implements the skill provider's backend contract.
func (l *Loader) ListEnabled(ctx context.Context, cwd string) ([]providers.SkillInfo, error) {
	ver := l.version.Load()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.snapshot != nil && l.snapCwd == cwd && l.snapVer == ver {
		return slices.Clone(l.snapshot), nil
	}

	seen := make(map[string]bool)
	out := []providers.SkillInfo{}
	for _, d := range l.dirs(cwd) {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		for _, info := range scanDir(d.path, d.source) {
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			out = append(out, info)
		}
	}

	l.snapCwd = cwd
	l.snapVer = ver
	l.snapshot = out
	return slices.Clone(out), nil
}

// dirs returns the skill roots for cwd in priority order.
func (l *Loader) dirs(cwd string) []sourceDir {
	var dirs []sourceDir
	if cwd != "" {
		dirs = append(dirs,
			sourceDir{filepath.Join(cwd, "skills"), "project"},
			sourceDir{filepath.Join(cwd, ".agents", "skills"), "project"},
		)
	}
	if home := l.homeDir(); home != "" {
		dirs = append(dirs, sourceDir{filepath.Join(home, ".agents", "skills"), "user"})
	}
	for _, extra := range l.ExtraDirs {
		dirs = append(dirs, sourceDir{extra, "user"})
	}
	return dirs
}

// Dirs returns the skill root paths for cwd, for the watcher to observe.
func (l *Loader) Dirs(cwd string) []string {
	sds := l.dirs(cwd)
	out := make([]string, len(sds))
	for i, d := range sds {
		out[i] = d.path
	}
	return out
}

func (l *Loader) homeDir() string {
	if l.home != "" {
		return l.home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// scanDir reads every <dir>/<skill>/SKILL.md. Missing directories and
// malformed files are skipped, not errors.
func scanDir(dir, source string) []providers.SkillInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []providers.SkillInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), skillFile)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var meta metadata
		if _, err := frontmatter.Parse(data, &meta); err != nil {
			slog.Debug("skills: skipping malformed definition", "path", path, "error", err)
			continue
		}
		name := meta.Name
		if name == "" {
			name = e.Name()
		}
		out = append(out, providers.SkillInfo{
			Name:        name,
			Description: meta.Description,
			Source:      source,
			Path:        path,
		})
	}
	return out
}
