// Package fileindex implements the local filesystem backend for the file
// mention provider. It walks the project tree on demand and matches paths
// case-insensitively; no persistent index is kept.
package fileindex

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nextlevelbuilder/mention/internal/providers"
)

// maxVisited bounds how many directory entries a single search will touch,
// so a query over a huge tree stays cheap.
const maxVisited = 50000

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".venv":        true,
}

// Searcher walks a project directory and returns matching files and folders.
type Searcher struct {
	// Repository names the source the results belong to; "local" if empty.
	Repository string
}

// NewSearcher creates a filesystem searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// Search implements the file provider's backend contract. An empty query
// returns the shallowest entries first, up to limit.
func (s *Searcher) Search(ctx context.Context, projectPath, query string, limit int) ([]providers.FileMatch, error) {
	if projectPath == "" || limit <= 0 {
		return nil, nil
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	repo := s.Repository
	if repo == "" {
		repo = "local"
	}

	var matches []providers.FileMatch
	visited := 0
	err := filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == projectPath {
			return nil
		}
		visited++
		if visited > maxVisited {
			return filepath.SkipAll
		}

		name := d.Name()
		if d.IsDir() && (skipDirs[name] || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasPrefix(name, ".") {
			return nil
		}

		rel, relErr := filepath.Rel(projectPath, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if needle != "" && !strings.Contains(strings.ToLower(rel), needle) {
			return nil
		}

		kind := "file"
		if d.IsDir() {
			kind = "folder"
		}
		matches = append(matches, providers.FileMatch{Path: rel, Type: kind, Repository: repo})
		if len(matches) >= limit {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && err != context.Canceled && err != context.DeadlineExceeded && ctx.Err() == nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Shallower paths first, then lexicographic, so results are stable.
	sort.SliceStable(matches, func(i, j int) bool {
		di := strings.Count(matches[i].Path, "/")
		dj := strings.Count(matches[j].Path, "/")
		if di != dj {
			return di < dj
		}
		return matches[i].Path < matches[j].Path
	})
	return matches, nil
}
