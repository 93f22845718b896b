// Package providers contains the built-in mention providers: files/folders,
// agents, skills and MCP tools. Each one is a thin adapter from an external
// query backend to the provider contract and owns its serialization
// namespace. Backend failures never escape a provider: they degrade to an
// empty result carrying a warning.
package providers

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// Default provider priorities. Files rank above skills, skills above agents,
// agents above tools.
const (
	FilePriority  = 100
	SkillPriority = 80
	AgentPriority = 70
	ToolPriority  = 60

	// sourceBoost lifts changed files and project-scoped entities above
	// their peers at equal relevance.
	sourceBoost = 10
)

// FileMatch is one row from the file search backend.
type FileMatch struct {
	Path       string
	Type       string // "file" or "folder"
	Repository string
}

// FileSearcher is the file search backend contract. The concrete transport
// is out of scope here; internal/fileindex supplies a local implementation.
type FileSearcher interface {
	Search(ctx context.Context, projectPath, query string, limit int) ([]FileMatch, error)
}

// FileData is the payload of file and folder mention items.
type FileData struct {
	Path       string `json:"path"`
	Type       string `json:"type"`
	Repository string `json:"repository"`
}

// NewFileProvider builds the files/folders provider over a search backend.
// It is unavailable without a project path.
func NewFileProvider(backend FileSearcher) *mention.Provider {
	return mention.MustNew(mention.Provider{
		ID:       "files",
		Label:    "Files & Folders",
		Priority: FilePriority,
		Category: mention.Category{ID: "files", Label: "Files", Priority: FilePriority},
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			return searchFiles(ctx, backend, req)
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: deserializeFile,
		Available: func(req *mention.SearchRequest) bool {
			return req != nil && req.ProjectPath != ""
		},
	})
}

func searchFiles(ctx context.Context, backend FileSearcher, req *mention.SearchRequest) *mention.SearchResult {
	if ctx.Err() != nil {
		return mention.EmptyResult(0)
	}
	start := time.Now()
	limit := req.EffectiveLimit()
	query := strings.TrimSpace(req.Query)

	var items []mention.Item
	seenPath := make(map[string]bool)

	// With an empty query the locally-changed files lead the list, each with
	// a fixed priority boost so they sort first.
	if query == "" {
		for _, cf := range req.ChangedFiles {
			if cf.Path == "" || seenPath[cf.Path] {
				continue
			}
			seenPath[cf.Path] = true
			item := fileItem(FileMatch{Path: cf.Path, Type: "file", Repository: "local"}, FilePriority+sourceBoost)
			item.Metadata["additions"] = strconv.Itoa(cf.Additions)
			item.Metadata["deletions"] = strconv.Itoa(cf.Deletions)
			items = append(items, item)
		}
	}

	// Ask for one row beyond the limit so HasMore is detectable.
	matches, err := backend.Search(ctx, req.ProjectPath, query, limit+1)
	if err != nil {
		return mention.WarningResult("file search failed: "+err.Error(), time.Since(start))
	}
	for _, m := range matches {
		if m.Path == "" || seenPath[m.Path] {
			continue
		}
		seenPath[m.Path] = true
		items = append(items, fileItem(m, FilePriority))
	}

	total := len(items)
	if query != "" {
		mention.SortByRelevance(items, query)
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return &mention.SearchResult{
		Items:      items,
		HasMore:    total > limit,
		TotalCount: total,
		Timing:     time.Since(start),
	}
}

func fileItem(m FileMatch, priority int) mention.Item {
	prefix := mention.PrefixFile
	icon := "file"
	if m.Type == "folder" {
		prefix = mention.PrefixFolder
		icon = "folder"
	}
	repo := m.Repository
	if repo == "" {
		repo = "local"
	}
	return mention.Item{
		ID:       prefix + repo + ":" + m.Path,
		Label:    filepath.Base(m.Path),
		Icon:     icon,
		Priority: priority,
		Keywords: []string{m.Path},
		Data:     FileData{Path: m.Path, Type: typeOrFile(m.Type), Repository: repo},
		Metadata: map[string]string{
			"path":       m.Path,
			"type":       typeOrFile(m.Type),
			"repository": repo,
		},
	}
}

func typeOrFile(t string) string {
	if t == "folder" {
		return "folder"
	}
	return "file"
}

// deserializeFile parses "file:<repo>:<path>" and "folder:<repo>:<path>"
// tokens. Anything else, including malformed owned tokens, yields nil.
func deserializeFile(token string) *mention.Item {
	var kind string
	switch {
	case mention.IsType(token, mention.PrefixFile):
		kind = "file"
	case mention.IsType(token, mention.PrefixFolder):
		kind = "folder"
	default:
		return nil
	}

	rest := token[strings.Index(token, ":")+1:]
	sep := strings.Index(rest, ":")
	if sep <= 0 || sep == len(rest)-1 {
		return nil
	}
	repo, path := rest[:sep], rest[sep+1:]

	item := fileItem(FileMatch{Path: path, Type: kind, Repository: repo}, FilePriority)
	item.ID = token
	return &item
}
