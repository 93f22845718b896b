package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// AgentInfo is one row from the agent listing backend.
type AgentInfo struct {
	Name            string
	Description     string
	Prompt          string
	Tools           []string
	DisallowedTools []string
	Model           string
	Source          string // "user" or "project"
	Path            string
}

// AgentLister is the agent listing backend contract.
type AgentLister interface {
	ListEnabled(ctx context.Context, cwd string) ([]AgentInfo, error)
}

// AgentListerFunc adapts a plain function to AgentLister.
type AgentListerFunc func(ctx context.Context, cwd string) ([]AgentInfo, error)

func (f AgentListerFunc) ListEnabled(ctx context.Context, cwd string) ([]AgentInfo, error) {
	return f(ctx, cwd)
}

// AgentData is the payload of agent mention items.
type AgentData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Path        string `json:"path,omitempty"`
	Model       string `json:"model,omitempty"`
}

// NewAgentProvider builds the agent provider over a listing backend.
// Project-scoped agents outrank user-level ones at equal relevance.
func NewAgentProvider(backend AgentLister) *mention.Provider {
	return mention.MustNew(mention.Provider{
		ID:       "agents",
		Label:    "Agents",
		Priority: AgentPriority,
		Category: mention.Category{ID: "agents", Label: "Agents", Priority: AgentPriority},
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			return searchAgents(ctx, backend, req)
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: deserializeAgent,
		Resolve: func(ctx context.Context, id string) (*mention.Item, error) {
			return resolveAgent(ctx, backend, id)
		},
	})
}

// resolveAgent fills a deserialized placeholder with the backend's full row.
func resolveAgent(ctx context.Context, backend AgentLister, id string) (*mention.Item, error) {
	name := mention.Identifier(id, mention.PrefixAgent)
	if name == "" {
		return nil, fmt.Errorf("not an agent mention: %s", id)
	}
	rows, err := backend.ListEnabled(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Name == name {
			item := agentItem(row)
			return &item, nil
		}
	}
	return nil, fmt.Errorf("agent not found: %s", name)
}

func searchAgents(ctx context.Context, backend AgentLister, req *mention.SearchRequest) *mention.SearchResult {
	if ctx.Err() != nil {
		return mention.EmptyResult(0)
	}
	start := time.Now()

	rows, err := backend.ListEnabled(ctx, req.ProjectPath)
	if err != nil {
		return mention.WarningResult("agent listing failed: "+err.Error(), time.Since(start))
	}

	items := make([]mention.Item, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		items = append(items, agentItem(row))
	}
	return finishListing(items, req, start)
}

func agentItem(row AgentInfo) mention.Item {
	priority := AgentPriority
	if row.Source == "project" {
		priority += sourceBoost
	}
	return mention.Item{
		ID:          mention.PrefixAgent + row.Name,
		Label:       row.Name,
		Description: row.Description,
		Icon:        "agent",
		Priority:    priority,
		Keywords:    agentKeywords(row),
		Data: AgentData{
			Name:        row.Name,
			Description: row.Description,
			Source:      row.Source,
			Path:        row.Path,
			Model:       row.Model,
		},
		Metadata: map[string]string{
			"source": row.Source,
			"type":   "agent",
		},
	}
}

func agentKeywords(row AgentInfo) []string {
	kws := []string{row.Name}
	if row.Model != "" {
		kws = append(kws, row.Model)
	}
	return kws
}

func deserializeAgent(token string) *mention.Item {
	if !mention.IsType(token, mention.PrefixAgent) {
		return nil
	}
	name := mention.Identifier(token, mention.PrefixAgent)
	if name == "" {
		return nil
	}
	// Placeholder item: source/path are filled later via the backend.
	return &mention.Item{
		ID:       token,
		Label:    name,
		Icon:     "agent",
		Priority: AgentPriority,
		Data:     AgentData{Name: name},
		Metadata: map[string]string{"type": "agent"},
	}
}

// finishListing applies the shared tail of list-backed providers: relevance
// filtering and re-ranking for non-empty queries, then truncation.
func finishListing(items []mention.Item, req *mention.SearchRequest, start time.Time) *mention.SearchResult {
	query := strings.TrimSpace(req.Query)
	if query != "" {
		matched := items[:0]
		for _, item := range items {
			if mention.Score(item, query) > 0 {
				matched = append(matched, item)
			}
		}
		items = matched
		mention.SortByRelevance(items, query)
	}

	limit := req.EffectiveLimit()
	total := len(items)
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
