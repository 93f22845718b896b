package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// SkillInfo is one row from the skill listing backend.
type SkillInfo struct {
	Name        string
	Description string
	Source      string // "user" or "project"
	Path        string
}

// SkillLister is the skill listing backend contract.
type SkillLister interface {
	ListEnabled(ctx context.Context, cwd string) ([]SkillInfo, error)
}

// SkillListerFunc adapts a plain function to SkillLister.
type SkillListerFunc func(ctx context.Context, cwd string) ([]SkillInfo, error)

func (f SkillListerFunc) ListEnabled(ctx context.Context, cwd string) ([]SkillInfo, error) {
	return f(ctx, cwd)
}

// SkillData is the payload of skill mention items.
type SkillData struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Path        string `json:"path,omitempty"`
}

// NewSkillProvider builds the skill provider over a listing backend.
// Project-scoped skills outrank user-level ones at equal relevance.
func NewSkillProvider(backend SkillLister) *mention.Provider {
	return mention.MustNew(mention.Provider{
		ID:       "skills",
		Label:    "Skills",
		Priority: SkillPriority,
		Category: mention.Category{ID: "skills", Label: "Skills", Priority: SkillPriority},
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			return searchSkills(ctx, backend, req)
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: deserializeSkill,
		Resolve: func(ctx context.Context, id string) (*mention.Item, error) {
			return resolveSkill(ctx, backend, id)
		},
	})
}

// resolveSkill fills a deserialized placeholder with the backend's full row.
func resolveSkill(ctx context.Context, backend SkillLister, id string) (*mention.Item, error) {
	name := mention.Identifier(id, mention.PrefixSkill)
	if name == "" {
		return nil, fmt.Errorf("not a skill mention: %s", id)
	}
	rows, err := backend.ListEnabled(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Name == name {
			item := skillItem(row)
			return &item, nil
		}
	}
	return nil, fmt.Errorf("skill not found: %s", name)
}

func searchSkills(ctx context.Context, backend SkillLister, req *mention.SearchRequest) *mention.SearchResult {
	if ctx.Err() != nil {
		return mention.EmptyResult(0)
	}
	start := time.Now()

	rows, err := backend.ListEnabled(ctx, req.ProjectPath)
	if err != nil {
		return mention.WarningResult("skill listing failed: "+err.Error(), time.Since(start))
	}

	items := make([]mention.Item, 0, len(rows))
	for _, row := range rows {
		if row.Name == "" {
			continue
		}
		items = append(items, skillItem(row))
	}
	return finishListing(items, req, start)
}

func skillItem(row SkillInfo) mention.Item {
	priority := SkillPriority
	if row.Source == "project" {
		priority += sourceBoost
	}
	return mention.Item{
		ID:          mention.PrefixSkill + row.Name,
		Label:       row.Name,
		Description: row.Description,
		Icon:        "skill",
		Priority:    priority,
		Keywords:    []string{row.Name},
		Data: SkillData{
			Name:        row.Name,
			Description: row.Description,
			Source:      row.Source,
			Path:        row.Path,
		},
		Metadata: map[string]string{
			"source": row.Source,
			"type":   "skill",
		},
	}
}

func deserializeSkill(token string) *mention.Item {
	if !mention.IsType(token, mention.PrefixSkill) {
		return nil
	}
	name := mention.Identifier(token, mention.PrefixSkill)
	if name == "" {
		return nil
	}
	return &mention.Item{
		ID:       token,
		Label:    name,
		Icon:     "skill",
		Priority: SkillPriority,
		Data:     SkillData{Name: name},
		Metadata: map[string]string{"type": "skill"},
	}
}
