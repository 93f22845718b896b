package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

func agentBackend(rows []AgentInfo, err error) AgentLister {
	return AgentListerFunc(func(ctx context.Context, cwd string) ([]AgentInfo, error) {
		return rows, err
	})
}

func TestAgentProvider_ProjectOutranksUser(t *testing.T) {
	p := NewAgentProvider(agentBackend([]AgentInfo{
		{Name: "reviewer", Description: "reviews code", Source: "user"},
		{Name: "reviewer-pro", Description: "reviews code", Source: "project"},
	}, nil))

	res := p.Search(context.Background(), &mention.SearchRequest{Query: "review", Limit: 10})
	if len(res.Items) != 2 {
		t.Fatalf("got %d items", len(res.Items))
	}
	if res.Items[0].Label != "reviewer-pro" {
		t.Errorf("project-scoped agent should sort first, got %s", res.Items[0].Label)
	}
}

func TestAgentProvider_QueryFilters(t *testing.T) {
	p := NewAgentProvider(agentBackend([]AgentInfo{
		{Name: "reviewer", Source: "user"},
		{Name: "debugger", Source: "user"},
	}, nil))

	res := p.Search(context.Background(), &mention.SearchRequest{Query: "debug", Limit: 10})
	if len(res.Items) != 1 || res.Items[0].Label != "debugger" {
		t.Errorf("unexpected items: %v", labels(res.Items))
	}
}

func TestAgentProvider_BackendFailure(t *testing.T) {
	p := NewAgentProvider(agentBackend(nil, errors.New("listing broke")))
	res := p.Search(context.Background(), &mention.SearchRequest{Limit: 10})
	if res.Warning == "" || len(res.Items) != 0 {
		t.Error("backend failure must degrade to an empty warned result")
	}
}

func TestAgentProvider_RoundTrip(t *testing.T) {
	p := NewAgentProvider(agentBackend([]AgentInfo{
		{Name: "code-reviewer", Description: "x", Source: "project", Path: "/w/.agents/code-reviewer.md"},
	}, nil))

	res := p.Search(context.Background(), &mention.SearchRequest{Limit: 10})
	original := res.Items[0]

	token := p.Serialize(original)
	if token != "agent:code-reviewer" {
		t.Errorf("Serialize = %q", token)
	}
	back := p.Deserialize(token)
	if back == nil || back.ID != original.ID {
		t.Error("round trip must preserve the item id")
	}
}

func TestAgentProvider_ResolveFillsPlaceholder(t *testing.T) {
	p := NewAgentProvider(agentBackend([]AgentInfo{
		{Name: "code-reviewer", Description: "reviews diffs", Source: "project", Path: "/w/.agents/code-reviewer.md"},
	}, nil))

	placeholder := p.Deserialize("agent:code-reviewer")
	if placeholder == nil || placeholder.Description != "" {
		t.Fatalf("expected a sparse placeholder, got %+v", placeholder)
	}

	full, err := p.Resolve(context.Background(), placeholder.ID)
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if full.ID != placeholder.ID || full.Description != "reviews diffs" {
		t.Errorf("Resolve should fill backend fields, got %+v", full)
	}

	if _, err := p.Resolve(context.Background(), "agent:unknown"); err == nil {
		t.Error("resolving an unknown agent must error")
	}
}

func TestAgentProvider_DeserializeForeign(t *testing.T) {
	p := NewAgentProvider(agentBackend(nil, nil))
	for _, token := range []string{"skill:x", "bogus:abc", "agent:", ""} {
		if item := p.Deserialize(token); item != nil {
			t.Errorf("Deserialize(%q) should be nil", token)
		}
	}
}

func TestSkillProvider_ProjectBoostAndRoundTrip(t *testing.T) {
	p := NewSkillProvider(SkillListerFunc(func(ctx context.Context, cwd string) ([]SkillInfo, error) {
		return []SkillInfo{
			{Name: "commit-helper", Description: "writes commits", Source: "project"},
			{Name: "pr-helper", Description: "writes PRs", Source: "user"},
		}, nil
	}))

	res := p.Search(context.Background(), &mention.SearchRequest{Query: "helper", Limit: 10})
	if len(res.Items) != 2 {
		t.Fatalf("got %d items", len(res.Items))
	}
	if res.Items[0].Label != "commit-helper" {
		t.Errorf("project skill should sort first, got %s", res.Items[0].Label)
	}

	token := p.Serialize(res.Items[0])
	if token != "skill:commit-helper" {
		t.Errorf("Serialize = %q", token)
	}
	back := p.Deserialize(token)
	if back == nil || back.ID != res.Items[0].ID {
		t.Error("round trip must preserve the item id")
	}
}

func TestSkillProvider_CancelledContext(t *testing.T) {
	calls := 0
	p := NewSkillProvider(SkillListerFunc(func(ctx context.Context, cwd string) ([]SkillInfo, error) {
		calls++
		return nil, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := p.Search(ctx, &mention.SearchRequest{Limit: 10})
	if len(res.Items) != 0 || calls != 0 {
		t.Error("cancelled search must short-circuit before the backend call")
	}
}

func labels(items []mention.Item) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Label
	}
	return out
}
