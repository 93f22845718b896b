package mention

import (
	"context"
	"testing"
)

func testProvider(id string) Provider {
	return Provider{
		ID: id,
		Search: func(ctx context.Context, req *SearchRequest) *SearchResult {
			return EmptyResult(0)
		},
		Serialize:   func(item Item) string { return item.ID },
		Deserialize: func(token string) *Item { return nil },
	}
}

func TestNewFillsDefaults(t *testing.T) {
	p, err := New(testProvider("files"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Trigger.Char != '@' {
		t.Errorf("default trigger char = %q", p.Trigger.Char)
	}
	if p.Trigger.Position != PositionStandalone {
		t.Errorf("default position = %q", p.Trigger.Position)
	}
	if !p.Trigger.AllowSpaces {
		t.Error("default trigger should allow spaces")
	}
	if p.Priority != DefaultPriority {
		t.Errorf("default priority = %d", p.Priority)
	}
	if p.Category.ID != "files" {
		t.Errorf("default category id = %q", p.Category.ID)
	}
	if p.Label != "files" {
		t.Errorf("default label = %q", p.Label)
	}
}

func TestNewKeepsExplicitConfig(t *testing.T) {
	in := testProvider("skills")
	in.Priority = 80
	in.Trigger = Trigger{Char: '#', Position: PositionAny}
	in.Category = Category{ID: "knowledge", Label: "Knowledge"}

	p, err := New(in)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Priority != 80 || p.Trigger.Char != '#' || p.Category.ID != "knowledge" {
		t.Error("explicit configuration must not be overwritten")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Provider{}); err == nil {
		t.Error("missing id should fail")
	}

	p := testProvider("x")
	p.Search = nil
	if _, err := New(p); err == nil {
		t.Error("missing search should fail")
	}

	p = testProvider("x")
	p.Deserialize = nil
	if _, err := New(p); err == nil {
		t.Error("missing deserialize should fail")
	}
}

func TestIsAvailableDefault(t *testing.T) {
	p := MustNew(testProvider("x"))
	if !p.IsAvailable(&SearchRequest{}) {
		t.Error("nil availability predicate should default to true")
	}

	q := testProvider("y")
	q.Available = func(req *SearchRequest) bool { return req.ProjectPath != "" }
	built := MustNew(q)
	if built.IsAvailable(&SearchRequest{}) {
		t.Error("predicate should hide provider without project path")
	}
	if !built.IsAvailable(&SearchRequest{ProjectPath: "/w"}) {
		t.Error("predicate should allow provider with project path")
	}
}

func TestEffectiveLimit(t *testing.T) {
	var nilReq *SearchRequest
	if nilReq.EffectiveLimit() != DefaultLimit {
		t.Error("nil request should use default limit")
	}
	if (&SearchRequest{Limit: 5}).EffectiveLimit() != 5 {
		t.Error("explicit limit should win")
	}
}
