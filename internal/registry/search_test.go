package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

func itemsProvider(id string, priority int, items ...mention.Item) *mention.Provider {
	return &mention.Provider{
		ID:       id,
		Priority: priority,
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			return &mention.SearchResult{Items: items, TotalCount: len(items)}
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: func(token string) *mention.Item { return nil },
	}
}

func TestSearcher_MergesAndRanks(t *testing.T) {
	r := New()
	mustRegister(t, r, itemsProvider("files", 100,
		mention.Item{ID: "file:local:/src/index.ts", Label: "index.ts", Priority: 100},
		mention.Item{ID: "file:local:/src/main.ts", Label: "main.ts", Priority: 100},
	))
	mustRegister(t, r, itemsProvider("skills", 80,
		mention.Item{ID: "skill:indexing", Label: "indexing", Priority: 80},
	))

	s := NewSearcher(r)
	res := s.Search(context.Background(), '@', &mention.SearchRequest{Query: "index", Limit: 10})

	if len(res.Items) != 3 {
		t.Fatalf("got %d items", len(res.Items))
	}
	// File items share the 100-priority bucket; the relevance prefix match
	// puts index.ts before main.ts, and the skill bucket follows.
	if res.Items[0].ID != "file:local:/src/index.ts" {
		t.Errorf("first item = %s", res.Items[0].ID)
	}
	if res.Items[2].ID != "skill:indexing" {
		t.Errorf("last item = %s", res.Items[2].ID)
	}
	if len(res.Providers) != 2 {
		t.Errorf("expected per-provider timing for 2 providers, got %d", len(res.Providers))
	}
}

func TestSearcher_LimitInvariant(t *testing.T) {
	var many []mention.Item
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		many = append(many, mention.Item{ID: "file:local:/" + id, Label: id})
	}
	r := New()
	mustRegister(t, r, itemsProvider("files", 100, many...))

	s := NewSearcher(r)
	res := s.Search(context.Background(), '@', &mention.SearchRequest{Limit: 4})
	if len(res.Items) > 4 {
		t.Errorf("limit invariant violated: %d items", len(res.Items))
	}
	if !res.HasMore {
		t.Error("HasMore should be set after truncation")
	}
}

func TestSearcher_DeduplicatesAcrossProviders(t *testing.T) {
	shared := mention.Item{ID: "file:local:/dup.go", Label: "dup.go"}
	r := New()
	mustRegister(t, r, itemsProvider("files", 100, shared))
	mustRegister(t, r, itemsProvider("recent", 90, shared))

	s := NewSearcher(r)
	res := s.Search(context.Background(), '@', &mention.SearchRequest{Limit: 10})
	if len(res.Items) != 1 {
		t.Errorf("duplicate ids must merge, got %d items", len(res.Items))
	}
}

func TestSearcher_CancelledBeforeEntry(t *testing.T) {
	r := New()
	mustRegister(t, r, itemsProvider("files", 100, mention.Item{ID: "file:local:/a", Label: "a"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher(r)
	res := s.Search(ctx, '@', &mention.SearchRequest{Limit: 10})
	if len(res.Items) != 0 || res.Timing != 0 {
		t.Error("cancelled search must return an empty result with zero timing")
	}
}

func TestSearcher_DiscardsLateResults(t *testing.T) {
	release := make(chan struct{})
	slow := &mention.Provider{
		ID:       "slow",
		Priority: 50,
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			<-release
			return &mention.SearchResult{Items: []mention.Item{{ID: "file:local:/late", Label: "late"}}}
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: func(token string) *mention.Item { return nil },
	}
	r := New()
	mustRegister(t, r, slow)

	ctx, cancel := context.WithCancel(context.Background())
	s := NewSearcher(r)

	var wg sync.WaitGroup
	var res *AggregateResult
	wg.Add(1)
	go func() {
		defer wg.Done()
		res = s.Search(ctx, '@', &mention.SearchRequest{Limit: 10})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	close(release)
	wg.Wait()

	if len(res.Items) != 0 {
		t.Error("late result must not be merged after cancellation")
	}
}

func TestSearcher_ProviderFailureDegrades(t *testing.T) {
	failing := &mention.Provider{
		ID:       "broken",
		Priority: 90,
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			return mention.WarningResult("backend unreachable", time.Millisecond)
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: func(token string) *mention.Item { return nil },
	}
	r := New()
	mustRegister(t, r, failing)
	mustRegister(t, r, itemsProvider("files", 100, mention.Item{ID: "file:local:/ok", Label: "ok"}))

	s := NewSearcher(r)
	res := s.Search(context.Background(), '@', &mention.SearchRequest{Limit: 10})

	if len(res.Items) != 1 {
		t.Errorf("healthy provider results should remain visible, got %d items", len(res.Items))
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestSearcher_SkipsUnavailableProviders(t *testing.T) {
	hidden := itemsProvider("files", 100, mention.Item{ID: "file:local:/x", Label: "x"})
	hidden.Available = func(req *mention.SearchRequest) bool { return req.ProjectPath != "" }
	r := New()
	mustRegister(t, r, hidden)

	s := NewSearcher(r)
	res := s.Search(context.Background(), '@', &mention.SearchRequest{Limit: 10})
	if len(res.Items) != 0 || len(res.Providers) != 0 {
		t.Error("unavailable provider must not be queried")
	}
}

type fakeCache struct {
	mu     sync.Mutex
	store  map[string]*mention.SearchResult
	hits   int
	misses int
}

func (c *fakeCache) key(providerID string, req *mention.SearchRequest) string {
	return providerID + "\x00" + req.Query
}

func (c *fakeCache) Get(providerID string, req *mention.SearchRequest) (*mention.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.store[c.key(providerID, req)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return res, ok
}

func (c *fakeCache) Put(providerID string, req *mention.SearchRequest, res *mention.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[c.key(providerID, req)] = res
}

func TestSearcher_CacheReadThrough(t *testing.T) {
	calls := 0
	counting := &mention.Provider{
		ID:       "files",
		Priority: 100,
		Search: func(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
			calls++
			return &mention.SearchResult{Items: []mention.Item{{ID: "file:local:/a", Label: "a"}}}
		},
		Serialize:   func(item mention.Item) string { return item.ID },
		Deserialize: func(token string) *mention.Item { return nil },
	}
	r := New()
	mustRegister(t, r, counting)

	c := &fakeCache{store: make(map[string]*mention.SearchResult)}
	s := NewSearcher(r, WithCache(c))

	req := &mention.SearchRequest{Query: "a", Limit: 10}
	first := s.Search(context.Background(), '@', req)
	second := s.Search(context.Background(), '@', req)

	if calls != 1 {
		t.Errorf("backend called %d times, want 1 (cache miss then hit)", calls)
	}
	if len(first.Items) != len(second.Items) || first.Items[0].ID != second.Items[0].ID {
		t.Error("cache hit must be indistinguishable from a fresh search")
	}
	if !second.Providers[0].Cached {
		t.Error("second search should be marked cached")
	}
}

type fakeBooster struct{ boosts map[string]int }

func (b *fakeBooster) Boosts(ctx context.Context, ids []string) (map[string]int, error) {
	return b.boosts, nil
}

func TestSearcher_UsageBoost(t *testing.T) {
	r := New()
	mustRegister(t, r, itemsProvider("files", 100,
		mention.Item{ID: "file:local:/a", Label: "a", Priority: 50},
		mention.Item{ID: "file:local:/b", Label: "b", Priority: 50},
	))

	s := NewSearcher(r, WithUsage(&fakeBooster{boosts: map[string]int{"file:local:/b": 5}}))
	res := s.Search(context.Background(), '@', &mention.SearchRequest{Limit: 10})
	if res.Items[0].ID != "file:local:/b" {
		t.Error("recently used item should sort first via priority boost")
	}
}
