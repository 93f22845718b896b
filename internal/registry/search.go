package registry

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// ResultCache memoizes per-provider search results. Implementations key on
// provider id, normalized query and the request fingerprint; a hit must be
// indistinguishable from a fresh search except for latency.
type ResultCache interface {
	Get(providerID string, req *mention.SearchRequest) (*mention.SearchResult, bool)
	Put(providerID string, req *mention.SearchRequest, res *mention.SearchResult)
}

// UsageBooster reports priority boosts for recently used mention ids.
type UsageBooster interface {
	Boosts(ctx context.Context, ids []string) (map[string]int, error)
}

// Searcher fans a query out to all available providers matching a trigger,
// merges and ranks their results, and returns one bounded page with timing
// and partial-failure metadata.
type Searcher struct {
	reg   *Registry
	cache ResultCache
	usage UsageBooster
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithCache attaches a read-through result cache.
func WithCache(c ResultCache) SearcherOption {
	return func(s *Searcher) { s.cache = c }
}

// WithUsage attaches a frecency booster for recently used mentions.
func WithUsage(u UsageBooster) SearcherOption {
	return func(s *Searcher) { s.usage = u }
}

// NewSearcher creates an aggregated search engine over the registry.
func NewSearcher(reg *Registry, opts ...SearcherOption) *Searcher {
	s := &Searcher{reg: reg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderTiming is per-provider metadata of one aggregated search.
type ProviderTiming struct {
	ID       string
	Duration time.Duration
	Count    int
	Warning  string
	Cached   bool
}

// AggregateResult is the merged outcome of one aggregated search.
// Items never exceed the request limit.
type AggregateResult struct {
	Items   []mention.Item
	HasMore bool

	// Warnings collects per-provider backend failures; a failing provider
	// degrades to zero results without hiding the others.
	Warnings []string

	Timing    time.Duration
	Providers []ProviderTiming
}

type outcome struct {
	res    *mention.SearchResult
	cached bool
}

// Search runs one aggregated query. A context cancelled before entry, or
// while providers are still in flight, yields an empty result with zero
// timing; late provider results are discarded, never merged.
func (s *Searcher) Search(ctx context.Context, trigger rune, req *mention.SearchRequest) *AggregateResult {
	if ctx.Err() != nil {
		return &AggregateResult{}
	}
	start := time.Now()

	var candidates []*mention.Provider
	for _, p := range s.reg.GetByTrigger(trigger) {
		if p.IsAvailable(req) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return &AggregateResult{Timing: time.Since(start)}
	}

	outcomes := make([]outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				outcomes[i] = outcome{res: mention.EmptyResult(0)}
				return nil
			}
			if s.cache != nil {
				if res, ok := s.cache.Get(p.ID, req); ok {
					outcomes[i] = outcome{res: res, cached: true}
					return nil
				}
			}
			t0 := time.Now()
			res := p.Search(gctx, req)
			if res == nil {
				res = mention.WarningResult("provider returned no result", time.Since(t0))
			}
			if res.Timing == 0 {
				res.Timing = time.Since(t0)
			}
			if s.cache != nil && res.Warning == "" && gctx.Err() == nil {
				s.cache.Put(p.ID, req, res)
			}
			outcomes[i] = outcome{res: res}
			return nil
		})
	}
	g.Wait()

	// A cancellation that raced the fan-out wins: the stale merge is dropped.
	if ctx.Err() != nil {
		return &AggregateResult{}
	}

	agg := &AggregateResult{}
	seen := make(map[string]bool)
	var items []mention.Item
	for i, p := range candidates {
		res := outcomes[i].res
		agg.Providers = append(agg.Providers, ProviderTiming{
			ID:       p.ID,
			Duration: res.Timing,
			Count:    len(res.Items),
			Warning:  res.Warning,
			Cached:   outcomes[i].cached,
		})
		if res.Warning != "" {
			agg.Warnings = append(agg.Warnings, p.ID+": "+res.Warning)
		}
		if res.HasMore {
			agg.HasMore = true
		}
		for _, item := range res.Items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
		}
	}

	s.applyUsageBoosts(ctx, items)
	mention.SortByRelevance(items, req.Query)

	limit := req.EffectiveLimit()
	if len(items) > limit {
		items = items[:limit]
		agg.HasMore = true
	}
	agg.Items = items
	agg.Timing = time.Since(start)
	return agg
}

// applyUsageBoosts nudges recently used mentions up within their priority
// bucket. Booster failures only cost the boost, never the search.
func (s *Searcher) applyUsageBoosts(ctx context.Context, items []mention.Item) {
	if s.usage == nil || len(items) == 0 {
		return
	}
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	boosts, err := s.usage.Boosts(ctx, ids)
	if err != nil {
		slog.Debug("mention search: usage boost lookup failed", "error", err)
		return
	}
	for i := range items {
		if b := boosts[items[i].ID]; b > 0 {
			items[i].Priority += b
		}
	}
}
