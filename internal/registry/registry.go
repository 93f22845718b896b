// Package registry holds the process-wide catalogue of mention providers and
// the aggregated search engine built on top of it. A Registry is an explicit,
// constructible service object: tests create a fresh instance per case, the
// application creates one at startup and tears it down with Clear.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// entry pairs a provider with its insertion sequence (stable tie-break for
// equal priorities) and its activation completion signal.
type entry struct {
	provider *mention.Provider
	seq      int
	done     chan struct{}
}

// Registry maps provider ids to providers. All mutation goes through
// Register/RegisterAll/Unregister/Clear; derived views (sorted-all,
// by-trigger, categories) are memoized and invalidated on every mutation,
// before subscribers are notified.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	nextSeq int
	version uint64

	// Memoized derived views, valid while memoVersion == version.
	memoVersion    uint64
	memoValid      bool
	memoAll        []*mention.Provider
	memoByTrigger  map[rune][]*mention.Provider
	memoCategories []mention.Category

	subMu       sync.RWMutex
	subscribers map[string]func()
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries:     make(map[string]*entry),
		subscribers: make(map[string]func()),
	}
}

// Register normalizes the provider through mention.New, inserts it and fires
// its activation hook asynchronously (tracked, not awaited). Registering an
// id that is already present deactivates the old provider first and logs a
// replacement warning. The returned closure unregisters the provider.
func (r *Registry) Register(p *mention.Provider) (func(), error) {
	built, err := mention.New(*p)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	var replaced *mention.Provider
	if old, ok := r.entries[built.ID]; ok {
		slog.Warn("mention registry: replacing provider", "id", built.ID)
		replaced = old.provider
	}
	e := &entry{provider: built, seq: r.nextSeq, done: make(chan struct{})}
	r.nextSeq++
	r.entries[built.ID] = e
	r.invalidateLocked()
	r.mu.Unlock()

	if replaced != nil {
		deactivate(replaced)
	}

	go activate(built, e.done)

	r.notify()

	id := built.ID
	return func() { r.Unregister(id) }, nil
}

// RegisterAll registers providers in input order. The returned closure
// unregisters all of them, independent of order. On failure, providers
// registered so far are unregistered again.
func (r *Registry) RegisterAll(providers []*mention.Provider) (func(), error) {
	unregs := make([]func(), 0, len(providers))
	for _, p := range providers {
		unreg, err := r.Register(p)
		if err != nil {
			for _, u := range unregs {
				u()
			}
			return nil, err
		}
		unregs = append(unregs, unreg)
	}
	return func() {
		for _, u := range unregs {
			u()
		}
	}, nil
}

// Unregister deactivates and removes a provider. No-op when absent.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.entries, id)
	r.invalidateLocked()
	r.mu.Unlock()

	deactivate(e.provider)
	r.notify()
}

// Clear deactivates and removes all providers (full reset/teardown).
func (r *Registry) Clear() {
	r.mu.Lock()
	old := make([]*mention.Provider, 0, len(r.entries))
	for _, e := range r.entries {
		old = append(old, e.provider)
	}
	r.entries = make(map[string]*entry)
	r.invalidateLocked()
	r.mu.Unlock()

	for _, p := range old {
		deactivate(p)
	}
	if len(old) > 0 {
		r.notify()
	}
}

// Get returns a provider by id.
func (r *Registry) Get(id string) (*mention.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// Has reports whether a provider id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.Get(id)
	return ok
}

// Count returns the number of registered providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// GetAll returns providers sorted by descending priority; ties keep
// insertion order. The result is memoized until the next mutation and must
// be treated as read-only.
func (r *Registry) GetAll() []*mention.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshLocked()
	return r.memoAll
}

// GetByTrigger returns providers whose trigger character matches, in GetAll
// order. Memoized per character until the next mutation.
func (r *Registry) GetByTrigger(char rune) []*mention.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshLocked()
	return r.memoByTrigger[char]
}

// GetAvailable filters GetAll by each provider's availability predicate.
// Not memoized: availability depends on the request context.
func (r *Registry) GetAvailable(req *mention.SearchRequest) []*mention.Provider {
	all := r.GetAll()
	out := make([]*mention.Provider, 0, len(all))
	for _, p := range all {
		if p.IsAvailable(req) {
			out = append(out, p)
		}
	}
	return out
}

// GetTriggers returns the distinct trigger characters of all providers,
// sorted for determinism.
func (r *Registry) GetTriggers() []rune {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshLocked()
	chars := make([]rune, 0, len(r.memoByTrigger))
	for c := range r.memoByTrigger {
		chars = append(chars, c)
	}
	sort.Slice(chars, func(i, j int) bool { return chars[i] < chars[j] })
	return chars
}

// GetCategories returns categories deduplicated by id (first-seen metadata
// wins, in GetAll order), sorted by descending category priority. Memoized.
func (r *Registry) GetCategories() []mention.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshLocked()
	return r.memoCategories
}

// Deserialize tries every provider in GetAll order and returns the first
// non-nil item. Foreign tokens yield (nil, nil).
func (r *Registry) Deserialize(token string) (*mention.Item, *mention.Provider) {
	for _, p := range r.GetAll() {
		if item := p.Deserialize(token); item != nil {
			return item, p
		}
	}
	return nil, nil
}

// WaitForActivation blocks until every in-flight activation of currently
// registered providers has settled. Activation errors are logged by the
// activation goroutine and never surface here.
func (r *Registry) WaitForActivation(ctx context.Context) error {
	r.mu.RLock()
	dones := make([]chan struct{}, 0, len(r.entries))
	for _, e := range r.entries {
		dones = append(dones, e.done)
	}
	r.mu.RUnlock()

	for _, d := range dones {
		select {
		case <-d:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a change listener invoked synchronously after every
// mutation. The returned closure unsubscribes.
func (r *Registry) Subscribe(fn func()) func() {
	id := uuid.NewString()
	r.subMu.Lock()
	r.subscribers[id] = fn
	r.subMu.Unlock()
	return func() {
		r.subMu.Lock()
		delete(r.subscribers, id)
		r.subMu.Unlock()
	}
}

// invalidateLocked bumps the version so memoized views are recomputed on the
// next read. Must run before subscribers are notified so a subscriber reading
// the registry during its callback observes post-mutation state.
func (r *Registry) invalidateLocked() {
	r.version++
	r.memoValid = false
}

func (r *Registry) refreshLocked() {
	if r.memoValid && r.memoVersion == r.version {
		return
	}

	es := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].provider.Priority != es[j].provider.Priority {
			return es[i].provider.Priority > es[j].provider.Priority
		}
		return es[i].seq < es[j].seq
	})

	all := make([]*mention.Provider, len(es))
	byTrigger := make(map[rune][]*mention.Provider)
	var categories []mention.Category
	seenCat := make(map[string]bool)
	for i, e := range es {
		p := e.provider
		all[i] = p
		byTrigger[p.Trigger.Char] = append(byTrigger[p.Trigger.Char], p)
		if !seenCat[p.Category.ID] {
			seenCat[p.Category.ID] = true
			categories = append(categories, p.Category)
		}
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Priority > categories[j].Priority
	})

	r.memoAll = all
	r.memoByTrigger = byTrigger
	r.memoCategories = categories
	r.memoVersion = r.version
	r.memoValid = true
}

func (r *Registry) notify() {
	r.subMu.RLock()
	fns := make([]func(), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		fns = append(fns, fn)
	}
	r.subMu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

// activate runs a provider's activation hook, logging failures. Registration
// completes regardless of the outcome.
func activate(p *mention.Provider, done chan struct{}) {
	defer close(done)
	if p.Activate == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("mention registry: activation panic", "id", p.ID, "panic", rec)
		}
	}()
	if err := p.Activate(context.Background()); err != nil {
		slog.Warn("mention registry: activation failed", "id", p.ID, "error", err)
	}
}

// deactivate runs a provider's deactivation hook, logging failures. One
// provider's failure never blocks the others.
func deactivate(p *mention.Provider) {
	if p.Deactivate == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("mention registry: deactivation panic", "id", p.ID, "panic", rec)
		}
	}()
	if err := p.Deactivate(); err != nil {
		slog.Warn("mention registry: deactivation failed", "id", p.ID, "error", err)
	}
}
