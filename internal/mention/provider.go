package mention

import (
	"context"
	"errors"
	"fmt"
)

// SearchFunc answers a search request. It is a total function: backend
// failures are converted into a WarningResult, and a context that is already
// cancelled returns an empty result without issuing backend calls.
type SearchFunc func(ctx context.Context, req *SearchRequest) *SearchResult

// Provider is an immutable descriptor for one mention data source.
//
// Search, Serialize and Deserialize are the mandatory core. The remaining
// hooks are optional capabilities: a nil field means the capability is
// absent, which callers check directly instead of relying on duck typing.
type Provider struct {
	// ID uniquely names the provider inside one registry.
	ID    string
	Label string

	Trigger  Trigger
	Category Category

	// Priority orders providers and their result groups; higher first.
	Priority int

	// Search must never return nil and must never panic on backend failure.
	Search SearchFunc

	// Serialize embeds the item id into its persisted form so that
	// Deserialize recovers an item with an equal id. Pure and deterministic.
	Serialize func(item Item) string

	// Deserialize parses a token (the inner id, without the "@[ ]" wrapper).
	// It returns nil for tokens this provider does not own and for malformed
	// tokens it does own; it never panics.
	Deserialize func(token string) *Item

	// Resolve fills in the full item for a previously deserialized
	// placeholder (optional).
	Resolve func(ctx context.Context, id string) (*Item, error)

	// Children lists hierarchical descendants of an item (optional).
	Children func(ctx context.Context, parentID string) ([]Item, error)

	// Available hides the provider under contexts where it cannot function
	// (optional; nil means always available). Must be a pure predicate.
	Available func(req *SearchRequest) bool

	// Activate and Deactivate are lifecycle hooks invoked exactly once per
	// registration/unregistration (optional). Activation failures are logged
	// by the registry and never abort registration.
	Activate   func(ctx context.Context) error
	Deactivate func() error
}

// DefaultPriority is assigned to providers that do not set one.
const DefaultPriority = 50

var errMissingID = errors.New("mention: provider id is required")

// New validates a provider descriptor and fills defaults: trigger '@' in
// standalone position allowing spaces, priority 50, and a category derived
// from the provider id. The returned descriptor is complete and should not
// be mutated after registration.
func New(p Provider) (*Provider, error) {
	if p.ID == "" {
		return nil, errMissingID
	}
	if p.Search == nil {
		return nil, fmt.Errorf("mention: provider %q has no search function", p.ID)
	}
	if p.Serialize == nil {
		return nil, fmt.Errorf("mention: provider %q has no serialize function", p.ID)
	}
	if p.Deserialize == nil {
		return nil, fmt.Errorf("mention: provider %q has no deserialize function", p.ID)
	}

	if p.Trigger.Char == 0 {
		p.Trigger.Char = '@'
	}
	if p.Trigger.Position == "" {
		p.Trigger.Position = PositionStandalone
		p.Trigger.AllowSpaces = true
	}
	if p.Priority == 0 {
		p.Priority = DefaultPriority
	}
	if p.Category.ID == "" {
		p.Category.ID = p.ID
	}
	if p.Category.Label == "" {
		p.Category.Label = p.Label
	}
	if p.Label == "" {
		p.Label = p.ID
	}
	return &p, nil
}

// MustNew is New for statically-defined providers where a validation failure
// is a programming error.
func MustNew(p Provider) *Provider {
	built, err := New(p)
	if err != nil {
		panic(err)
	}
	return built
}

// IsAvailable applies the optional availability predicate, defaulting to true.
func (p *Provider) IsAvailable(req *SearchRequest) bool {
	if p.Available == nil {
		return true
	}
	return p.Available(req)
}
