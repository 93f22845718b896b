// Package mention defines the core types of the mention system: items,
// triggers, the token grammar for persisting references inside text, the
// provider contract every data source implements, and the shared relevance
// scoring used for cross-provider ranking.
package mention

import "time"

// Item is a candidate entity offered for inline reference.
// ID is globally unique, provider-namespaced ("file:local:/src/index.ts"),
// and stable across calls for the same logical entity.
type Item struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`

	// Data carries the provider-specific payload (FileData, AgentData, ...).
	Data any `json:"data,omitempty"`

	// Keywords are extra search terms beyond the label.
	Keywords []string `json:"keywords,omitempty"`

	// Priority is a coarse tie-break weight; higher sorts first.
	Priority int `json:"priority,omitempty"`

	// Hierarchical navigation (optional).
	HasChildren bool   `json:"hasChildren,omitempty"`
	ParentID    string `json:"parentId,omitempty"`

	Disabled       bool   `json:"disabled,omitempty"`
	DisabledReason string `json:"disabledReason,omitempty"`

	// Metadata holds free-form display hints (diff stats, truncated path,
	// type tag, repository name).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Category groups providers for presentation. One category may be shared by
// multiple providers; first registration wins on metadata.
type Category struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Icon     string `json:"icon,omitempty"`
	Priority int    `json:"priority,omitempty"`
}

// TriggerPosition constrains where in the input a trigger character is legal.
type TriggerPosition string

const (
	PositionStartOfLine TriggerPosition = "start-of-line"
	PositionStandalone  TriggerPosition = "standalone"
	PositionAny         TriggerPosition = "any"
)

// Trigger defines the activation condition a host text input evaluates.
// The engine itself never scans text.
type Trigger struct {
	Char        rune            `json:"char"`
	Pattern     string          `json:"pattern,omitempty"`
	Position    TriggerPosition `json:"position"`
	AllowSpaces bool            `json:"allowSpaces"`
	MaxLength   int             `json:"maxLength,omitempty"`
}

// ChangedFile is a locally-modified file pushed into the search request by
// the host (typically from source-control status).
type ChangedFile struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ServerStatus describes an MCP server connection, pushed by the host.
type ServerStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ServerConnected is the status value for a usable MCP server.
const ServerConnected = "connected"

// DefaultLimit bounds a search when the request does not set one.
const DefaultLimit = 20

// SearchRequest is the per-query input, constructed fresh per keystroke and
// discarded after the search settles. Cancellation travels separately as a
// context.Context on Search calls.
type SearchRequest struct {
	Query       string
	ProjectPath string

	// ChangedFiles is supplied by the host, not pulled by providers.
	ChangedFiles []ChangedFile

	// Limit caps the number of returned items; 0 means DefaultLimit.
	Limit int

	// MCPTools holds "mcp__<server>__<tool>" keys; MCPServers their
	// connection state. Both are pushed by the host.
	MCPTools   []string
	MCPServers []ServerStatus

	// Extra carries provider-specific extension fields.
	Extra map[string]string
}

// EffectiveLimit returns the request limit, defaulted when unset.
func (r *SearchRequest) EffectiveLimit() int {
	if r == nil || r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// SearchResult is one provider's answer to a SearchRequest.
// len(Items) never exceeds the request limit.
type SearchResult struct {
	Items      []Item
	HasMore    bool
	TotalCount int

	// Warning is set when the backend failed; the item list is then empty.
	// Backend failures never surface as errors.
	Warning string

	Timing time.Duration
}

// EmptyResult returns a zero-item result with the given timing.
func EmptyResult(timing time.Duration) *SearchResult {
	return &SearchResult{Timing: timing}
}

// WarningResult converts a backend failure into a non-fatal empty result.
func WarningResult(warning string, timing time.Duration) *SearchResult {
	return &SearchResult{Warning: warning, Timing: timing}
}
