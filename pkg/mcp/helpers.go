// Package mcp bridges MCP server state into the mention system. A host
// connects to MCP servers with mark3labs/mcp-go and uses these helpers to
// turn the resulting tool lists and connection states into the search
// request fields the tool provider consumes.
package mcp

import (
	"sort"
	"strings"
	"unicode"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/nextlevelbuilder/mention/internal/mention"
)

// keyPrefix marks a namespaced MCP tool key: "mcp__<server>__<tool>".
const keyPrefix = "mcp__"

// Key builds the namespaced key for a server's tool.
func Key(server, tool string) string {
	return keyPrefix + server + "__" + tool
}

// SplitKey parses "mcp__<server>__<tool>". ok is false for anything else.
func SplitKey(key string) (server, tool string, ok bool) {
	rest, found := strings.CutPrefix(key, keyPrefix)
	if !found {
		return "", "", false
	}
	server, tool, found = strings.Cut(rest, "__")
	if !found || server == "" || tool == "" {
		return "", "", false
	}
	return server, tool, true
}

// DisplayName renders a tool name for humans: underscores become spaces and
// each word is capitalized ("get_design_context" → "Get Design Context").
func DisplayName(tool string) string {
	words := strings.Split(tool, "_")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		out = append(out, string(runes))
	}
	return strings.Join(out, " ")
}

// ContextTools maps one server's MCP tool list to namespaced keys, sorted
// for deterministic search requests.
func ContextTools(server string, tools []mcpgo.Tool) []string {
	keys := make([]string, 0, len(tools))
	for _, t := range tools {
		if t.Name == "" {
			continue
		}
		keys = append(keys, Key(server, t.Name))
	}
	sort.Strings(keys)
	return keys
}

// MergeContextTools flattens tool lists of multiple servers into one sorted
// key slice, ready for SearchRequest.MCPTools.
func MergeContextTools(byServer map[string][]mcpgo.Tool) []string {
	var keys []string
	for server, tools := range byServer {
		keys = append(keys, ContextTools(server, tools)...)
	}
	sort.Strings(keys)
	return keys
}

// Statuses converts a server→connected map into SearchRequest.MCPServers
// entries, sorted by server name.
func Statuses(connected map[string]bool) []mention.ServerStatus {
	out := make([]mention.ServerStatus, 0, len(connected))
	for name, up := range connected {
		status := "disconnected"
		if up {
			status = mention.ServerConnected
		}
		out = append(out, mention.ServerStatus{Name: name, Status: status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
