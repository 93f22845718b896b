package providers

import (
	"context"
	"time"

	"github.com/nextlevelbuilder/mention/pkg/mcp"
	"github.com/nextlevelbuilder/mention/internal/mention"
)

// ToolData is the payload of MCP tool mention items.
type ToolData struct {
	ServerName  string `json:"serverName"`
	ToolName    string `json:"toolName"`
	DisplayName string `json:"displayName"`
	Key         string `json:"key"` // "mcp__<server>__<tool>"
}

// NewToolProvider builds the MCP tool provider. It has no backend of its
// own: tool keys and server states arrive through the search request, pushed
// by the host. With those fields absent the provider reports unavailable.
func NewToolProvider() *mention.Provider {
	return mention.MustNew(mention.Provider{
		ID:       "tools",
		Label:    "Tools",
		Priority: ToolPriority,
		Category: mention.Category{ID: "tools", Label: "Tools", Priority: ToolPriority},
		Search:   searchTools,
		Serialize: func(item mention.Item) string {
			return item.ID
		},
		Deserialize: deserializeTool,
		Available: func(req *mention.SearchRequest) bool {
			return req != nil && len(req.MCPTools) > 0 && len(req.MCPServers) > 0
		},
	})
}

func searchTools(ctx context.Context, req *mention.SearchRequest) *mention.SearchResult {
	if ctx.Err() != nil {
		return mention.EmptyResult(0)
	}
	start := time.Now()

	connected := make(map[string]bool, len(req.MCPServers))
	for _, s := range req.MCPServers {
		if s.Status == mention.ServerConnected {
			connected[s.Name] = true
		}
	}

	items := make([]mention.Item, 0, len(req.MCPTools))
	seen := make(map[string]bool)
	for _, key := range req.MCPTools {
		server, tool, ok := mcp.SplitKey(key)
		if !ok || !connected[server] || seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, toolItem(server, tool, key))
	}
	return finishListing(items, req, start)
}

func toolItem(server, tool, key string) mention.Item {
	display := mcp.DisplayName(tool)
	return mention.Item{
		ID:          mention.PrefixTool + key,
		Label:       display,
		Description: "MCP tool from " + server,
		Icon:        "tool",
		Priority:    ToolPriority,
		Keywords:    []string{server, tool, key},
		Data: ToolData{
			ServerName:  server,
			ToolName:    tool,
			DisplayName: display,
			Key:         key,
		},
		Metadata: map[string]string{
			"server": server,
			"type":   "tool",
		},
	}
}

func deserializeTool(token string) *mention.Item {
	if !mention.IsType(token, mention.PrefixTool) {
		return nil
	}
	key := mention.Identifier(token, mention.PrefixTool)
	server, tool, ok := mcp.SplitKey(key)
	if !ok {
		return nil
	}
	item := toolItem(server, tool, key)
	return &item
}
