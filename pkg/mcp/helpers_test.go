package mcp

import (
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

func TestKeyRoundTrip(t *testing.T) {
	key := Key("figma", "get_design_context")
	if key != "mcp__figma__get_design_context" {
		t.Fatalf("Key = %q", key)
	}
	server, tool, ok := SplitKey(key)
	if !ok || server != "figma" || tool != "get_design_context" {
		t.Errorf("SplitKey = %q, %q, %v", server, tool, ok)
	}
}

func TestSplitKey_Malformed(t *testing.T) {
	for _, key := range []string{"", "figma__tool", "mcp__", "mcp__figma", "mcp__figma__", "mcp____tool"} {
		if _, _, ok := SplitKey(key); ok {
			t.Errorf("SplitKey(%q) should fail", key)
		}
	}
}

func TestSplitKey_ToolNameWithSeparator(t *testing.T) {
	// Only the first "__" after the server splits; the rest stays in the
	// tool name.
	server, tool, ok := SplitKey("mcp__linear__issue__create")
	if !ok || server != "linear" || tool != "issue__create" {
		t.Errorf("got %q, %q, %v", server, tool, ok)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"get_design_context", "Get Design Context"},
		{"export", "Export"},
		{"a__b", "A B"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContextTools(t *testing.T) {
	keys := ContextTools("figma", []mcpgo.Tool{
		{Name: "export"},
		{Name: ""},
		{Name: "get_design_context"},
	})
	want := []string{"mcp__figma__export", "mcp__figma__get_design_context"}
	if len(keys) != len(want) {
		t.Fatalf("got %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestMergeContextTools(t *testing.T) {
	keys := MergeContextTools(map[string][]mcpgo.Tool{
		"figma":  {{Name: "export"}},
		"linear": {{Name: "create_issue"}},
	})
	if len(keys) != 2 || keys[0] != "mcp__figma__export" || keys[1] != "mcp__linear__create_issue" {
		t.Errorf("got %v", keys)
	}
}

func TestStatuses(t *testing.T) {
	statuses := Statuses(map[string]bool{"linear": false, "figma": true})
	if len(statuses) != 2 {
		t.Fatalf("got %v", statuses)
	}
	if statuses[0].Name != "figma" || statuses[0].Status != "connected" {
		t.Errorf("statuses[0] = %+v", statuses[0])
	}
	if statuses[1].Name != "linear" || statuses[1].Status != "disconnected" {
		t.Errorf("statuses[1] = %+v", statuses[1])
	}
}
