package mention

import (
	"reflect"
	"testing"
)

func TestPrefix(t *testing.T) {
	cases := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"file:local:/src/index.ts", PrefixFile, true},
		{"folder:local:/src", PrefixFolder, true},
		{"agent:code-reviewer", PrefixAgent, true},
		{"skill:commit-helper", PrefixSkill, true},
		{"tool:mcp__figma__get_design_context", PrefixTool, true},
		{"github-issue:42", PrefixGitHubIssue, true},
		{"github-pr:7", PrefixGitHubPR, true},
		{"quote:abc", PrefixQuote, true},
		{"diff:abc", PrefixDiff, true},
		{"pasted:abc", PrefixPasted, true},
		{"symbol:Foo", PrefixSymbol, true},
		{"bogus:abc", "", false},
		{"", "", false},
		{"file", "", false},
	}
	for _, c := range cases {
		got, ok := Prefix(c.id)
		if got != c.want || ok != c.wantOK {
			t.Errorf("Prefix(%q) = %q, %v; want %q, %v", c.id, got, ok, c.want, c.wantOK)
		}
	}
}

func TestIsType(t *testing.T) {
	if !IsType("file:local:/a", PrefixFile) {
		t.Error("expected file id to match file prefix")
	}
	if IsType("folder:local:/a", PrefixFile) {
		t.Error("folder id must not match file prefix")
	}
}

func TestIdentifier(t *testing.T) {
	if got := Identifier("agent:code-reviewer", PrefixAgent); got != "code-reviewer" {
		t.Errorf("Identifier = %q", got)
	}
	if got := Identifier("agent:x", PrefixSkill); got != "" {
		t.Errorf("mismatched prefix should return empty, got %q", got)
	}
}

func TestFormatParseToken(t *testing.T) {
	id := "file:local:/src/index.ts"
	token := FormatToken(id)
	if token != "@[file:local:/src/index.ts]" {
		t.Errorf("FormatToken = %q", token)
	}
	got, ok := ParseToken(token)
	if !ok || got != id {
		t.Errorf("ParseToken(%q) = %q, %v", token, got, ok)
	}
}

func TestParseTokenMalformed(t *testing.T) {
	for _, token := range []string{"", "@[]", "@[", "plain text", "@[a]b]", "[a]", "@a]"} {
		if _, ok := ParseToken(token); ok {
			t.Errorf("ParseToken(%q) should fail", token)
		}
	}
}

func TestExtractTokens(t *testing.T) {
	// The unterminated trailing token is dropped.
	text := "see @[file:local:/a.go] and @[agent:reviewer], also @[ broken"
	got := ExtractTokens(text)
	want := []string{"file:local:/a.go", "agent:reviewer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractTokens = %v, want %v", got, want)
	}
}

func TestExtractTokensNone(t *testing.T) {
	if got := ExtractTokens("no mentions here"); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
