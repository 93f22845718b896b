package mention

import "strings"

// Mention prefixes. Every persistable reference is "@[" + prefix + identifier
// + "]". Each prefix ends in a separator that cannot start an identifier, so
// prefix matching is unambiguous.
const (
	PrefixFile        = "file:"
	PrefixFolder      = "folder:"
	PrefixSkill       = "skill:"
	PrefixAgent       = "agent:"
	PrefixTool        = "tool:"
	PrefixQuote       = "quote:"
	PrefixDiff        = "diff:"
	PrefixPasted      = "pasted:"
	PrefixSymbol      = "symbol:"
	PrefixGitHubIssue = "github-issue:"
	PrefixGitHubPR    = "github-pr:"
)

// knownPrefixes is checked longest-first so "github-pr:" cannot be shadowed
// by a shorter overlapping prefix.
var knownPrefixes = []string{
	PrefixGitHubIssue,
	PrefixGitHubPR,
	PrefixFolder,
	PrefixPasted,
	PrefixSymbol,
	PrefixQuote,
	PrefixSkill,
	PrefixAgent,
	PrefixFile,
	PrefixTool,
	PrefixDiff,
}

// Prefix returns the registered prefix of a mention id. Ids matching no known
// prefix are foreign/opaque: ok is false and every provider must ignore them.
func Prefix(id string) (prefix string, ok bool) {
	for _, p := range knownPrefixes {
		if strings.HasPrefix(id, p) {
			return p, true
		}
	}
	return "", false
}

// IsType reports whether id carries the given prefix.
func IsType(id, prefix string) bool {
	return strings.HasPrefix(id, prefix)
}

// Identifier strips the prefix from a mention id. Returns "" when the id does
// not carry the prefix.
func Identifier(id, prefix string) string {
	if !strings.HasPrefix(id, prefix) {
		return ""
	}
	return id[len(prefix):]
}

// FormatToken wraps a mention id in the persisted wire form "@[id]".
// Identifiers must not contain ']'.
func FormatToken(id string) string {
	return "@[" + id + "]"
}

// ParseToken unwraps "@[id]" to the inner id. ok is false for anything that
// is not a well-formed token.
func ParseToken(token string) (id string, ok bool) {
	if len(token) < 4 || !strings.HasPrefix(token, "@[") || !strings.HasSuffix(token, "]") {
		return "", false
	}
	inner := token[2 : len(token)-1]
	if inner == "" || strings.Contains(inner, "]") {
		return "", false
	}
	return inner, true
}

// ExtractTokens scans stored text for embedded "@[...]" tokens and returns
// the inner ids in order of appearance. Malformed or unterminated tokens are
// skipped, never an error.
func ExtractTokens(text string) []string {
	var ids []string
	for i := 0; i+1 < len(text); {
		start := strings.Index(text[i:], "@[")
		if start < 0 {
			break
		}
		start += i
		end := strings.IndexByte(text[start+2:], ']')
		if end < 0 {
			break
		}
		inner := text[start+2 : start+2+end]
		if inner != "" {
			ids = append(ids, inner)
		}
		i = start + 2 + end + 1
	}
	return ids
}
