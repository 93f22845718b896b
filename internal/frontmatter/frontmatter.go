// Package frontmatter parses YAML frontmatter blocks from markdown
// definition files (SKILL.md, agent definitions).
package frontmatter

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrNoFrontmatter marks a document without a leading frontmatter block.
var ErrNoFrontmatter = errors.New("frontmatter: no leading block")

// Parse decodes the leading YAML frontmatter into out and returns the
// remaining document body. The document must start with a "---" line.
func Parse(data []byte, out any) (body string, err error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(text, delimiter+"\n") && text != delimiter {
		return "", ErrNoFrontmatter
	}
	rest := strings.TrimPrefix(text, delimiter+"\n")
	end := strings.Index(rest, "\n"+delimiter)
	if end < 0 {
		return "", ErrNoFrontmatter
	}
	block := rest[:end]
	body = rest[end+len(delimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), out); err != nil {
		return "", err
	}
	return body, nil
}
