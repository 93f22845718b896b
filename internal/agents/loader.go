// Package agents discovers agent definition files (markdown with YAML
// frontmatter) from project and user directories and serves them to the
// agent mention provider. Project definitions shadow user-level ones of the
// same name.
package agents

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nextlevelbuilder/mention/internal/frontmatter"
	"github.com/nextlevelbuilder/mention/internal/providers"
)

// metadata is the agent definition frontmatter. Tools may be given as a
// YAML list or a comma-separated string.
type metadata struct {
	Name            string     `yaml:"name"`
	Description     string     `yaml:"description"`
	Tools           stringList `yaml:"tools"`
	DisallowedTools stringList `yaml:"disallowedTools"`
	Model           string     `yaml:"model"`
	Disabled        bool       `yaml:"disabled"`
}

// stringList accepts both `a, b` and `[a, b]` YAML forms.
type stringList []string

func (s *stringList) UnmarshalYAML(unmarshal func(any) error) error {
	var list []string
	if err := unmarshal(&list); err == nil {
		*s = list
		return nil
	}
	var joined string
	if err := unmarshal(&joined); err != nil {
		return err
	}
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

// Loader discovers agent definitions for a working directory.
type Loader struct {
	// ExtraDirs are additional user-level agent directories (from config).
	ExtraDirs []string

	// home overrides the user home dir in tests.
	home string
}

// NewLoader creates an agent loader.
func NewLoader() *Loader {
	return &Loader{}
}

// ListEnabled returns all enabled agents visible from cwd, project sources
// first. It implements the agent provider's backend contract.
func (l *Loader) ListEnabled(ctx context.Context, cwd string) ([]providers.AgentInfo, error) {
	type sourceDir struct {
		path   string
		source string
	}
	var dirs []sourceDir
	if cwd != "" {
		dirs = append(dirs, sourceDir{filepath.Join(cwd, ".agents"), "project"})
	}
	if home := l.homeDir(); home != "" {
		dirs = append(dirs, sourceDir{filepath.Join(home, ".agents"), "user"})
	}
	for _, extra := range l.ExtraDirs {
		dirs = append(dirs, sourceDir{extra, "user"})
	}

	seen := make(map[string]bool)
	var out []providers.AgentInfo
	for _, d := range dirs {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		for _, info := range scanDir(d.path, d.source) {
			if seen[info.Name] {
				continue
			}
			seen[info.Name] = true
			out = append(out, info)
		}
	}
	return out, nil
}

func (l *Loader) homeDir() string {
	if l.home != "" {
		return l.home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// scanDir reads every *.md agent definition directly under dir. Missing
// directories, malformed files and disabled agents are skipped.
func scanDir(dir, source string) []providers.AgentInfo {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var out []providers.AgentInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var meta metadata
		body, err := frontmatter.Parse(data, &meta)
		if err != nil {
			slog.Debug("agents: skipping malformed definition", "path", path, "error", err)
			continue
		}
		if meta.Disabled {
			continue
		}
		name := meta.Name
		if name == "" {
			name = strings.TrimSuffix(e.Name(), ".md")
		}
		out = append(out, providers.AgentInfo{
			Name:            name,
			Description:     meta.Description,
			Prompt:          strings.TrimSpace(body),
			Tools:           meta.Tools,
			DisallowedTools: meta.DisallowedTools,
			Model:           meta.Model,
			Source:          source,
			Path:            path,
		})
	}
	return out
}
