// Package engine assembles the mention system from configuration: built-in
// providers over their local backends, the registry, the aggregated searcher
// and the cache, usage and hot-reload layers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/nextlevelbuilder/mention/internal/agents"
	"github.com/nextlevelbuilder/mention/internal/cache"
	"github.com/nextlevelbuilder/mention/internal/config"
	"github.com/nextlevelbuilder/mention/internal/fileindex"
	"github.com/nextlevelbuilder/mention/internal/mention"
	"github.com/nextlevelbuilder/mention/internal/providers"
	"github.com/nextlevelbuilder/mention/internal/registry"
	"github.com/nextlevelbuilder/mention/internal/skills"
	"github.com/nextlevelbuilder/mention/internal/store"
)

// Engine owns the assembled mention system for one project.
type Engine struct {
	Registry *registry.Registry
	Searcher *registry.Searcher

	mu  sync.RWMutex
	cfg *config.Config

	skillLoader *skills.Loader
	agentLoader *agents.Loader

	gitCache     *cache.GitAwareCache
	gitWatcher   *cache.GitWatcher
	skillWatcher *skills.Watcher
	cfgWatcher   *config.Watcher
	usage        *store.UsageStore
}

// New builds an engine from config. Optional layers that fail to initialize
// (usage store, watchers) are logged and skipped, never fatal.
func New(cfg *config.Config) (*Engine, error) {
	e := &Engine{cfg: cfg, Registry: registry.New()}

	e.skillLoader = skills.NewLoader()
	e.skillLoader.ExtraDirs = cfg.SkillDirs
	e.agentLoader = agents.NewLoader()
	e.agentLoader.ExtraDirs = cfg.AgentDirs

	for _, p := range e.builtinProviders() {
		if cfg.ProviderDisabled(p.ID) {
			slog.Debug("provider disabled by config", "provider", p.ID)
			continue
		}
		if _, err := e.Registry.Register(p); err != nil {
			return nil, fmt.Errorf("register %s: %w", p.ID, err)
		}
	}

	if sw, err := skills.NewWatcher(e.skillLoader, cfg.ProjectPath); err != nil {
		slog.Warn("skills watcher unavailable", "error", err)
	} else if err := sw.Start(context.Background()); err != nil {
		slog.Warn("skills watcher failed to start", "error", err)
	} else {
		e.skillWatcher = sw
	}

	var opts []registry.SearcherOption
	if cfg.Cache.Enabled {
		inner := cache.NewSearchCache(cfg.Cache.Size, cfg.Cache.TTL())
		e.gitCache = cache.NewGitAware(inner, cfg.ProjectPath)
		opts = append(opts, registry.WithCache(e.gitCache))

		if cfg.Cache.WatchGit {
			w, err := cache.NewGitWatcher(e.gitCache)
			if err != nil {
				slog.Warn("git watcher unavailable", "error", err)
			} else if err := w.Start(context.Background()); err != nil {
				slog.Warn("git watcher failed to start", "error", err)
			} else {
				e.gitWatcher = w
			}
		}
	}

	if cfg.Usage.Enabled && cfg.Usage.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Usage.DBPath), 0o755); err != nil {
			slog.Warn("usage store dir", "error", err)
		} else if u, err := store.NewUsageStore(cfg.Usage.DBPath); err != nil {
			slog.Warn("usage store unavailable", "error", err)
		} else {
			e.usage = u
			opts = append(opts, registry.WithUsage(u))
		}
	}

	e.Searcher = registry.NewSearcher(e.Registry, opts...)
	return e, nil
}

// builtinProviders constructs the built-in provider set over the engine's
// backends. Resolve calls carry no project path, so the listing backends
// fall back to the configured one.
func (e *Engine) builtinProviders() []*mention.Provider {
	skillBackend := providers.SkillListerFunc(func(ctx context.Context, cwd string) ([]providers.SkillInfo, error) {
		if cwd == "" {
			cwd = e.projectPath()
		}
		return e.skillLoader.ListEnabled(ctx, cwd)
	})
	agentBackend := providers.AgentListerFunc(func(ctx context.Context, cwd string) ([]providers.AgentInfo, error) {
		if cwd == "" {
			cwd = e.projectPath()
		}
		return e.agentLoader.ListEnabled(ctx, cwd)
	})

	return []*mention.Provider{
		providers.NewFileProvider(fileindex.NewSearcher()),
		providers.NewSkillProvider(skillBackend),
		providers.NewAgentProvider(agentBackend),
		providers.NewToolProvider(),
	}
}

func (e *Engine) projectPath() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.ProjectPath
}

// WatchConfig hot-reloads settings from the config file: provider toggles
// and the default limit apply live, the rest needs a restart.
func (e *Engine) WatchConfig(path string) error {
	w, err := config.NewWatcher(path)
	if err != nil {
		return err
	}
	w.OnChange(e.applyConfig)
	if err := w.Start(); err != nil {
		return err
	}
	e.cfgWatcher = w
	return nil
}

// applyConfig applies a reloaded config to the running engine.
func (e *Engine) applyConfig(cfg *config.Config) {
	e.mu.Lock()
	if cfg.ProjectPath != e.cfg.ProjectPath {
		slog.Warn("config reload: projectPath change needs a restart",
			"active", e.cfg.ProjectPath, "new", cfg.ProjectPath)
		cfg.ProjectPath = e.cfg.ProjectPath
	}
	e.cfg = cfg
	e.mu.Unlock()

	e.skillLoader.Invalidate()

	for _, p := range e.builtinProviders() {
		disabled := cfg.ProviderDisabled(p.ID)
		registered := e.Registry.Has(p.ID)
		switch {
		case disabled && registered:
			e.Registry.Unregister(p.ID)
		case !disabled && !registered:
			if _, err := e.Registry.Register(p); err != nil {
				slog.Error("config reload: register failed", "provider", p.ID, "error", err)
			}
		}
	}
}

// Search runs an aggregated mention search for the standard "@" trigger.
func (e *Engine) Search(ctx context.Context, query string, limit int) *registry.AggregateResult {
	return e.SearchContext(ctx, &mention.SearchRequest{Query: query, Limit: limit})
}

// SearchContext runs an aggregated search for a caller-built request,
// filling the project path and limit from config when unset. Hosts use this
// to pass MCP tool and server context alongside the query.
func (e *Engine) SearchContext(ctx context.Context, req *mention.SearchRequest) *registry.AggregateResult {
	e.mu.RLock()
	if req.ProjectPath == "" {
		req.ProjectPath = e.cfg.ProjectPath
	}
	if req.Limit <= 0 {
		req.Limit = e.cfg.DefaultLimit
	}
	e.mu.RUnlock()
	return e.Searcher.Search(ctx, '@', req)
}

// Resolve maps a serialized mention token back to its item and provider.
func (e *Engine) Resolve(token string) (*mention.Item, *mention.Provider) {
	return e.Registry.Deserialize(token)
}

// RecordUse notes that a mention was inserted, feeding later frecency boosts.
func (e *Engine) RecordUse(ctx context.Context, item *mention.Item, providerID string) {
	if e.usage == nil || item == nil {
		return
	}
	if err := e.usage.RecordUse(ctx, item.ID, providerID); err != nil {
		slog.Debug("usage record failed", "id", item.ID, "error", err)
	}
}

// Close releases the engine's background resources.
func (e *Engine) Close() {
	if e.cfgWatcher != nil {
		e.cfgWatcher.Stop()
	}
	if e.skillWatcher != nil {
		e.skillWatcher.Stop()
	}
	if e.gitWatcher != nil {
		e.gitWatcher.Stop()
	}
	if e.usage != nil {
		e.usage.Close()
	}
	e.Registry.Clear()
}
