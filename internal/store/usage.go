// Package store persists mention usage history in SQLite and derives
// frecency boosts from it: recently and frequently inserted mentions rank
// higher within their priority bucket on later searches.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Boost tiers by recency of last use. Always below the bucket gap so usage
// reorders items within a priority level, never across levels.
const (
	boostRecent = 8 // used within the last hour
	boostToday  = 5 // within the last day
	boostWeek   = 2 // within the last week
)

// UsageStore records mention insertions and answers boost lookups.
type UsageStore struct {
	db *sql.DB
	mu sync.RWMutex

	now func() time.Time // test override
}

// NewUsageStore opens (or creates) the usage database at path.
func NewUsageStore(path string) (*UsageStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &UsageStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Debug("usage store opened", "path", path)
	return s, nil
}

func (s *UsageStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS mention_usage (
			id TEXT PRIMARY KEY,
			provider TEXT NOT NULL DEFAULT '',
			use_count INTEGER NOT NULL DEFAULT 0,
			last_used INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mention_usage_last_used ON mention_usage(last_used)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}

// RecordUse bumps the use count and last-used time for a mention id.
func (s *UsageStore) RecordUse(ctx context.Context, id, providerID string) error {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO mention_usage (id, provider, use_count, last_used)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET use_count = use_count + 1, last_used = excluded.last_used`,
		id, providerID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("record use: %w", err)
	}
	return nil
}

// Boosts returns a priority boost per id for those used recently. Ids with
// no history are simply absent from the map.
func (s *UsageStore) Boosts(ctx context.Context, ids []string) (map[string]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, last_used FROM mention_usage WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("boost query: %w", err)
	}
	defer rows.Close()

	now := s.now().Unix()
	boosts := make(map[string]int)
	for rows.Next() {
		var id string
		var lastUsed int64
		if err := rows.Scan(&id, &lastUsed); err != nil {
			continue
		}
		if b := boostFor(now - lastUsed); b > 0 {
			boosts[id] = b
		}
	}
	return boosts, rows.Err()
}

func boostFor(ageSeconds int64) int {
	switch {
	case ageSeconds < 0:
		return 0
	case ageSeconds <= 3600:
		return boostRecent
	case ageSeconds <= 86400:
		return boostToday
	case ageSeconds <= 7*86400:
		return boostWeek
	default:
		return 0
	}
}

// Prune drops history older than the given age.
func (s *UsageStore) Prune(ctx context.Context, olderThan time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan).Unix()
	_, err := s.db.ExecContext(ctx, "DELETE FROM mention_usage WHERE last_used < ?", cutoff)
	return err
}

// Close closes the database.
func (s *UsageStore) Close() error {
	return s.db.Close()
}
