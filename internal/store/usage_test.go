package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *UsageStore {
	t.Helper()
	s, err := NewUsageStore(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("NewUsageStore error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUsageStore_RecordAndBoost(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.RecordUse(ctx, "agent:code-reviewer", "agents"); err != nil {
		t.Fatal(err)
	}

	boosts, err := s.Boosts(ctx, []string{"agent:code-reviewer", "agent:never-used"})
	if err != nil {
		t.Fatal(err)
	}
	if boosts["agent:code-reviewer"] != boostRecent {
		t.Errorf("boost = %d, want %d", boosts["agent:code-reviewer"], boostRecent)
	}
	if _, ok := boosts["agent:never-used"]; ok {
		t.Error("unused id must be absent from the boost map")
	}
}

func TestUsageStore_BoostDecaysWithAge(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now()

	s.now = func() time.Time { return base.Add(-48 * time.Hour) }
	if err := s.RecordUse(ctx, "skill:old", "skills"); err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return base.Add(-2 * time.Hour) }
	if err := s.RecordUse(ctx, "skill:today", "skills"); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base }
	boosts, err := s.Boosts(ctx, []string{"skill:old", "skill:today"})
	if err != nil {
		t.Fatal(err)
	}
	if boosts["skill:old"] != boostWeek {
		t.Errorf("two-day-old use: boost = %d, want %d", boosts["skill:old"], boostWeek)
	}
	if boosts["skill:today"] != boostToday {
		t.Errorf("two-hour-old use: boost = %d, want %d", boosts["skill:today"], boostToday)
	}
}

func TestUsageStore_RepeatUseUpdatesLastUsed(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now()

	s.now = func() time.Time { return base.Add(-30 * 24 * time.Hour) }
	if err := s.RecordUse(ctx, "file:local:/src/app.go", "files"); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return base }
	boosts, err := s.Boosts(ctx, []string{"file:local:/src/app.go"})
	if err != nil {
		t.Fatal(err)
	}
	if len(boosts) != 0 {
		t.Fatalf("month-old use should not boost, got %v", boosts)
	}

	if err := s.RecordUse(ctx, "file:local:/src/app.go", "files"); err != nil {
		t.Fatal(err)
	}
	boosts, err = s.Boosts(ctx, []string{"file:local:/src/app.go"})
	if err != nil {
		t.Fatal(err)
	}
	if boosts["file:local:/src/app.go"] != boostRecent {
		t.Errorf("re-use must refresh recency, got %v", boosts)
	}
}

func TestUsageStore_Prune(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now()

	s.now = func() time.Time { return base.Add(-60 * 24 * time.Hour) }
	if err := s.RecordUse(ctx, "tool:mcp__figma__export", "tools"); err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return base }
	if err := s.RecordUse(ctx, "tool:mcp__figma__import", "tools"); err != nil {
		t.Fatal(err)
	}

	if err := s.Prune(ctx, 30*24*time.Hour); err != nil {
		t.Fatal(err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM mention_usage").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("after prune: %d rows, want 1", count)
	}
}

func TestUsageStore_EmptyInputs(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.RecordUse(ctx, "", "files"); err != nil {
		t.Errorf("empty id must be a no-op, got %v", err)
	}
	boosts, err := s.Boosts(ctx, nil)
	if err != nil || boosts != nil {
		t.Errorf("empty lookup: got %v, %v", boosts, err)
	}
}
