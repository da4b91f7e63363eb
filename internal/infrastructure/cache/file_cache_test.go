package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/aiterm/internal/domain"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c := NewFileCache(filepath.Join(t.TempDir(), "responses"), time.Hour, 10)

	if _, ok, err := c.Get("missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got %v %v", ok, err)
	}

	entry := domain.CacheEntry{
		Key:       "abc",
		Model:     "gpt-4o-mini",
		Prompt:    "list files",
		Candidate: domain.CandidateCommand{Text: "ls -la", Dialect: domain.DialectBash},
		CreatedAt: time.Now().Truncate(time.Second),
	}
	if err := c.Set(entry); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, ok, err := c.Get("abc")
	if err != nil || !ok {
		t.Fatalf("expected hit, got %v %v", ok, err)
	}
	if diff := cmp.Diff(entry.Candidate, got.Candidate); diff != "" {
		t.Fatalf("candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestFileCacheExpires(t *testing.T) {
	c := NewFileCache(t.TempDir(), time.Minute, 0)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(domain.CacheEntry{Key: "k", CreatedAt: now.Add(-2 * time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get("k"); ok {
		t.Fatal("expired entry returned")
	}
	if _, err := os.Stat(c.pathFor("k")); !os.IsNotExist(err) {
		t.Fatal("expired entry not removed")
	}
}

func TestFileCacheEvictsOldest(t *testing.T) {
	dir := t.TempDir()
	c := NewFileCache(dir, 0, 2)
	for i, key := range []string{"a", "b", "c"} {
		if err := c.Set(domain.CacheEntry{Key: key}); err != nil {
			t.Fatal(err)
		}
		// spread modification times so eviction order is deterministic
		stamp := time.Now().Add(time.Duration(i-10) * time.Minute)
		_ = os.Chtimes(c.pathFor(key), stamp, stamp)
	}
	if err := c.Set(domain.CacheEntry{Key: "d"}); err != nil {
		t.Fatal(err)
	}
	entries, err := c.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after eviction, got %d", len(entries))
	}
	if _, ok, _ := c.Get("a"); ok {
		t.Fatal("oldest entry survived eviction")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if entries, _ := c.Entries(); len(entries) != 0 {
		t.Fatalf("entries after clear: %d", len(entries))
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	c := NewFileCache(t.TempDir(), 0, 0)
	if err := os.WriteFile(c.pathFor("bad"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get("bad"); ok || err != nil {
		t.Fatalf("expected miss, got %v %v", ok, err)
	}
}
