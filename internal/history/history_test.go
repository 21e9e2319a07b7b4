package history

import (
	"context"
	"testing"
	"time"
)

func TestParseLog(t *testing.T) {
	rev, ok := parseLog("abc123def 2026-01-05 22:56:00 +0100\n")
	if !ok {
		t.Fatal("expected parse to succeed")
	}
	if rev.Commit != "abc123def" {
		t.Errorf("commit = %q", rev.Commit)
	}
	want := time.Date(2026, 1, 5, 21, 56, 0, 0, time.UTC)
	if !rev.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", rev.Timestamp, want)
	}
}

func TestParseLog_Empty(t *testing.T) {
	if _, ok := parseLog("  \n"); ok {
		t.Error("empty output should not parse")
	}
	if _, ok := parseLog("abc not-a-date"); ok {
		t.Error("bad date should not parse")
	}
}

func TestGit_FallbackOutsideRepository(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	g := &Git{Dir: t.TempDir(), Now: func() time.Time { return now }}
	rev := g.LastModified(context.Background(), "meta.json")
	if rev.Commit != "" {
		t.Errorf("commit = %q, want empty", rev.Commit)
	}
	if !rev.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", rev.Timestamp, now)
	}
}

func TestStatic(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Static{
		Revisions: map[string]Revision{"a": {Commit: "c1", Timestamp: ts}},
		Default:   Revision{Timestamp: ts.Add(time.Hour)},
	}
	if got := s.LastModified(context.Background(), "a"); got.Commit != "c1" {
		t.Errorf("commit = %q", got.Commit)
	}
	if got := s.LastModified(context.Background(), "b"); !got.Timestamp.Equal(ts.Add(time.Hour)) {
		t.Errorf("default not used: %v", got)
	}
}
