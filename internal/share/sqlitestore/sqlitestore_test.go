package sqlitestore

import (
	"context"
	"testing"
	"time"

	"github.com/starford/pinfall/internal/share"
	"github.com/starford/pinfall/internal/testutil"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(testutil.TestDBPath(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestKV_PutGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	links := db.Namespace(NamespaceLinks)

	if err := links.Put(ctx, "abc", "v1", time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := links.Put(ctx, "abc", "v2", time.Hour); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	v, found, err := links.Get(ctx, "abc")
	if err != nil || !found || v != "v2" {
		t.Fatalf("Get = %q, %v, %v", v, found, err)
	}

	// Namespaces do not share keys.
	if _, found, _ := db.Namespace(NamespaceSeen).Get(ctx, "abc"); found {
		t.Error("key leaked across namespaces")
	}
	if _, found, _ := links.Get(ctx, "missing"); found {
		t.Error("missing key reported as found")
	}
}

func TestKV_Expiry(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	db.SetClock(func() time.Time { return now })

	seen := db.Namespace(NamespaceSeen)
	_ = seen.Put(ctx, "k", "1", 24*time.Hour)
	_ = seen.Put(ctx, "forever", "1", 0)

	now = now.Add(25 * time.Hour)
	if _, found, _ := seen.Get(ctx, "k"); found {
		t.Error("expired key should be missing")
	}
	if _, found, _ := seen.Get(ctx, "forever"); !found {
		t.Error("key without ttl should persist")
	}

	n, err := db.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
}

func TestClicks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, unique := range []bool{true, false, false} {
		err := db.Write(ctx, share.ClickEvent{Name: share.ClickEventName, Token: "tok", Unique: unique, Timestamp: ts})
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	stats, err := db.Clicks(ctx, "tok")
	if err != nil {
		t.Fatalf("Clicks: %v", err)
	}
	if stats.Total != 3 || stats.Unique != 1 {
		t.Errorf("stats = %+v", stats)
	}

	empty, err := db.Clicks(ctx, "other")
	if err != nil || empty.Total != 0 || empty.Unique != 0 {
		t.Errorf("empty stats = %+v, %v", empty, err)
	}
}
