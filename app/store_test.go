package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/LachsProducktions/mediascan/models"
)

func testReport() *models.InventoryReport {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	return &models.InventoryReport{
		GeneratedAt: now,
		Roots:       []string{"/media/a", "/media/b"},
		TotalFiles:  4,
		TotalBytes:  5000,
		Groups: []models.DuplicateGroup{
			{
				Key:  "f1000-abc",
				Size: 1000,
				Members: []models.FileRecord{
					{Root: "/media/a", Path: "/media/a/x.mp4", Name: "x.mp4", Ext: ".mp4", Size: 1000, ModTime: now, Kind: models.KindVideo, Duration: 12.5, HasDuration: true},
					{Root: "/media/b", Path: "/media/b/y.mp4", Name: "y.mp4", Ext: ".mp4", Size: 1000, ModTime: now, Kind: models.KindVideo, Duration: 12.5, HasDuration: true},
				},
				Roots: []string{"/media/a", "/media/b"},
			},
		},
		GroupCount:      1,
		CrossRootGroups: 1,
		WastedBytes:     1000,
		Kinds: []models.KindStats{
			{Kind: models.KindVideo, Count: 2, Bytes: 2000},
			{Kind: models.KindAudio},
			{Kind: models.KindImage},
			{Kind: models.KindOther, Count: 2, Bytes: 3000},
		},
		RootStats: []models.RootStats{
			{Root: "/media/a", Files: 2, Bytes: 2500},
			{Root: "/media/b", Files: 2, Bytes: 2500},
		},
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadReport(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	rep := testReport()

	if err := store.SaveReport(ctx, rep); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	loaded, err := store.LoadLatestReport(ctx)
	if err != nil {
		t.Fatalf("LoadLatestReport failed: %v", err)
	}

	if loaded.TotalFiles != rep.TotalFiles || loaded.TotalBytes != rep.TotalBytes {
		t.Errorf("totals mismatch: got %d/%d", loaded.TotalFiles, loaded.TotalBytes)
	}
	if loaded.WastedBytes != 1000 || loaded.CrossRootGroups != 1 {
		t.Errorf("derived stats mismatch: %+v", loaded)
	}
	if len(loaded.Groups) != 1 || loaded.Groups[0].Key != "f1000-abc" {
		t.Fatalf("groups mismatch: %+v", loaded.Groups)
	}
	if len(loaded.Groups[0].Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(loaded.Groups[0].Members))
	}
}

func TestLoadWithoutSnapshot(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.LoadLatestReport(context.Background()); err != ErrNoSnapshot {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestLatestSnapshotWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	older := testReport()
	if err := store.SaveReport(ctx, older); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	newer := testReport()
	newer.GeneratedAt = older.GeneratedAt.Add(time.Hour)
	newer.TotalFiles = 42
	if err := store.SaveReport(ctx, newer); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	loaded, err := store.LoadLatestReport(ctx)
	if err != nil {
		t.Fatalf("LoadLatestReport failed: %v", err)
	}
	if loaded.TotalFiles != 42 {
		t.Errorf("expected the newer snapshot, got TotalFiles=%d", loaded.TotalFiles)
	}
}

func TestGroupsQuery(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.SaveReport(ctx, testReport()); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	groups, err := store.Groups(ctx, 10)
	if err != nil {
		t.Fatalf("Groups failed: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.Key != "f1000-abc" || g.MemberCount != 2 || g.WastedBytes != 1000 || !g.CrossRoot {
		t.Errorf("unexpected group summary: %+v", g)
	}

	members, err := store.GroupMembers(ctx, g.Key)
	if err != nil {
		t.Fatalf("GroupMembers failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}
	if members[0].Path > members[1].Path {
		t.Error("members must be ordered by path")
	}
	if !members[0].HasDuration || members[0].Duration != 12.5 {
		t.Errorf("duration not round-tripped: %+v", members[0])
	}
}

func TestLastScan(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ts, err := store.LastScan(ctx)
	if err != nil {
		t.Fatalf("LastScan failed: %v", err)
	}
	if !ts.IsZero() {
		t.Errorf("expected zero time before any save, got %v", ts)
	}

	rep := testReport()
	if err := store.SaveReport(ctx, rep); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	ts, err = store.LastScan(ctx)
	if err != nil {
		t.Fatalf("LastScan failed: %v", err)
	}
	if !ts.Equal(rep.GeneratedAt) {
		t.Errorf("expected %v, got %v", rep.GeneratedAt, ts)
	}
}
