package webapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/LachsProducktions/mediascan/app"
	"github.com/LachsProducktions/mediascan/models"
)

func setupTestApp(t *testing.T, seed bool) *httptest.Server {
	t.Helper()

	store, err := app.OpenStore(filepath.Join(t.TempDir(), "snapshot.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if seed {
		rep := &models.InventoryReport{
			GeneratedAt: time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC),
			Roots:       []string{"/media/a", "/media/b"},
			TotalFiles:  3,
			TotalBytes:  3000,
			Groups: []models.DuplicateGroup{
				{
					Key:  "f1000-dead",
					Size: 1000,
					Members: []models.FileRecord{
						{Root: "/media/a", Path: "/media/a/x.bin", Name: "x.bin", Size: 1000, Kind: models.KindOther},
						{Root: "/media/b", Path: "/media/b/y.bin", Name: "y.bin", Size: 1000, Kind: models.KindOther},
					},
					Roots: []string{"/media/a", "/media/b"},
				},
			},
			GroupCount:      1,
			CrossRootGroups: 1,
			WastedBytes:     1000,
			Kinds: []models.KindStats{
				{Kind: models.KindVideo}, {Kind: models.KindAudio},
				{Kind: models.KindImage}, {Kind: models.KindOther, Count: 3, Bytes: 3000},
			},
			RootStats: []models.RootStats{
				{Root: "/media/a", Files: 2, Bytes: 2000},
				{Root: "/media/b", Files: 1, Bytes: 1000},
			},
		}
		if err := store.SaveReport(context.Background(), rep); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}

	wa := New(store, &models.AppConfig{})
	srv := httptest.NewServer(wa.GetRouter())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, wantStatus int, v interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d, got %d", wantStatus, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
}

func TestReportEndpoint(t *testing.T) {
	srv := setupTestApp(t, true)

	var rep models.InventoryReport
	getJSON(t, srv.URL+"/api/report", http.StatusOK, &rep)

	if rep.TotalFiles != 3 || rep.WastedBytes != 1000 {
		t.Errorf("unexpected report: %+v", rep)
	}
	if len(rep.Groups) != 1 || !rep.Groups[0].CrossRoot() {
		t.Errorf("unexpected groups: %+v", rep.Groups)
	}
}

func TestReportEndpointWithoutSnapshot(t *testing.T) {
	srv := setupTestApp(t, false)
	getJSON(t, srv.URL+"/api/report", http.StatusNotFound, nil)
}

func TestGroupsEndpoint(t *testing.T) {
	srv := setupTestApp(t, true)

	var groups []app.GroupSummary
	getJSON(t, srv.URL+"/api/groups", http.StatusOK, &groups)

	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Key != "f1000-dead" || groups[0].WastedBytes != 1000 {
		t.Errorf("unexpected group: %+v", groups[0])
	}
}

func TestGroupMembersEndpoint(t *testing.T) {
	srv := setupTestApp(t, true)

	var members []models.FileRecord
	getJSON(t, srv.URL+"/api/groups/f1000-dead", http.StatusOK, &members)
	if len(members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(members))
	}

	getJSON(t, srv.URL+"/api/groups/unknown-key", http.StatusNotFound, nil)
}

func TestStatsEndpoint(t *testing.T) {
	srv := setupTestApp(t, true)

	var stats map[string]interface{}
	getJSON(t, srv.URL+"/api/stats", http.StatusOK, &stats)

	if stats["group_count"].(float64) != 1 {
		t.Errorf("unexpected group_count: %v", stats["group_count"])
	}
	if stats["wasted_display"] == "" {
		t.Error("expected a humanized wasted size")
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	srv := setupTestApp(t, true)
	getJSON(t, srv.URL+"/nope", http.StatusNotFound, nil)
}
