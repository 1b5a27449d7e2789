package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/LachsProducktions/mediascan/models"
)

// writeFile creates a file with the given content, creating parent dirs.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// bytesOfSize builds deterministic content of exactly n bytes with the given
// prefix repeated filler afterwards.
func bytesOfSize(prefix string, filler byte, n int) string {
	buf := make([]byte, n)
	copy(buf, prefix)
	for i := len(prefix); i < n; i++ {
		buf[i] = filler
	}
	return string(buf)
}

// scanRoots runs a complete session over the given roots and returns the
// report. Fails the test on any scan error.
func scanRoots(t *testing.T, cfg models.ScanConfig, probe models.DurationProbe) *models.InventoryReport {
	t.Helper()

	session := NewSession(cfg, probe, nil)
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	rep, err := session.Report()
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	return rep
}

// groupPaths flattens a report's groups into sorted member path slices for
// easy comparison.
func groupPaths(rep *models.InventoryReport) [][]string {
	var out [][]string
	for _, g := range rep.Groups {
		var paths []string
		for _, m := range g.Members {
			paths = append(paths, m.Path)
		}
		out = append(out, paths)
	}
	return out
}
