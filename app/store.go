package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/LachsProducktions/mediascan/models"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when the store holds no saved report yet.
var ErrNoSnapshot = errors.New("no inventory snapshot saved")

// Store persists finished inventory reports into sqlite so the web layer and
// later CLI invocations can read them back. The engine itself never depends
// on the store; a scan is complete without any persistence.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the snapshot database at path.
func OpenStore(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode = WAL: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveReport replaces the queryable group tables with the report's content
// and appends the full report to the scan history.
func (s *Store) SaveReport(ctx context.Context, rep *models.InventoryReport) error {
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM dup_files`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM dup_groups`); err != nil {
		return err
	}

	groupStmt, err := tx.PrepareContext(ctx, `
        INSERT INTO dup_groups(group_key, size, member_count, wasted_bytes, cross_root)
        VALUES (?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer groupStmt.Close()

	fileStmt, err := tx.PrepareContext(ctx, `
        INSERT INTO dup_files(group_key, root, path, name, ext, size, mod_time, kind, duration, has_duration)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `)
	if err != nil {
		return err
	}
	defer fileStmt.Close()

	for _, g := range rep.Groups {
		if _, err := groupStmt.ExecContext(ctx,
			g.Key, g.Size, len(g.Members), g.WastedBytes(), boolToInt(g.CrossRoot())); err != nil {
			return err
		}
		for _, m := range g.Members {
			if _, err := fileStmt.ExecContext(ctx,
				g.Key, m.Root, m.Path, m.Name, m.Ext, m.Size, m.ModTime.Unix(),
				string(m.Kind), m.Duration, boolToInt(m.HasDuration)); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO scan_history(scan_time, report_json) VALUES (?, ?)
    `, rep.GeneratedAt.Unix(), string(payload)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
        INSERT INTO metadata(key, value)
        VALUES ('last_scan', ?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value
    `, rep.GeneratedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}

// LoadLatestReport returns the most recently saved report.
func (s *Store) LoadLatestReport(ctx context.Context) (*models.InventoryReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
        SELECT report_json FROM scan_history ORDER BY scan_time DESC, id DESC LIMIT 1
    `).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var rep models.InventoryReport
	if err := json.Unmarshal([]byte(payload), &rep); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &rep, nil
}

// GroupSummary is one row of the persisted group table, ordered by wasted
// bytes for listing without loading the full report.
type GroupSummary struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	MemberCount int    `json:"member_count"`
	WastedBytes int64  `json:"wasted_bytes"`
	CrossRoot   bool   `json:"cross_root"`
}

// Groups lists saved duplicate groups, largest waste first.
func (s *Store) Groups(ctx context.Context, limit int) ([]GroupSummary, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT group_key, size, member_count, wasted_bytes, cross_root
        FROM dup_groups
        ORDER BY wasted_bytes DESC, group_key
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupSummary
	for rows.Next() {
		var g GroupSummary
		var crossRoot int
		if err := rows.Scan(&g.Key, &g.Size, &g.MemberCount, &g.WastedBytes, &crossRoot); err != nil {
			return nil, err
		}
		g.CrossRoot = crossRoot != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

// GroupMembers returns the saved members of one duplicate group.
func (s *Store) GroupMembers(ctx context.Context, key string) ([]models.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT root, path, name, ext, size, mod_time, kind, duration, has_duration
        FROM dup_files
        WHERE group_key = ?
        ORDER BY path
    `, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FileRecord
	for rows.Next() {
		var f models.FileRecord
		var mod int64
		var kind string
		var hasDuration int
		if err := rows.Scan(&f.Root, &f.Path, &f.Name, &f.Ext, &f.Size, &mod, &kind, &f.Duration, &hasDuration); err != nil {
			return nil, err
		}
		f.ModTime = time.Unix(mod, 0)
		f.Kind = models.MediaKind(kind)
		f.HasDuration = hasDuration != 0
		out = append(out, f)
	}
	return out, rows.Err()
}

// LastScan returns the time of the last saved scan, zero when none exists.
func (s *Store) LastScan(ctx context.Context) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key='last_scan'`).Scan(&ts)
	if err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
