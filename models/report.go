package models

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// IssueKind classifies a non-fatal per-file problem encountered during a scan.
type IssueKind string

const (
	IssueAccess     IssueKind = "access"     // directory unreadable, subtree skipped
	IssueUnreadable IssueKind = "unreadable" // file vanished or unreadable during metadata read
	IssueIO         IssueKind = "io"         // read failure while hashing
)

// ScanIssue records a skipped path so the report can account for every file
// that was excluded instead of omitting it silently.
type ScanIssue struct {
	Kind  IssueKind `json:"kind"`
	Path  string    `json:"path"`
	Error string    `json:"error"`
}

// DuplicateGroup is a set of at least two files sharing the same final-stage
// fingerprint. Equal keys are treated as equal content; this is a
// probabilistic content-hash identity, not a byte-for-byte verification.
type DuplicateGroup struct {
	Key     string       `json:"key"`
	Size    int64        `json:"size"` // per-member size, identical across the group
	Members []FileRecord `json:"members"`
	Roots   []string     `json:"roots"` // distinct roots, sorted
}

// CrossRoot reports whether group members span more than one scanned root.
func (g DuplicateGroup) CrossRoot() bool {
	return len(g.Roots) > 1
}

// WastedBytes is the space taken by redundant copies beyond the first.
func (g DuplicateGroup) WastedBytes() int64 {
	if len(g.Members) < 2 {
		return 0
	}
	return int64(len(g.Members)-1) * g.Size
}

type KindStats struct {
	Kind  MediaKind `json:"kind"`
	Count int64     `json:"count"`
	Bytes int64     `json:"bytes"`
}

type RootStats struct {
	Root  string `json:"root"`
	Files int64  `json:"files"`
	Bytes int64  `json:"bytes"`
}

// InventoryReport is the read-only summary of a completed scan session,
// consumed by the CLI and web presentation layers.
type InventoryReport struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	Roots           []string         `json:"roots"`
	TotalFiles      int64            `json:"total_files"`
	TotalBytes      int64            `json:"total_bytes"`
	Groups          []DuplicateGroup `json:"groups"` // sorted by wasted bytes descending
	GroupCount      int              `json:"group_count"`
	CrossRootGroups int              `json:"cross_root_groups"`
	WastedBytes     int64            `json:"wasted_bytes"`
	Kinds           []KindStats      `json:"kinds"`
	RootStats       []RootStats      `json:"root_stats"`
	Issues          []ScanIssue      `json:"issues,omitempty"`
}

// HumanBytes formats a byte count for display.
func HumanBytes(n int64) string {
	return humanize.IBytes(uint64(n))
}

// FormatDuration renders seconds as H:MM:SS or MM:SS.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "N/A"
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
