package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/LachsProducktions/mediascan/models"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrSessionCancelled is returned when a scan was cancelled before
	// completion; a cancelled session never produces a report.
	ErrSessionCancelled = errors.New("scan session cancelled")

	// ErrScanNotFinished is returned when a report is requested before
	// Run has completed.
	ErrScanNotFinished = errors.New("scan session not finished")

	// ErrNoReadableRoots is returned when none of the configured roots
	// can be opened at all.
	ErrNoReadableRoots = errors.New("no readable root paths")
)

// SessionState is the lifecycle state of a ScanSession.
type SessionState int32

const (
	StateCreated SessionState = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// ScanSession owns all mutable state of one scan: the accumulated records,
// the symlink-visited set, collected issues and the resulting groups. There
// is no process-global scan state, so sessions can run side by side.
type ScanSession struct {
	cfg    models.ScanConfig
	probe  models.DurationProbe
	logger *ScanLogger

	state atomic.Int32

	mu      sync.Mutex
	records []models.FileRecord
	issues  []models.ScanIssue
	groups  []models.DuplicateGroup
}

// NewSession prepares a scan over the configured roots. probe and logger may
// be nil; defaults are applied to any zero-valued config fields.
func NewSession(cfg models.ScanConfig, probe models.DurationProbe, logger *ScanLogger) *ScanSession {
	ApplyDefaults(&cfg)
	return &ScanSession{
		cfg:    cfg,
		probe:  probe,
		logger: logger,
	}
}

// State returns the current lifecycle state.
func (s *ScanSession) State() SessionState {
	return SessionState(s.state.Load())
}

// Run executes the full pipeline: walk, extract, fingerprint, group. Per-file
// problems are collected as issues and never abort the scan; only context
// cancellation or a completely unreadable root set is fatal.
func (s *ScanSession) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return fmt.Errorf("scan session already started (state %s)", s.State())
	}

	if err := s.checkRoots(); err != nil {
		s.state.Store(int32(StateCancelled))
		return err
	}

	s.logger.LogConfig(s.cfg.RootPaths, s.cfg.ScanWorkers, s.cfg.MaxConcurrentIO, s.cfg.PrefixHashBytes)

	var visited *visitedSet
	if s.cfg.FollowSymlinks {
		visited = newVisitedSet()
	}

	w := newWalker(s.cfg, visited, s.logger, s.addIssue)
	candidates := w.Walk(ctx)

	ext := &extractor{probe: s.probe, logger: s.logger}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.MaxConcurrentIO; i++ {
		g.Go(func() error {
			for c := range candidates {
				if err := gctx.Err(); err != nil {
					return err
				}
				rec, err := ext.extract(gctx, c)
				if err != nil {
					s.logger.LogError("extract", c.Path, err)
					s.addIssue(models.ScanIssue{Kind: models.IssueUnreadable, Path: c.Path, Error: err.Error()})
					continue
				}
				s.mu.Lock()
				s.records = append(s.records, rec)
				s.mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return s.cancel(err)
	}
	if err := ctx.Err(); err != nil {
		return s.cancel(err)
	}

	fp := &fingerprinter{
		prefixBytes: s.cfg.PrefixHashBytes,
		maxIO:       s.cfg.MaxConcurrentIO,
		onIssue: func(issue models.ScanIssue) {
			s.logger.LogError("hash", issue.Path, errors.New(issue.Error))
			s.addIssue(issue)
		},
	}

	s.mu.Lock()
	records := s.records
	s.mu.Unlock()

	byKey, err := fp.assign(ctx, records)
	if err != nil {
		return s.cancel(err)
	}

	groups := groupDuplicates(byKey)

	s.mu.Lock()
	s.groups = groups
	s.mu.Unlock()

	s.state.Store(int32(StateCompleted))
	return nil
}

// Report builds the inventory summary of a completed session. It is a pure
// transform: no I/O, no mutation of session state.
func (s *ScanSession) Report() (*models.InventoryReport, error) {
	switch s.State() {
	case StateCancelled:
		return nil, ErrSessionCancelled
	case StateCompleted:
	default:
		return nil, ErrScanNotFinished
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rep := &models.InventoryReport{
		GeneratedAt: time.Now(),
		Groups:      s.groups,
		GroupCount:  len(s.groups),
	}

	kindIdx := make(map[models.MediaKind]*models.KindStats)
	for _, k := range models.Kinds {
		rep.Kinds = append(rep.Kinds, models.KindStats{Kind: k})
	}
	for i := range rep.Kinds {
		kindIdx[rep.Kinds[i].Kind] = &rep.Kinds[i]
	}

	rootIdx := make(map[string]*models.RootStats)
	for _, r := range s.records {
		rep.TotalFiles++
		rep.TotalBytes += r.Size

		ks := kindIdx[r.Kind]
		ks.Count++
		ks.Bytes += r.Size

		rs, ok := rootIdx[r.Root]
		if !ok {
			rs = &models.RootStats{Root: r.Root}
			rootIdx[r.Root] = rs
		}
		rs.Files++
		rs.Bytes += r.Size
	}
	for _, rs := range rootIdx {
		rep.RootStats = append(rep.RootStats, *rs)
	}
	sort.Slice(rep.RootStats, func(i, j int) bool {
		return rep.RootStats[i].Root < rep.RootStats[j].Root
	})
	for _, rs := range rep.RootStats {
		rep.Roots = append(rep.Roots, rs.Root)
	}

	for _, g := range s.groups {
		rep.WastedBytes += g.WastedBytes()
	}
	rep.CrossRootGroups = countCrossRoot(s.groups)

	rep.Issues = append([]models.ScanIssue(nil), s.issues...)
	sort.Slice(rep.Issues, func(i, j int) bool {
		return rep.Issues[i].Path < rep.Issues[j].Path
	})

	return rep, nil
}

func (s *ScanSession) addIssue(issue models.ScanIssue) {
	s.mu.Lock()
	s.issues = append(s.issues, issue)
	s.mu.Unlock()
}

// Issues returns the non-fatal problems collected so far.
func (s *ScanSession) Issues() []models.ScanIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ScanIssue(nil), s.issues...)
}

// checkRoots fails only when not a single root can be opened.
func (s *ScanSession) checkRoots() error {
	readable := 0
	for _, root := range s.cfg.RootPaths {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			s.logger.LogError("roots", root, fmt.Errorf("not a readable directory: %v", err))
			continue
		}
		readable++
	}
	if readable == 0 {
		return fmt.Errorf("%w: checked %d paths", ErrNoReadableRoots, len(s.cfg.RootPaths))
	}
	return nil
}

// cancel moves the session to its terminal cancelled state, discarding any
// partially populated groups.
func (s *ScanSession) cancel(cause error) error {
	s.mu.Lock()
	s.records = nil
	s.groups = nil
	s.mu.Unlock()
	s.state.Store(int32(StateCancelled))
	return fmt.Errorf("%w: %v", ErrSessionCancelled, cause)
}
