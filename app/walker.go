package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/LachsProducktions/mediascan/models"
)

// candidate is a file found by the walker, not yet annotated with metadata.
type candidate struct {
	Root string
	Path string
	Info fs.FileInfo
}

// visitedSet tracks resolved directory paths while following symlinks so
// that link cycles cannot loop the traversal. Owned by the scan session.
type visitedSet struct {
	mu sync.Mutex
	m  map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{m: make(map[string]struct{})}
}

// Add reports whether the path was seen for the first time.
func (v *visitedSet) Add(path string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.m[path]; ok {
		return false
	}
	v.m[path] = struct{}{}
	return true
}

type walker struct {
	cfg     models.ScanConfig
	exts    map[string]struct{} // nil = all extensions
	visited *visitedSet
	logger  *ScanLogger
	onIssue func(models.ScanIssue)
}

func newWalker(cfg models.ScanConfig, visited *visitedSet, logger *ScanLogger, onIssue func(models.ScanIssue)) *walker {
	var exts map[string]struct{}
	if len(cfg.Extensions) > 0 {
		exts = make(map[string]struct{}, len(cfg.Extensions))
		for _, e := range cfg.Extensions {
			e = strings.ToLower(e)
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts[e] = struct{}{}
		}
	}
	return &walker{
		cfg:     cfg,
		exts:    exts,
		visited: visited,
		logger:  logger,
		onIssue: onIssue,
	}
}

// Walk enumerates candidate files under all configured roots. The channel is
// closed when traversal finishes or the context is cancelled.
func (w *walker) Walk(ctx context.Context) <-chan candidate {
	out := make(chan candidate, 10000)

	go func() {
		defer close(out)

		for _, root := range w.cfg.RootPaths {
			if ctx.Err() != nil {
				return
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				w.reportAccess(root, err)
				continue
			}
			if _, err := os.Stat(absRoot); err != nil {
				w.reportAccess(absRoot, err)
				continue
			}
			w.walkRootParallel(ctx, absRoot, out)
		}
	}()

	return out
}

func (w *walker) walkRootParallel(ctx context.Context, root string, out chan<- candidate) {
	dirQueue := make(chan string, 100000)
	var wg sync.WaitGroup
	var activeDirs int32

	if w.visited != nil {
		if real, err := filepath.EvalSymlinks(root); err == nil {
			w.visited.Add(real)
		}
	}

	dirQueue <- root
	atomic.AddInt32(&activeDirs, 1)

	workers := w.cfg.ScanWorkers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.dirWorker(ctx, root, dirQueue, out, &activeDirs)
		}()
	}

	wg.Wait()
}

func (w *walker) dirWorker(ctx context.Context, root string, dirQueue chan string, out chan<- candidate, activeDirs *int32) {
	for {
		select {
		case <-ctx.Done():
			return
		case dir, ok := <-dirQueue:
			if !ok {
				return
			}
			w.processDirectory(ctx, root, dir, dirQueue, out, activeDirs)

			if atomic.AddInt32(activeDirs, -1) == 0 {
				// Last pending directory - close the queue so workers exit.
				close(dirQueue)
				return
			}
		}
	}
}

func (w *walker) processDirectory(ctx context.Context, root, dir string, dirQueue chan string, out chan<- candidate, activeDirs *int32) {
	if w.excluded(dir) {
		return
	}

	f, err := os.Open(dir)
	if err != nil {
		w.reportAccess(dir, err)
		return
	}
	entries, err := f.ReadDir(-1)
	f.Close()
	if err != nil {
		w.reportAccess(dir, err)
		return
	}
	w.logger.IncrementDirs()

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(dir, entry.Name())
		if w.excluded(path) {
			w.logger.IncrementExcluded()
			continue
		}
		if !w.cfg.IncludeHidden && strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		isDir := entry.IsDir()
		var info fs.FileInfo

		if entry.Type()&fs.ModeSymlink != 0 {
			if !w.cfg.FollowSymlinks {
				continue
			}
			// Resolve the link target; a dangling link is just skipped.
			target, err := os.Stat(path)
			if err != nil {
				continue
			}
			isDir = target.IsDir()
			info = target
		}

		if isDir {
			if w.visited != nil {
				real, err := filepath.EvalSymlinks(path)
				if err != nil || !w.visited.Add(real) {
					continue
				}
			}
			atomic.AddInt32(activeDirs, 1)
			select {
			case dirQueue <- path:
			default:
				// Queue full - descend synchronously to avoid deadlock.
				atomic.AddInt32(activeDirs, -1)
				w.processDirectory(ctx, root, path, dirQueue, out, activeDirs)
			}
			continue
		}

		if info == nil {
			if !entry.Type().IsRegular() {
				continue
			}
			info, err = entry.Info()
			if err != nil {
				// Entry vanished between ReadDir and stat.
				continue
			}
		}

		if w.exts != nil {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if _, ok := w.exts[ext]; !ok {
				w.logger.IncrementExcluded()
				continue
			}
		}

		select {
		case out <- candidate{Root: root, Path: path, Info: info}:
			w.logger.IncrementFiles()
		case <-ctx.Done():
			return
		}
	}
}

func (w *walker) excluded(path string) bool {
	for _, pattern := range w.cfg.ExcludePaths {
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
		if strings.HasPrefix(path, pattern) {
			return true
		}
	}
	return false
}

func (w *walker) reportAccess(path string, err error) {
	w.logger.LogError("walk", path, err)
	if w.onIssue != nil {
		w.onIssue(models.ScanIssue{Kind: models.IssueAccess, Path: path, Error: err.Error()})
	}
}
