package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/LachsProducktions/mediascan/models"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// FingerprintStage is how far a file had to be read before its identity was
// settled. Most files terminate at StageSized and are never opened.
type FingerprintStage int

const (
	StageSized  FingerprintStage = iota // unique size, no content read
	StagePrefix                         // unique within its size group after prefix hash
	StageFull                           // full-content hash required
)

// fingerprinter assigns staged fingerprint keys:
//
//	stage 0: size only
//	stage 1: size + xxhash64 of a bounded prefix
//	stage 2: size + streamed sha256 of the whole content
//
// Each stage only runs for files still tied at the previous one, so files
// with unique sizes cost zero reads and prefix collisions never reach the
// final grouping without a full hash.
type fingerprinter struct {
	prefixBytes int
	maxIO       int
	onIssue     func(models.ScanIssue)
}

// assign returns every record keyed by its final-stage fingerprint. Records
// sharing a key are content-equal under the documented hash-identity policy.
// Files that fail to read are dropped from their candidate group and reported
// through onIssue.
func (fp *fingerprinter) assign(ctx context.Context, records []models.FileRecord) (map[string][]models.FileRecord, error) {
	final := make(map[string][]models.FileRecord)

	bySize := make(map[int64][]models.FileRecord)
	for _, r := range records {
		bySize[r.Size] = append(bySize[r.Size], r)
	}

	// Stage 1 candidates: size groups with at least two members.
	var prefixWork []models.FileRecord
	for size, group := range bySize {
		if len(group) < 2 {
			final[sizeKey(size)] = group
			continue
		}
		prefixWork = append(prefixWork, group...)
	}

	byPrefix, err := fp.hashStage(ctx, prefixWork, func(r models.FileRecord) (string, error) {
		sum, err := fp.hashPrefix(r.Path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("p%d-%016x", r.Size, sum), nil
	})
	if err != nil {
		return nil, err
	}

	// Stage 2 candidates: prefix groups still holding two or more members.
	var fullWork []models.FileRecord
	for key, group := range byPrefix {
		if len(group) < 2 {
			final[key] = group
			continue
		}
		fullWork = append(fullWork, group...)
	}

	byFull, err := fp.hashStage(ctx, fullWork, func(r models.FileRecord) (string, error) {
		sum, err := hashFull(r.Path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("f%d-%x", r.Size, sum), nil
	})
	if err != nil {
		return nil, err
	}

	for key, group := range byFull {
		final[key] = group
	}

	return final, nil
}

// hashStage hashes records concurrently under the I/O pool limit and groups
// them by the produced key. Per-file failures are non-fatal; only context
// cancellation aborts the stage.
func (fp *fingerprinter) hashStage(ctx context.Context, records []models.FileRecord, keyFn func(models.FileRecord) (string, error)) (map[string][]models.FileRecord, error) {
	groups := make(map[string][]models.FileRecord)
	if len(records) == 0 {
		return groups, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fp.maxIO)

	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key, err := keyFn(rec)
			if err != nil {
				fp.report(rec.Path, err)
				return nil
			}
			mu.Lock()
			groups[key] = append(groups[key], rec)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

func (fp *fingerprinter) hashPrefix(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	d := xxhash.New()
	if _, err := io.Copy(d, io.LimitReader(f, int64(fp.prefixBytes))); err != nil {
		return 0, err
	}
	return d.Sum64(), nil
}

func hashFull(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func (fp *fingerprinter) report(path string, err error) {
	if fp.onIssue != nil {
		fp.onIssue(models.ScanIssue{Kind: models.IssueIO, Path: path, Error: err.Error()})
	}
}

func sizeKey(size int64) string {
	return fmt.Sprintf("s%d", size)
}
