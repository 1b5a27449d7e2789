package app

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// ScanLogger writes scan progress to stdout and a gzipped per-scan log file,
// and keeps counters for the final summary. A nil *ScanLogger is valid and
// discards everything, so the engine can run without one in tests.
type ScanLogger struct {
	file      *os.File
	gzWriter  *gzip.Writer
	logger    *log.Logger
	startTime time.Time
	logPath   string
	mu        sync.Mutex

	filesSeen     int64
	dirsSeen      int64
	filesExcluded int64
	errorsCount   int64
}

// NewScanLogger creates a logger writing next to the given directory. Old
// logs beyond retentionDays are removed before the new scan starts.
func NewScanLogger(dir string, retentionDays int) (*ScanLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if retentionDays > 0 {
		cleanupOldLogs(dir, retentionDays)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(dir, fmt.Sprintf("scan_%s.log.gz", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	gzWriter := gzip.NewWriter(file)
	multiWriter := io.MultiWriter(os.Stdout, gzWriter)

	sl := &ScanLogger{
		file:      file,
		gzWriter:  gzWriter,
		logger:    log.New(multiWriter, "", log.Ldate|log.Ltime),
		startTime: time.Now(),
		logPath:   logPath,
	}

	sl.Log("SCAN LOG STARTED")
	sl.Log("Log file: %s", logPath)
	sl.Log("Start time: %s", sl.startTime.Format(time.RFC3339))

	return sl, nil
}

func cleanupOldLogs(dir string, retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	matches, err := filepath.Glob(filepath.Join(dir, "scan_*.log.gz"))
	if err != nil {
		log.Printf("Warning: failed to find old logs: %v", err)
		return
	}

	for _, logFile := range matches {
		info, err := os.Stat(logFile)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(logFile); err != nil {
				log.Printf("Warning: failed to remove old log %s: %v", logFile, err)
			}
		}
	}
}

// Log writes a formatted message.
func (sl *ScanLogger) Log(format string, args ...interface{}) {
	if sl == nil {
		return
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.logger.Printf(format, args...)
}

// LogConfig logs the scan configuration before traversal starts.
func (sl *ScanLogger) LogConfig(rootPaths []string, workers, maxIO, prefixBytes int) {
	if sl == nil {
		return
	}
	sl.Log("Root paths (%d):", len(rootPaths))
	for i, p := range rootPaths {
		sl.Log("  [%d] %s", i+1, p)
	}
	sl.Log("Scan workers: %d", workers)
	sl.Log("Max concurrent I/O: %d", maxIO)
	sl.Log("Prefix hash bytes: %d", prefixBytes)
}

// LogError logs a non-fatal error during scanning.
func (sl *ScanLogger) LogError(context, path string, err error) {
	if sl == nil {
		return
	}
	atomic.AddInt64(&sl.errorsCount, 1)
	sl.Log("ERROR [%s]: %s - %v", context, path, err)
}

func (sl *ScanLogger) IncrementFiles() {
	if sl == nil {
		return
	}
	atomic.AddInt64(&sl.filesSeen, 1)
}

func (sl *ScanLogger) IncrementDirs() {
	if sl == nil {
		return
	}
	atomic.AddInt64(&sl.dirsSeen, 1)
}

func (sl *ScanLogger) IncrementExcluded() {
	if sl == nil {
		return
	}
	atomic.AddInt64(&sl.filesExcluded, 1)
}

// LogSummary writes the closing counters.
func (sl *ScanLogger) LogSummary() {
	if sl == nil {
		return
	}
	duration := time.Since(sl.startTime)

	sl.Log("SCAN SUMMARY")
	sl.Log("Total duration: %v", duration)
	sl.Log("Files seen: %d", atomic.LoadInt64(&sl.filesSeen))
	sl.Log("Directories seen: %d", atomic.LoadInt64(&sl.dirsSeen))
	sl.Log("Entries excluded: %d", atomic.LoadInt64(&sl.filesExcluded))
	sl.Log("Errors encountered: %d", atomic.LoadInt64(&sl.errorsCount))

	files := atomic.LoadInt64(&sl.filesSeen)
	if files > 0 && duration.Seconds() > 0 {
		sl.Log("Scan rate: %.0f files/second", float64(files)/duration.Seconds())
	}
}

// GetLogPath returns the path to the current log file.
func (sl *ScanLogger) GetLogPath() string {
	if sl == nil {
		return ""
	}
	return sl.logPath
}

// Close flushes the summary and closes the gzip writer and file.
func (sl *ScanLogger) Close() error {
	if sl == nil {
		return nil
	}
	sl.LogSummary()

	if sl.gzWriter != nil {
		if err := sl.gzWriter.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer: %w", err)
		}
	}
	if sl.file != nil {
		return sl.file.Close()
	}
	return nil
}
