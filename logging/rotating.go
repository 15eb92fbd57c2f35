package logging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	logFilePrefix      = "drugs-"
	defaultMaxFileSize = 100 * 1024 * 1024
)

// RotatingWriter writes to one file per ISO week, starting a numbered
// sibling when the current file reaches maxFileSize, and deletes files
// older than the retention period.
type RotatingWriter struct {
	dir         string
	retention   time.Duration
	maxFileSize int64

	mu      sync.Mutex
	file    *os.File
	week    string
	seq     int
	size    int64
	nowFunc func() time.Time

	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

// NewRotatingWriter creates dir if needed and opens the file for the current week.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	w := &RotatingWriter{
		dir:         dir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		nowFunc:     time.Now,
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.open(weekKey(w.nowFunc()), 0); err != nil {
		return nil, err
	}
	return w, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (w *RotatingWriter) fileName(week string, seq int) string {
	if seq == 0 {
		return logFilePrefix + week + ".log"
	}
	return fmt.Sprintf("%s%s_%02d.log", logFilePrefix, week, seq)
}

// open switches to the first file of week at or after seq that still has room.
// Caller must hold mu.
func (w *RotatingWriter) open(week string, seq int) error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	for {
		path := filepath.Join(w.dir, w.fileName(week, seq))
		info, err := os.Stat(path)
		if err == nil && info.Size() >= w.maxFileSize {
			seq++
			continue
		}

		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", path, err)
		}

		w.file, w.week, w.seq, w.size = f, week, seq, 0
		if info != nil {
			w.size = info.Size()
		}
		return nil
	}
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return 0, os.ErrClosed
	}

	week := weekKey(w.nowFunc())
	switch {
	case week != w.week:
		if err := w.open(week, 0); err != nil {
			return 0, err
		}
	case w.size > 0 && w.size+int64(len(p)) > w.maxFileSize:
		if err := w.open(week, w.seq+1); err != nil {
			return 0, err
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Cleanup removes log files whose modification time is past retention.
func (w *RotatingWriter) Cleanup() (int, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := w.nowFunc().Add(-w.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(w.dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// StartCleanup runs Cleanup once a day until Close.
func (w *RotatingWriter) StartCleanup() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.cleanupDone = make(chan struct{})

	go func() {
		defer close(w.cleanupDone)
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Console only, the file handler would recurse into this writer
				if n, err := w.Cleanup(); err != nil {
					fmt.Fprintf(os.Stderr, "log cleanup failed: %v\n", err)
				} else if n > 0 {
					fmt.Fprintf(os.Stdout, "Cleaned up %d old log files\n", n)
				}
			}
		}
	}()
}

// Close stops background cleanup and closes the current file.
func (w *RotatingWriter) Close() error {
	if w.cancel != nil {
		w.cancel()
		<-w.cleanupDone
		w.cancel = nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
