package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Changelog appends timestamped action lines to a per-session log file, one
// file per process run, under a Changelog directory next to the data files.
// A nil *Changelog is valid and logs nothing, so callers never need to guard.
type Changelog struct {
	mu sync.Mutex
	f  *os.File
}

// OpenChangelog creates the Changelog directory under dataDir if needed and
// starts a new session file named after the start time.
func OpenChangelog(dataDir string) (*Changelog, error) {
	dir := filepath.Join(dataDir, "Changelog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create changelog directory: %w", err)
	}
	start := time.Now()
	path := filepath.Join(dir, start.Format("changelog_20060102_150405.log"))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open changelog file: %w", err)
	}
	fmt.Fprintf(f, "Session started: %s\n", start.Format("2006-01-02 15:04:05"))
	return &Changelog{f: f}, nil
}

// Log records one action line with a timestamp. Write failures are ignored:
// the changelog is best-effort and must never block an operation.
func (c *Changelog) Log(format string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.f, "[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
}

// Close ends the session file.
func (c *Changelog) Close() error {
	if c == nil {
		return nil
	}
	return c.f.Close()
}
