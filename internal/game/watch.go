package game

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls table file modification times and calls onChange with
// the changed path. Missing files are skipped until they appear.
type FileWatcher struct {
	Paths     []string
	Interval  time.Duration
	onChange  func(string)
	lastMTime map[string]time.Time
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		Paths:     paths,
		Interval:  interval,
		onChange:  onChange,
		lastMTime: make(map[string]time.Time),
	}
}

// Run polls until ctx is cancelled. Call it in its own goroutine.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.scanAll(true)
	for {
		select {
		case <-ticker.C:
			w.scanAll(false)
		case <-ctx.Done():
			return
		}
	}
}

// scanAll records mtimes; with prime=false it reports files that moved forward.
func (w *FileWatcher) scanAll(prime bool) {
	for _, p := range w.Paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		mt := fi.ModTime()
		last, ok := w.lastMTime[p]
		w.lastMTime[p] = mt
		if prime {
			continue
		}
		// a file that appears after priming counts as a change
		if (!ok || mt.After(last)) && w.onChange != nil {
			w.onChange(p)
		}
	}
}
