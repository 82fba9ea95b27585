// Package watch reruns a callback when source files change on disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Run waits for a burst of events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changed files accepted by a match function. Only files
// named to Add, or lying below a directory named to Add, are reported.
type Watcher struct {
	w     *fsnotify.Watcher
	match func(path string) bool

	files map[string]struct{}
	roots []string

	// Debounce groups events that arrive close together into one batch.
	Debounce time.Duration
}

// New creates a watcher. match selects the files of interest; nil accepts
// every file.
func New(match func(path string) bool) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if match == nil {
		match = func(string) bool { return true }
	}
	return &Watcher{
		w:        w,
		match:    match,
		files:    make(map[string]struct{}),
		Debounce: DefaultDebounce,
	}, nil
}

// Add watches path. Directories are watched together with every
// subdirectory below them. A file is watched through its parent directory,
// but its siblings are not reported.
func (w *Watcher) Add(path string) error {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if err := w.w.Add(filepath.Dir(path)); err != nil {
			return err
		}
		w.files[path] = struct{}{}
		return nil
	}
	if err := w.addTree(path); err != nil {
		return err
	}
	w.roots = append(w.roots, path)
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.w.Add(p)
		}
		return nil
	})
}

// wanted reports whether path was named to Add or lies below a named
// directory.
func (w *Watcher) wanted(path string) bool {
	path = filepath.Clean(path)
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, root := range w.roots {
		if root == "." && !filepath.IsAbs(path) && !strings.HasPrefix(path, "..") {
			return true
		}
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Close stops watching.
func (w *Watcher) Close() error { return w.w.Close() }

// Run blocks until ctx is done or the underlying watcher fails. onChange
// receives each settled batch of changed paths, sorted and without
// duplicates.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !w.wanted(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = w.addTree(ev.Name)
					continue
				}
			}
			if !w.match(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(w.Debounce)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return err

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]struct{})
			onChange(paths)
		}
	}
}
