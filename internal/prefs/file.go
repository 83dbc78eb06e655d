package prefs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File serialises read-modify-write cycles against one preferences file so
// that the theme and the Live Flag can be saved independently.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile binds a File to path (empty uses the default location).
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the configured (unexpanded) path.
func (f *File) Path() string {
	return f.path
}

// Load reads the current preferences.
func (f *File) Load() Prefs {
	p, _ := Load(f.path)
	return p
}

// Update applies fn to the stored preferences and writes the result.
func (f *File) Update(fn func(Prefs) Prefs) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	current, _ := Load(f.path)
	return Save(f.path, fn(current))
}

// SaveLive persists the Live Flag.
func (f *File) SaveLive(on bool) error {
	return f.Update(func(p Prefs) Prefs { return p.WithLive(on) })
}

// SaveTheme persists the theme name.
func (f *File) SaveTheme(name string) error {
	return f.Update(func(p Prefs) Prefs {
		p.Theme = name
		return p
	})
}

// Watch calls fn with freshly loaded preferences whenever the file changes on
// disk, including changes made by another console session. It blocks until
// ctx is cancelled.
func (f *File) Watch(ctx context.Context, fn func(Prefs)) error {
	resolved, err := ResolvePath(f.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Save replaces the file via rename, so watch the directory.
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != resolved {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			fn(f.Load())
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("prefs watch error", "component", "prefs", "error", werr)
		}
	}
}
