// Package watcher keeps the library consistent with files on disk.
//
// Created files are added and indexed, modified files are re-indexed when
// their fingerprint changes, and removed or renamed files are deleted from
// the library. Hidden files and directories are ignored.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/deepdocs/internal/core/ports/driving"
	"github.com/custodia-labs/deepdocs/internal/logger"
)

// DefaultDelay coalesces bursts of writes to the same file.
const DefaultDelay = 500 * time.Millisecond

// ChangeType classifies a filesystem event.
type ChangeType int

const (
	// ChangeCreated means a new file appeared.
	ChangeCreated ChangeType = iota + 1

	// ChangeUpdated means an existing file was written.
	ChangeUpdated

	// ChangeDeleted means a file was removed or renamed away.
	ChangeDeleted
)

// String returns the string representation.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Change is a classified event for a single file.
type Change struct {
	Type ChangeType
	Path string
}

// Watcher applies filesystem changes to the library.
type Watcher struct {
	documents driving.DocumentService
	indexing  driving.IndexingService
	delay     time.Duration
	onChange  func(Change, error)

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets how long a file must be quiet before it is processed.
// Zero processes every event immediately.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		w.delay = d
	}
}

// WithOnChange registers a callback invoked after each change is applied.
func WithOnChange(fn func(Change, error)) Option {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// New creates a watcher. Indexing may be nil to only track membership.
func New(documents driving.DocumentService, indexing driving.IndexingService, opts ...Option) *Watcher {
	w := &Watcher{
		documents: documents,
		indexing:  indexing,
		delay:     DefaultDelay,
		pending:   make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch blocks until ctx is cancelled, applying changes under roots.
// Subdirectories are watched recursively, including ones created later.
func (w *Watcher) Watch(ctx context.Context, roots ...string) error {
	if len(roots) == 0 {
		return errors.New("no directories to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	for _, root := range roots {
		root, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("root path error: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("root path error: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("root path error: %s is not a directory", root)
		}
		if err := addRecursive(fsw, root); err != nil {
			return err
		}
		logger.Info("Watching %s", root)
	}

	defer w.drain()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if isDirCreate(event) {
				if err := addRecursive(fsw, event.Name); err != nil {
					logger.Warn("Watching %s: %v", event.Name, err)
				}
				w.schedule(ctx, Change{Type: ChangeCreated, Path: event.Name})
				continue
			}
			if change, ok := classify(event); ok {
				w.schedule(ctx, change)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// classify maps an fsnotify event to a change. Directories, hidden paths
// and attribute-only events yield no change.
func classify(event fsnotify.Event) (Change, bool) {
	if isHidden(event.Name) {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Type: ChangeDeleted, Path: event.Name}, true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return Change{}, false
		}
		if event.Has(fsnotify.Create) {
			return Change{Type: ChangeCreated, Path: event.Name}, true
		}
		return Change{Type: ChangeUpdated, Path: event.Name}, true
	default:
		return Change{}, false
	}
}

// schedule applies change after the quiet period. A later change for the
// same path replaces an earlier pending one.
func (w *Watcher) schedule(ctx context.Context, change Change) {
	if w.delay <= 0 {
		w.handle(ctx, change)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[change.Path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.pending[change.Path] = time.AfterFunc(w.delay, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, change.Path)
		w.mu.Unlock()
		w.handle(ctx, change)
	})
}

// drain waits for changes already scheduled to finish.
func (w *Watcher) drain() {
	w.wg.Wait()
}

func (w *Watcher) handle(ctx context.Context, change Change) {
	err := w.apply(ctx, change)
	if err != nil {
		logger.Warn("Applying %s %s: %v", change.Type, change.Path, err)
	} else {
		logger.Debug("Applied %s %s", change.Type, change.Path)
	}
	if w.onChange != nil {
		w.onChange(change, err)
	}
}

// apply updates the library for one change.
func (w *Watcher) apply(ctx context.Context, change Change) error {
	if change.Type == ChangeDeleted {
		return w.remove(ctx, change.Path)
	}

	// Add is a no-op for known paths and walks new directories.
	if _, err := w.documents.Add(ctx, []string{change.Path}); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if w.indexing == nil {
		return nil
	}

	docs, err := w.documents.List(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for i := range docs {
		if docs[i].Path != change.Path && !within(change.Path, docs[i].Path) {
			continue
		}
		if _, err := w.indexing.EnsureIndexed(ctx, docs[i].ID); err != nil {
			errs = append(errs, fmt.Errorf("index %s: %w", docs[i].Path, err))
		}
	}
	return errors.Join(errs...)
}

// remove deletes the document at path, or every document below it when
// path was a directory.
func (w *Watcher) remove(ctx context.Context, path string) error {
	found, err := w.documents.DeleteByPath(ctx, path)
	if err != nil || found {
		return err
	}

	docs, err := w.documents.List(ctx)
	if err != nil {
		return err
	}
	var ids []int64
	for i := range docs {
		if within(path, docs[i].Path) {
			ids = append(ids, docs[i].ID)
		}
	}
	return w.documents.Delete(ctx, ids)
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func isDirCreate(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) || isHidden(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// within reports whether path lies inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
