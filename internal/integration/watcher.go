package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches the burst of write events editors emit when
// saving a file into one change notification.
const debounceWindow = 250 * time.Millisecond

// VaultWatcher watches a vault directory tree and reports changed
// markdown documents. Notifications are keyed by document path, never
// by "current document": a callback for one path must not be applied to
// state belonging to another.
type VaultWatcher interface {
	// OnDocumentChanged registers a callback receiving the
	// slash-separated vault-relative path of each changed document.
	OnDocumentChanged(fn func(path string))
	// Start begins watching until ctx is cancelled.
	Start(ctx context.Context) error
	Close() error
}

type fsVaultWatcher struct {
	root    string
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func(string)
	pending   map[string]*time.Timer
}

// NewVaultWatcher creates a VaultWatcher over the given vault root.
func NewVaultWatcher(root string) (VaultWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating vault watcher: %w", err)
	}
	return &fsVaultWatcher{
		root:    root,
		watcher: w,
		pending: make(map[string]*time.Timer),
	}, nil
}

func (w *fsVaultWatcher) OnDocumentChanged(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start adds the vault directory tree to the watcher and processes
// events until ctx is cancelled. New subdirectories are added as they
// appear.
func (w *fsVaultWatcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			// Watch errors are transient; keep watching.
		}
	}
}

func (w *fsVaultWatcher) Close() error {
	w.mu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return w.watcher.Close()
}

// addTree registers dir and every non-hidden subdirectory.
func (w *fsVaultWatcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *fsVaultWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(info.Name(), ".") {
				_ = w.addTree(event.Name)
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	if !strings.HasSuffix(strings.ToLower(event.Name), ".md") {
		return
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	w.schedule(filepath.ToSlash(rel))
}

// schedule arms (or re-arms) the per-path debounce timer.
func (w *fsVaultWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(debounceWindow)
		return
	}
	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		callbacks := make([]func(string), len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mu.Unlock()

		for _, fn := range callbacks {
			fn(path)
		}
	})
}
