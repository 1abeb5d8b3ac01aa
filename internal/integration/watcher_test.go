package integration

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newTestWatcher(t *testing.T, root string) *fsVaultWatcher {
	t.Helper()
	w, err := NewVaultWatcher(root)
	if err != nil {
		t.Fatalf("creating watcher: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w.(*fsVaultWatcher)
}

func collectChanges(w *fsVaultWatcher) (<-chan string, func()) {
	changes := make(chan string, 16)
	w.OnDocumentChanged(func(path string) { changes <- path })
	return changes, func() { close(changes) }
}

func waitForChange(t *testing.T, changes <-chan string) string {
	t.Helper()
	select {
	case path := <-changes:
		return path
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return ""
	}
}

func TestWatcherNotifiesWithRelativePath(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	changes, _ := collectChanges(w)

	w.handleEvent(fsnotify.Event{
		Name: filepath.Join(root, "projects", "report.md"),
		Op:   fsnotify.Write,
	})

	if got := waitForChange(t, changes); got != "projects/report.md" {
		t.Fatalf("path: %q", got)
	}
}

func TestWatcherIgnoresNonMarkdown(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	changes, _ := collectChanges(w)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "image.png"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "notes.txt"), Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "real.md"), Op: fsnotify.Write})

	if got := waitForChange(t, changes); got != "real.md" {
		t.Fatalf("expected only the markdown change, got %q", got)
	}
	select {
	case extra := <-changes:
		t.Fatalf("unexpected extra notification: %q", extra)
	case <-time.After(2 * debounceWindow):
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	var mu sync.Mutex
	count := 0
	w.OnDocumentChanged(func(string) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	event := fsnotify.Event{Name: filepath.Join(root, "daily.md"), Op: fsnotify.Write}
	for i := 0; i < 5; i++ {
		w.handleEvent(event)
	}

	time.Sleep(3 * debounceWindow)
	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Fatalf("expected 1 debounced notification, got %d", count)
	}
}

func TestWatcherDistinctPathsNotifySeparately(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	changes, _ := collectChanges(w)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "a.md"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "b.md"), Op: fsnotify.Write})

	seen := map[string]bool{}
	seen[waitForChange(t, changes)] = true
	seen[waitForChange(t, changes)] = true
	if !seen["a.md"] || !seen["b.md"] {
		t.Fatalf("notifications: %v", seen)
	}
}

func TestWatcherCloseStopsPendingTimers(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)
	changes, _ := collectChanges(w)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(root, "late.md"), Op: fsnotify.Write})
	if err := w.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	select {
	case path := <-changes:
		t.Fatalf("notification after close: %q", path)
	case <-time.After(2 * debounceWindow):
	}
}
