package core

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/focusvault/pomo/pkg/models"
)

// DocumentStore is the document access boundary the tracker needs.
// UpdateDocument runs the read-modify-write of one document as a
// critical section, so concurrent increments never race on the same
// line. Satisfied by storage.Vault.
type DocumentStore interface {
	ReadDocument(path string) (string, error)
	UpdateDocument(path string, apply func(current string) (string, error)) error
}

// EventLogger records tracker events without the core package importing
// observability directly.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Tracker owns the active task selection: at most one record marked
// active, re-synchronized against freshly resolved collections by
// identity and exposed to the timer workflow. Long-lived for the
// process lifetime; there is no terminal state.
type Tracker interface {
	// Select designates a task as active. When the source line lacks a
	// block anchor, a short random one is synthesized, appended to the
	// line, and persisted before the selection takes effect. Returns
	// the record as held, anchor included.
	Select(rec models.TaskRecord) (models.TaskRecord, error)

	// Restore re-establishes a previously persisted selection without
	// touching the document; the record must already carry its anchor.
	Restore(rec models.TaskRecord, pinned bool, displayName string)

	// Active returns a copy of the held record, false when unselected.
	Active() (models.TaskRecord, bool)

	// Sync looks up the held identity in a freshly resolved collection
	// and replaces the held record's data fields. A user-edited display
	// name is preserved across syncs.
	Sync(col *TaskCollection)

	// NavigateTo reports a document change; clears the selection when
	// the target differs from the active document and the selection is
	// not pinned.
	NavigateTo(path string)

	// CompleteSession rewrites the active task's source line with an
	// incremented session counter inside the document's critical
	// section, then bumps the in-memory copy optimistically.
	CompleteSession() (RewriteResult, error)

	Clear()
	Pinned() bool
	SetPinned(pinned bool)
	DisplayName() string
	SetDisplayName(name string)

	// OnChange registers an observer invoked after every selection
	// change with a copy of the active record.
	OnChange(fn func(active models.TaskRecord, selected bool))
}

type tracker struct {
	store  DocumentStore
	deser  Deserializer
	events EventLogger // nil when observability is disabled

	mu          sync.Mutex
	active      *models.TaskRecord
	pinned      bool
	displayName string
	callbacks   []func(models.TaskRecord, bool)

	// newAnchor is injectable for tests.
	newAnchor func() string
}

// NewTracker creates a Tracker backed by the given document store.
// events may be nil.
func NewTracker(store DocumentStore, deser Deserializer, events EventLogger) Tracker {
	return &tracker{
		store:     store,
		deser:     deser,
		events:    events,
		newAnchor: randomAnchor,
	}
}

// randomAnchor returns a short random alphanumeric block anchor.
func randomAnchor() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func (t *tracker) Select(rec models.TaskRecord) (models.TaskRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	held := rec.Clone()
	if held.BlockAnchor == "" {
		anchor := t.newAnchor()
		if err := t.appendAnchor(&held, anchor); err != nil {
			return models.TaskRecord{}, fmt.Errorf("anchoring task in %s: %w", held.SourcePath, err)
		}
		held.BlockAnchor = anchor
	}

	t.active = &held
	t.pinned = false
	t.displayName = ""
	t.logEvent("task.selected", map[string]any{
		"path":   held.SourcePath,
		"anchor": held.BlockAnchor,
	})
	t.notifyLocked()
	return held.Clone(), nil
}

// appendAnchor persists a synthesized anchor onto the task's source line
// before the selection is established. Runs inside the document's
// critical section; the line is re-located by identity, never by the
// possibly stale line number alone.
func (t *tracker) appendAnchor(rec *models.TaskRecord, anchor string) error {
	key := IdentityOf(*rec)
	return t.store.UpdateDocument(rec.SourcePath, func(current string) (string, error) {
		col := NewResolver(t.deser).Resolve(rec.SourcePath, current, BuildOutline(current))
		found, ok := col.Find(key)
		if !ok {
			return "", ErrTaskNotFound
		}
		if found.BlockAnchor != "" {
			// Another writer anchored the line first; adopt theirs.
			anchor = NormalizeAnchor(found.BlockAnchor)
			rec.LineNumber = found.LineNumber
			rec.RawText = found.RawText
			return current, nil
		}
		lines := strings.Split(current, "\n")
		newLine := strings.TrimRight(lines[found.LineNumber], " \t") + " ^" + anchor
		lines[found.LineNumber] = newLine
		rec.LineNumber = found.LineNumber
		rec.RawText = newLine
		return strings.Join(lines, "\n"), nil
	})
}

func (t *tracker) Restore(rec models.TaskRecord, pinned bool, displayName string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	held := rec.Clone()
	t.active = &held
	t.pinned = pinned
	t.displayName = displayName
	t.notifyLocked()
}

func (t *tracker) Active() (models.TaskRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return models.TaskRecord{}, false
	}
	return t.active.Clone(), true
}

func (t *tracker) Sync(col *TaskCollection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil || col == nil || col.SourcePath != t.active.SourcePath {
		return
	}
	fresh, ok := col.Find(IdentityOf(*t.active))
	if !ok {
		return
	}
	held := fresh.Clone()
	t.active = &held
	t.notifyLocked()
}

func (t *tracker) NavigateTo(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil || t.pinned || path == t.active.SourcePath {
		return
	}
	t.active = nil
	t.displayName = ""
	t.notifyLocked()
}

func (t *tracker) CompleteSession() (RewriteResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return RewriteResult{}, fmt.Errorf("no active task")
	}

	key := IdentityOf(*t.active)
	path := t.active.SourcePath

	var result RewriteResult
	err := t.store.UpdateDocument(path, func(current string) (string, error) {
		res, rerr := IncrementSession(current, key, t.deser)
		if rerr != nil {
			return "", rerr
		}
		result = res
		return res.NewText, nil
	})
	if err != nil {
		t.logEvent("session.miss", map[string]any{
			"path":     path,
			"identity": key.String(),
			"error":    err.Error(),
		})
		return RewriteResult{}, fmt.Errorf("recording session for %s: %w", key, err)
	}

	// Optimistic bump so the UI reflects the new count immediately; the
	// persisted file re-triggers resolution and reconciles later.
	t.active.SessionsActual++
	t.active.RawText = result.NewLine
	t.active.LineNumber = result.LineNumber
	t.logEvent("session.completed", map[string]any{
		"path":     path,
		"identity": key.String(),
		"sessions": t.active.SessionsActual,
	})
	t.notifyLocked()
	return result, nil
}

func (t *tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return
	}
	t.active = nil
	t.pinned = false
	t.displayName = ""
	t.notifyLocked()
}

func (t *tracker) Pinned() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pinned
}

func (t *tracker) SetPinned(pinned bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return
	}
	t.pinned = pinned
	if pinned {
		t.logEvent("task.pinned", map[string]any{
			"path":   t.active.SourcePath,
			"anchor": t.active.BlockAnchor,
		})
	}
}

func (t *tracker) DisplayName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.displayName != "" {
		return t.displayName
	}
	if t.active != nil {
		return t.active.Description
	}
	return ""
}

func (t *tracker) SetDisplayName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.displayName = name
}

func (t *tracker) OnChange(fn func(models.TaskRecord, bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, fn)
}

// notifyLocked invokes observers with a snapshot copy. Callers hold the
// mutex; observers must not call back into the tracker.
func (t *tracker) notifyLocked() {
	var rec models.TaskRecord
	selected := t.active != nil
	if selected {
		rec = t.active.Clone()
	}
	for _, fn := range t.callbacks {
		fn(rec, selected)
	}
}

func (t *tracker) logEvent(eventType string, data map[string]any) {
	if t.events == nil {
		return
	}
	_ = t.events.LogEvent(eventType, data)
}
