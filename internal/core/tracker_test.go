package core

import (
	"strings"
	"sync"
	"testing"

	"github.com/focusvault/pomo/pkg/models"
)

// memStore is an in-memory DocumentStore for tracker tests.
type memStore struct {
	mu   sync.Mutex
	docs map[string]string
}

func newMemStore(docs map[string]string) *memStore {
	if docs == nil {
		docs = make(map[string]string)
	}
	return &memStore{docs: docs}
}

func (s *memStore) ReadDocument(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[path], nil
}

func (s *memStore) UpdateDocument(path string, apply func(string) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := apply(s.docs[path])
	if err != nil {
		return err
	}
	s.docs[path] = next
	return nil
}

type memEvents struct {
	mu    sync.Mutex
	types []string
}

func (e *memEvents) LogEvent(eventType string, data map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, eventType)
	return nil
}

func (e *memEvents) has(eventType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, et := range e.types {
		if et == eventType {
			return true
		}
	}
	return false
}

func recordIn(t *testing.T, store *memStore, deser Deserializer, path string, key IdentityKey) models.TaskRecord {
	t.Helper()
	text, _ := store.ReadDocument(path)
	col := NewResolver(deser).Resolve(path, text, BuildOutline(text))
	rec, ok := col.Find(key)
	if !ok {
		t.Fatalf("no record for %v in %q", key, text)
	}
	return rec
}

func newTestTracker(store *memStore, events EventLogger) *tracker {
	tr := NewTracker(store, NewDeserializer(models.DialectTasksEmoji), events).(*tracker)
	tr.newAnchor = func() string { return "gen001" }
	return tr
}

func TestSelectKeepsExistingAnchor(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Write report ^abc1",
	})
	tr := newTestTracker(store, nil)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "abc1"})
	held, err := tr.Select(rec)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if held.BlockAnchor != "abc1" {
		t.Fatalf("anchor changed: %q", held.BlockAnchor)
	}
	text, _ := store.ReadDocument("daily.md")
	if text != "- [ ] Write report ^abc1" {
		t.Fatalf("document rewritten without need: %q", text)
	}
}

func TestSelectSynthesizesAndPersistsAnchor(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Unanchored task 📅 2024-05-01",
	})
	events := &memEvents{}
	tr := newTestTracker(store, events)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Description: "Unanchored task"})
	held, err := tr.Select(rec)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if held.BlockAnchor != "gen001" {
		t.Fatalf("expected synthesized anchor, got %q", held.BlockAnchor)
	}
	text, _ := store.ReadDocument("daily.md")
	if !strings.HasSuffix(text, " ^gen001") {
		t.Fatalf("anchor not persisted: %q", text)
	}
	if !events.has("task.selected") {
		t.Fatalf("missing task.selected event, got %v", events.types)
	}

	// The persisted line must still resolve to the same task.
	after := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "gen001"})
	if after.Description != "Unanchored task" {
		t.Fatalf("description drifted after anchoring: %+v", after)
	}
}

func TestSelectAdoptsRacingWritersAnchor(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Contended task",
	})
	tr := newTestTracker(store, nil)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Description: "Contended task"})
	// Another writer anchors the line between resolution and selection.
	store.mu.Lock()
	store.docs["daily.md"] = "- [ ] Contended task ^theirs"
	store.mu.Unlock()

	held, err := tr.Select(rec)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if held.BlockAnchor != "theirs" {
		t.Fatalf("expected adopted anchor, got %q", held.BlockAnchor)
	}
	text, _ := store.ReadDocument("daily.md")
	if strings.Contains(text, "gen001") {
		t.Fatalf("synthesized anchor written over existing one: %q", text)
	}
}

func TestCompleteSessionRewritesAndBumps(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Write report 📅 2024-05-01 ^abc1",
	})
	events := &memEvents{}
	tr := newTestTracker(store, events)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "abc1"})
	if _, err := tr.Select(rec); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	res, err := tr.CompleteSession()
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if res.NewLine != "- [ ] Write report [🍅:: 1] 📅 2024-05-01 ^abc1" {
		t.Fatalf("rewritten line: %q", res.NewLine)
	}
	text, _ := store.ReadDocument("daily.md")
	if text != res.NewText {
		t.Fatalf("store not updated:\n%q\n%q", text, res.NewText)
	}
	active, ok := tr.Active()
	if !ok || active.SessionsActual != 1 {
		t.Fatalf("in-memory count not bumped: %+v", active)
	}
	if !events.has("session.completed") {
		t.Fatalf("missing session.completed event, got %v", events.types)
	}
}

func TestCompleteSessionMiss(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Write report ^abc1",
	})
	events := &memEvents{}
	tr := newTestTracker(store, events)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "abc1"})
	if _, err := tr.Select(rec); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	// The line disappears before the session completes.
	store.mu.Lock()
	store.docs["daily.md"] = "# emptied out"
	store.mu.Unlock()

	if _, err := tr.CompleteSession(); err == nil {
		t.Fatal("expected error for vanished task")
	}
	if !events.has("session.miss") {
		t.Fatalf("missing session.miss event, got %v", events.types)
	}
	text, _ := store.ReadDocument("daily.md")
	if text != "# emptied out" {
		t.Fatalf("document mutated on miss: %q", text)
	}
}

func TestNavigateToRespectsPin(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Write report ^abc1",
	})
	tr := newTestTracker(store, nil)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "abc1"})
	if _, err := tr.Select(rec); err != nil {
		t.Fatalf("select failed: %v", err)
	}

	tr.NavigateTo("daily.md")
	if _, ok := tr.Active(); !ok {
		t.Fatal("navigation to the active document cleared the selection")
	}

	tr.SetPinned(true)
	tr.NavigateTo("other.md")
	if _, ok := tr.Active(); !ok {
		t.Fatal("pinned selection cleared by navigation")
	}

	tr.SetPinned(false)
	tr.NavigateTo("other.md")
	if _, ok := tr.Active(); ok {
		t.Fatal("unpinned selection survived navigation away")
	}
}

func TestSyncRefreshesHeldRecord(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Write report ^abc1",
	})
	tr := newTestTracker(store, nil)
	deser := NewDeserializer(models.DialectTasksEmoji)

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "abc1"})
	if _, err := tr.Select(rec); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	tr.SetDisplayName("My report")

	// The line moves and gains metadata; identity (anchor) holds.
	text := "# Added heading\n\n- [ ] Write report [🍅:: 2] #work ^abc1"
	col := NewResolver(deser).Resolve("daily.md", text, BuildOutline(text))
	tr.Sync(col)

	active, ok := tr.Active()
	if !ok {
		t.Fatal("selection lost during sync")
	}
	if active.LineNumber != 2 || active.SessionsActual != 2 {
		t.Fatalf("record not refreshed: %+v", active)
	}
	if tr.DisplayName() != "My report" {
		t.Fatalf("display name lost: %q", tr.DisplayName())
	}

	// Collections for other documents are ignored.
	other := NewResolver(deser).Resolve("other.md", "- [ ] Unrelated", BuildOutline("- [ ] Unrelated"))
	tr.Sync(other)
	if after, _ := tr.Active(); after.SourcePath != "daily.md" {
		t.Fatalf("sync crossed documents: %+v", after)
	}
}

func TestOnChangeObserver(t *testing.T) {
	store := newMemStore(map[string]string{
		"daily.md": "- [ ] Write report ^abc1",
	})
	tr := newTestTracker(store, nil)
	deser := NewDeserializer(models.DialectTasksEmoji)

	var calls []bool
	tr.OnChange(func(_ models.TaskRecord, selected bool) {
		calls = append(calls, selected)
	})

	rec := recordIn(t, store, deser, "daily.md", IdentityKey{Anchor: "abc1"})
	if _, err := tr.Select(rec); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	tr.Clear()

	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Fatalf("observer calls: %v", calls)
	}
}
