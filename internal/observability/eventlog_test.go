package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log, path
}

func TestEventLogWriteRead(t *testing.T) {
	log, path := newTestLog(t)

	events := []Event{
		{Level: "INFO", Type: EventTaskSelected, Message: "selected", Data: map[string]any{"anchor": "abc1"}},
		{Level: "INFO", Type: EventSessionCompleted, Message: "done", Identity: "anchor:abc1"},
		{Level: "WARN", Type: EventQueryDegraded, Message: "exhausted"},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	read, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(read) != 3 {
		t.Fatalf("expected 3 events, got %d", len(read))
	}
	if read[0].Type != EventTaskSelected || read[0].Data["anchor"] != "abc1" {
		t.Fatalf("first event: %+v", read[0])
	}
	if read[1].Identity != "anchor:abc1" {
		t.Fatalf("identity not round-tripped: %+v", read[1])
	}
	for _, e := range read {
		if e.Time.IsZero() {
			t.Fatalf("event written without timestamp: %+v", e)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading raw log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 JSONL lines, got %d", len(lines))
	}
}

func TestEventLogLogEvent(t *testing.T) {
	log, _ := newTestLog(t)

	err := log.LogEvent(EventSessionCompleted, map[string]any{
		"identity": "anchor:abc1",
		"path":     "projects/report.md",
	})
	if err != nil {
		t.Fatalf("log event failed: %v", err)
	}
	if err := log.LogEvent(EventSessionMiss, map[string]any{"identity": "anchor:gone"}); err != nil {
		t.Fatalf("log event failed: %v", err)
	}
	if err := log.LogEvent(EventVaultChanged, map[string]any{"path": "inbox.md"}); err != nil {
		t.Fatalf("log event failed: %v", err)
	}

	read, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(read) != 3 {
		t.Fatalf("expected 3 events, got %d", len(read))
	}

	completed := read[0]
	if completed.Level != "INFO" || completed.Message != EventSessionCompleted {
		t.Errorf("completed event: %+v", completed)
	}
	if completed.Identity != "anchor:abc1" {
		t.Errorf("identity not lifted from payload: %+v", completed)
	}
	if _, ok := completed.Data["identity"]; ok {
		t.Errorf("identity duplicated in payload: %+v", completed.Data)
	}
	if completed.Data["path"] != "projects/report.md" {
		t.Errorf("payload lost: %+v", completed.Data)
	}
	if completed.Time.IsZero() {
		t.Errorf("event written without timestamp: %+v", completed)
	}

	if read[1].Level != "WARN" {
		t.Errorf("miss should log at WARN: %+v", read[1])
	}
	if read[2].Level != "INFO" || read[2].Identity != "" {
		t.Errorf("vault change event: %+v", read[2])
	}
}

func TestEventLogFilters(t *testing.T) {
	log, _ := newTestLog(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seed := []Event{
		{Time: base, Level: "INFO", Type: "session.completed"},
		{Time: base.Add(time.Hour), Level: "WARN", Type: "query.degraded"},
		{Time: base.Add(2 * time.Hour), Level: "INFO", Type: "session.completed"},
	}
	for _, e := range seed {
		if err := log.Write(e); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	byType, err := log.Read(EventFilter{Type: "session.completed"})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(byType) != 2 {
		t.Fatalf("type filter: %d events", len(byType))
	}

	byLevel, err := log.Read(EventFilter{Level: "WARN"})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(byLevel) != 1 || byLevel[0].Type != "query.degraded" {
		t.Fatalf("level filter: %+v", byLevel)
	}

	since := base.Add(90 * time.Minute)
	until := base.Add(3 * time.Hour)
	byWindow, err := log.Read(EventFilter{Since: &since, Until: &until})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(byWindow) != 1 || !byWindow[0].Time.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("window filter: %+v", byWindow)
	}
}

func TestEventLogSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"time":"2024-05-01T12:00:00Z","level":"INFO","type":"session.completed","msg":"ok"}
this line is not json
{"time":"2024-05-01T13:00:00Z","level":"INFO","type":"session.completed","msg":"ok"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected malformed line skipped, got %d events", len(events))
	}
}

func TestEventLogReadMissingFile(t *testing.T) {
	log, path := newTestLog(t)
	log.Close()
	os.Remove(path)

	events, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("read of missing file errored: %v", err)
	}
	if events != nil {
		t.Fatalf("events: %+v", events)
	}
}
