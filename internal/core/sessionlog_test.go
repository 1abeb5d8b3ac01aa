package core

import (
	"strings"
	"testing"
	"time"

	"github.com/focusvault/pomo/pkg/models"
)

func TestSessionLogAppendCreatesDocument(t *testing.T) {
	store := newMemStore(nil)
	logger := NewSessionLogger(store, "log/sessions.md")

	rec := models.TaskRecord{
		SourcePath:     "projects/report.md",
		Description:    "Write report",
		BlockAnchor:    "abc1",
		SessionsActual: 3,
	}
	at := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	if err := logger.Append(rec, at); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	text, _ := store.ReadDocument("log/sessions.md")
	if !strings.HasPrefix(text, "- 2024-05-01 14:30 🍅 Write report") {
		t.Fatalf("entry prefix: %q", text)
	}
	if !strings.Contains(text, "[[projects/report#^abc1]]") {
		t.Fatalf("missing backlink: %q", text)
	}
	if !strings.Contains(text, "session 3") {
		t.Fatalf("missing session count: %q", text)
	}
	if !strings.HasSuffix(text, "\n") {
		t.Fatalf("entry missing trailing newline: %q", text)
	}
}

func TestSessionLogAppendsInOrder(t *testing.T) {
	store := newMemStore(map[string]string{
		"log/sessions.md": "# Sessions\n- existing entry",
	})
	logger := NewSessionLogger(store, "log/sessions.md")

	rec := models.TaskRecord{Description: "Next task", SessionsActual: 1, SessionsExpected: 4}
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	if err := logger.Append(rec, at); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	text, _ := store.ReadDocument("log/sessions.md")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), text)
	}
	if lines[0] != "# Sessions" || lines[1] != "- existing entry" {
		t.Fatalf("existing content disturbed: %q", text)
	}
	last := lines[2]
	if !strings.Contains(last, "Next task") || !strings.Contains(last, "session 1/4") {
		t.Fatalf("appended entry: %q", last)
	}
	if strings.Contains(last, "[[") {
		t.Fatalf("anchorless record rendered a backlink: %q", last)
	}
}

func TestSessionLogDisabledWhenUnconfigured(t *testing.T) {
	store := newMemStore(nil)
	logger := NewSessionLogger(store, "")

	if err := logger.Append(models.TaskRecord{Description: "x"}, time.Now()); err != nil {
		t.Fatalf("disabled logger errored: %v", err)
	}
	if len(store.docs) != 0 {
		t.Fatalf("disabled logger wrote documents: %v", store.docs)
	}
}
