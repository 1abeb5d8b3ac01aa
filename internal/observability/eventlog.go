package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event types pomo writes. Task-scoped events carry the identity key of
// the task they concern in Event.Identity.
const (
	EventTaskSelected     = "task.selected"
	EventTaskPinned       = "task.pinned"
	EventSessionCompleted = "session.completed"
	EventSessionMiss      = "session.miss"
	EventVaultChanged     = "vault.changed"
	EventQueryDegraded    = "query.degraded"
)

// Event is one line of the vault's .pomo_events.jsonl file.
type Event struct {
	Time     time.Time      `json:"time"`
	Level    string         `json:"level"` // INFO, WARN
	Type     string         `json:"type"`
	Identity string         `json:"identity,omitempty"` // task identity key, when task-scoped
	Message  string         `json:"msg"`
	Data     map[string]any `json:"data,omitempty"`
}

// EventFilter narrows a Read to a time window, an event type, or a level.
type EventFilter struct {
	Since *time.Time
	Until *time.Time
	Type  string
	Level string
}

func (f EventFilter) matches(e Event) bool {
	if f.Since != nil && e.Time.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Time.After(*f.Until) {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	return true
}

// EventLog records pomo events and reads them back for the metrics
// calculator. LogEvent is the write path for the tracker and the query
// engine; Write takes a fully formed Event when the caller controls the
// timestamp.
type EventLog interface {
	LogEvent(eventType string, data map[string]any) error
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// vaultEventLog appends events to a JSONL file at the vault root.
type vaultEventLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLEventLog opens (or creates) the append-only event log at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &vaultEventLog{path: path, file: f}, nil
}

// levelFor maps an event type to its log level. Misattributed sessions
// and degraded query sources are the conditions an operator should see.
func levelFor(eventType string) string {
	switch eventType {
	case EventSessionMiss, EventQueryDegraded:
		return "WARN"
	default:
		return "INFO"
	}
}

// LogEvent builds an Event from a type and its payload. The identity
// key is lifted out of the payload into Event.Identity so per-task
// aggregation needs no map lookups.
func (l *vaultEventLog) LogEvent(eventType string, data map[string]any) error {
	e := Event{
		Time:    time.Now().UTC(),
		Level:   levelFor(eventType),
		Type:    eventType,
		Message: eventType,
	}
	for k, v := range data {
		if k == "identity" {
			if id, ok := v.(string); ok {
				e.Identity = id
				continue
			}
		}
		if e.Data == nil {
			e.Data = make(map[string]any, len(data))
		}
		e.Data[k] = v
	}
	return l.Write(e)
}

// Write appends one JSON-encoded event. A zero Time is filled with the
// current UTC time.
func (l *vaultEventLog) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Read scans the log file and returns the events matching filter. A
// missing file reads as empty; lines that fail to decode are skipped so
// one corrupt write never hides the rest of the log.
func (l *vaultEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		if filter.matches(event) {
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}
	return events, nil
}

func (l *vaultEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}
