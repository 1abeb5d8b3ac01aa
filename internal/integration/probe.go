package integration

import (
	"regexp"
	"strings"
	"time"

	"github.com/focusvault/pomo/pkg/models"
)

// External query engines return loosely shaped JSON objects; different
// engines put the same fact under different keys, sometimes nested. The
// probe converts one loose object into a TaskRecord by trying a ranked
// list of named extraction strategies per field. A strategy either
// yields a value or is skipped; probing never raises.

// stringStrategy names one way to pull a string field out of an object.
type stringStrategy struct {
	name  string
	probe func(obj map[string]any) (string, bool)
}

// intStrategy names one way to pull an integer field out of an object.
type intStrategy struct {
	name  string
	probe func(obj map[string]any) (int, bool)
}

// atKey probes a flat string key.
func atKey(key string) func(map[string]any) (string, bool) {
	return func(obj map[string]any) (string, bool) {
		s, ok := obj[key].(string)
		if !ok || strings.TrimSpace(s) == "" {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
}

// atPath probes a dotted path of nested objects ending in a string.
func atPath(path ...string) func(map[string]any) (string, bool) {
	return func(obj map[string]any) (string, bool) {
		cur := any(obj)
		for i, seg := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if i == len(path)-1 {
				s, ok := m[seg].(string)
				if !ok || strings.TrimSpace(s) == "" {
					return "", false
				}
				return strings.TrimSpace(s), true
			}
			cur = m[seg]
		}
		return "", false
	}
}

// intAtKey probes a flat numeric key. JSON numbers decode as float64.
func intAtKey(key string) func(map[string]any) (int, bool) {
	return func(obj map[string]any) (int, bool) {
		switch n := obj[key].(type) {
		case float64:
			return int(n), true
		case int:
			return n, true
		default:
			return 0, false
		}
	}
}

// intAtPath probes a dotted path ending in a number.
func intAtPath(path ...string) func(map[string]any) (int, bool) {
	return func(obj map[string]any) (int, bool) {
		cur := any(obj)
		for i, seg := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				return 0, false
			}
			if i == len(path)-1 {
				switch n := m[seg].(type) {
				case float64:
					return int(n), true
				case int:
					return n, true
				default:
					return 0, false
				}
			}
			cur = m[seg]
		}
		return 0, false
	}
}

var embeddedAnchorPattern = regexp.MustCompile(`\^([A-Za-z0-9][A-Za-z0-9-]*)\s*$`)

var descriptionStrategies = []stringStrategy{
	{"description", atKey("description")},
	{"text", atKey("text")},
	{"name", atKey("name")},
	{"title", atKey("title")},
	{"task.text", atPath("task", "text")},
}

var anchorStrategies = []stringStrategy{
	{"blockAnchor", atKey("blockAnchor")},
	{"block_anchor", atKey("block_anchor")},
	{"anchor", atKey("anchor")},
	{"blockId", atKey("blockId")},
	{"block_id", atKey("block_id")},
	{"embedded-caret", func(obj map[string]any) (string, bool) {
		for _, key := range []string{"text", "description"} {
			if s, ok := obj[key].(string); ok {
				if m := embeddedAnchorPattern.FindStringSubmatch(s); m != nil {
					return m[1], true
				}
			}
		}
		return "", false
	}},
}

var pathStrategies = []stringStrategy{
	{"sourcePath", atKey("sourcePath")},
	{"source_path", atKey("source_path")},
	{"path", atKey("path")},
	{"file", atKey("file")},
	{"file.path", atPath("file", "path")},
}

var statusStrategies = []stringStrategy{
	{"statusMarker", atKey("statusMarker")},
	{"status_marker", atKey("status_marker")},
	{"status", atKey("status")},
	{"task.status", atPath("task", "status")},
}

var dueStrategies = []stringStrategy{
	{"due", atKey("due")},
	{"due_date", atKey("due_date")},
	{"dates.due", atPath("dates", "due")},
}

var lineStrategies = []intStrategy{
	{"lineNumber", intAtKey("lineNumber")},
	{"line_number", intAtKey("line_number")},
	{"line", intAtKey("line")},
	{"position.start.line", intAtPath("position", "start", "line")},
}

var sessionsActualStrategies = []intStrategy{
	{"sessionsActual", intAtKey("sessionsActual")},
	{"sessions_actual", intAtKey("sessions_actual")},
	{"pomodoros", intAtKey("pomodoros")},
}

var sessionsExpectedStrategies = []intStrategy{
	{"sessionsExpected", intAtKey("sessionsExpected")},
	{"sessions_expected", intAtKey("sessions_expected")},
	{"expected", intAtKey("expected")},
}

func probeString(obj map[string]any, strategies []stringStrategy) string {
	for _, s := range strategies {
		if v, ok := s.probe(obj); ok {
			return v
		}
	}
	return ""
}

func probeInt(obj map[string]any, strategies []intStrategy) int {
	for _, s := range strategies {
		if v, ok := s.probe(obj); ok && v >= 0 {
			return v
		}
	}
	return 0
}

// RecordFromObject maps one loose object to a TaskRecord with the given
// provenance. Objects with no usable description and no anchor are
// dropped (ok=false); everything else maps best-effort with missing
// fields left at their zero defaults.
func RecordFromObject(obj map[string]any, provenance models.Provenance) (models.TaskRecord, bool) {
	if obj == nil {
		return models.TaskRecord{}, false
	}

	rec := models.TaskRecord{
		SourcePath:       probeString(obj, pathStrategies),
		Description:      probeString(obj, descriptionStrategies),
		BlockAnchor:      strings.TrimPrefix(probeString(obj, anchorStrategies), "^"),
		StatusMarker:     normalizeStatus(probeString(obj, statusStrategies)),
		SessionsActual:   probeInt(obj, sessionsActualStrategies),
		SessionsExpected: probeInt(obj, sessionsExpectedStrategies),
		Provenance:       provenance,
	}
	rec.LineNumber = probeInt(obj, lineStrategies)
	rec.Description = strings.TrimSpace(embeddedAnchorPattern.ReplaceAllString(rec.Description, ""))

	if due := probeString(obj, dueStrategies); due != "" {
		if t, err := time.Parse("2006-01-02", due); err == nil {
			rec.Dates.Due = t
		}
	}

	if rec.Description == "" && rec.BlockAnchor == "" {
		return models.TaskRecord{}, false
	}
	return rec, true
}

// normalizeStatus maps assorted external status spellings onto a single
// status marker character.
func normalizeStatus(s string) string {
	switch strings.ToLower(s) {
	case "", "todo", "open", "incomplete", " ":
		return " "
	case "x", "done", "complete", "completed":
		return "x"
	case "-", "cancelled", "canceled":
		return "-"
	default:
		if len(s) == 1 {
			return s
		}
		return " "
	}
}
