// Package models defines the shared data types for pomo: task records
// parsed from vault documents, vault configuration, and the persisted
// active-selection state.
package models

import "time"

// Dialect selects the text convention used to encode task metadata
// in markdown task lines.
type Dialect string

const (
	// DialectTasksEmoji is the emoji-shorthand convention: single emoji
	// sentinels followed by a value (e.g. "📅 2024-05-01" for a due date).
	DialectTasksEmoji Dialect = "tasks-emoji"
	// DialectDataview is the bracket-field convention: "[key:: value]"
	// pairs embedded in the line body.
	DialectDataview Dialect = "dataview"
)

// Provenance identifies which subsystem produced a task record.
type Provenance string

const (
	// ProvenanceDirectScan marks records parsed straight from document text.
	ProvenanceDirectScan Provenance = "direct-scan"
	// ProvenanceExternalQuery marks records supplied by an external query engine.
	ProvenanceExternalQuery Provenance = "external-query"
	// ProvenancePreviewScrape marks records scraped from rendered query
	// results. Least trustworthy tier; merged last.
	ProvenancePreviewScrape Provenance = "preview-scrape"
)

// TaskPriority is the task priority level.
type TaskPriority string

const (
	PriorityNone   TaskPriority = ""
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskDates holds the optional calendar dates embedded in a task line.
// A zero time.Time means the date is unset. Only the date component is
// meaningful; times are always midnight UTC.
type TaskDates struct {
	Created   time.Time `json:"created,omitempty"`
	Start     time.Time `json:"start,omitempty"`
	Scheduled time.Time `json:"scheduled,omitempty"`
	Due       time.Time `json:"due,omitempty"`
	Done      time.Time `json:"done,omitempty"`
	Cancelled time.Time `json:"cancelled,omitempty"`
}

// TaskRecord is one parsed task line. Records are produced fresh on every
// resolution pass and are never persisted; the document text is the only
// durable state. LineNumber is 0-based and valid only against the exact
// text snapshot the record was derived from.
type TaskRecord struct {
	SourcePath   string       `json:"source_path"`
	LineNumber   int          `json:"line_number"`
	RawText      string       `json:"raw_text"`
	StatusMarker string       `json:"status_marker"`
	BlockAnchor  string       `json:"block_anchor,omitempty"`
	Description  string       `json:"description"`
	Section      string       `json:"section,omitempty"`
	Dates        TaskDates    `json:"dates"`
	Priority     TaskPriority `json:"priority,omitempty"`
	Recurrence   string       `json:"recurrence,omitempty"`
	Tags         []string     `json:"tags,omitempty"`

	// SessionsActual counts completed work sessions recorded on the line.
	// It never decreases through pomo's own operations.
	SessionsActual int `json:"sessions_actual"`
	// SessionsExpected is the target session count; 0 means unset.
	SessionsExpected int `json:"sessions_expected"`

	Provenance Provenance `json:"provenance"`
}

// Clone returns a deep copy of the record. Records handed to subscribers
// are copy-on-write: updates produce a new record, never in-place mutation.
func (r TaskRecord) Clone() TaskRecord {
	out := r
	if r.Tags != nil {
		out.Tags = make([]string, len(r.Tags))
		copy(out.Tags, r.Tags)
	}
	return out
}

// Done reports whether the status marker denotes a completed task.
func (r TaskRecord) Done() bool {
	return r.StatusMarker == "x" || r.StatusMarker == "X"
}

// HasTag reports whether the record carries the given tag.
func (r TaskRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
