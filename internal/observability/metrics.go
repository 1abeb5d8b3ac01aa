package observability

import (
	"fmt"
	"time"
)

// SessionStats holds session statistics derived from the event log.
type SessionStats struct {
	SessionsToday  int            `json:"sessions_today"`
	SessionsWindow int            `json:"sessions_window"`
	Misses         int            `json:"misses"`
	PerTask        map[string]int `json:"per_task"`
	EventCount     int            `json:"event_count"`
	OldestEvent    *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent    *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives session statistics from the event log.
type MetricsCalculator interface {
	// Calculate aggregates events from since onward. SessionsToday is
	// always computed against the calendar day of now regardless of the
	// window start.
	Calculate(since time.Time) (*SessionStats, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog

	// now is injectable for tests.
	now func() time.Time
}

// NewMetricsCalculator creates a MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog, now: time.Now}
}

// Calculate reads all events since the given time and aggregates session stats.
func (mc *metricsCalculator) Calculate(since time.Time) (*SessionStats, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for session stats: %w", err)
	}

	now := mc.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &SessionStats{
		PerTask: make(map[string]int),
	}
	stats.EventCount = len(events)

	for i, event := range events {
		if i == 0 {
			t := event.Time
			stats.OldestEvent = &t
		}
		t := event.Time
		stats.NewestEvent = &t

		switch event.Type {
		case EventSessionCompleted:
			stats.SessionsWindow++
			if !event.Time.Before(dayStart) {
				stats.SessionsToday++
			}
			if event.Identity != "" {
				stats.PerTask[event.Identity]++
			}
		case EventSessionMiss:
			stats.Misses++
		}
	}

	return stats, nil
}
