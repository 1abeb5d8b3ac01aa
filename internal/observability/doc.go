// Package observability provides pomo's event log, session metrics, and
// webhook notifications.
//
// The event log is an append-only JSONL file (.pomo_events.jsonl) at
// the vault root. Event types written by the system (the Event*
// constants):
//
//   - task.selected       a task became the active selection
//   - task.pinned         the selection was pinned across navigation
//   - session.completed   a work session was recorded on a task line
//   - session.miss        a completed session could not be attributed
//   - vault.changed       the watcher observed a document change
//   - query.degraded      the external query source exhausted retries
//
// The metrics calculator derives session statistics from this log; the
// notifier posts completed sessions to a configured webhook.
package observability
