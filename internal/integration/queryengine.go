package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/focusvault/pomo/pkg/models"
)

// TaskSource supplies externally produced task records for merging into
// a resolved collection. Sources may fail, return nothing, or be
// unavailable; all of those collapse to "no records" at the boundary.
type TaskSource interface {
	Name() string
	Fetch(ctx context.Context) ([]models.TaskRecord, error)
}

// SourceLogger records source degradation events.
type SourceLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// commandQuerySource runs a configured external command that prints a
// JSON array of task-like objects on stdout. The objects pass through
// the capability probe, so any engine whose output carries a
// description or anchor under a known key shape works.
type commandQuerySource struct {
	command string
	args    []string

	// runCommand is injectable for tests.
	runCommand func(ctx context.Context, command string, args []string) ([]byte, error)
}

// NewCommandQuerySource creates a TaskSource backed by an external
// command invocation.
func NewCommandQuerySource(command string, args []string) TaskSource {
	return &commandQuerySource{
		command:    command,
		args:       args,
		runCommand: runQueryCommand,
	}
}

func runQueryCommand(ctx context.Context, command string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("running %s: %w: %s", command, err, msg)
		}
		return nil, fmt.Errorf("running %s: %w", command, err)
	}
	return stdout.Bytes(), nil
}

func (s *commandQuerySource) Name() string { return "query:" + s.command }

func (s *commandQuerySource) Fetch(ctx context.Context) ([]models.TaskRecord, error) {
	out, err := s.runCommand(ctx, s.command, s.args)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var objects []map[string]any
	if err := json.Unmarshal(trimmed, &objects); err != nil {
		return nil, fmt.Errorf("parsing %s output: %w", s.command, err)
	}

	var records []models.TaskRecord
	for _, obj := range objects {
		if rec, ok := RecordFromObject(obj, models.ProvenanceExternalQuery); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// QueryEngine wraps a TaskSource with the bounded retry policy and
// collapses every failure mode to an empty record set, logging the
// degradation instead of surfacing an error. Direct-scan results are
// never affected by a failing source.
type QueryEngine struct {
	source TaskSource
	policy RetryPolicy
	events SourceLogger // nil disables logging
}

// NewQueryEngine wraps source with the given retry policy.
func NewQueryEngine(source TaskSource, policy RetryPolicy, events SourceLogger) *QueryEngine {
	return &QueryEngine{source: source, policy: policy, events: events}
}

// Fetch returns the source's records, or nil after the retry budget is
// spent. It never returns an error.
func (e *QueryEngine) Fetch(ctx context.Context) []models.TaskRecord {
	records, outcome, err := e.policy.Fetch(ctx, func(ctx context.Context) ([]models.TaskRecord, error) {
		return e.source.Fetch(ctx)
	})
	if outcome == RetryExhausted && e.events != nil {
		data := map[string]any{"source": e.source.Name(), "outcome": string(outcome)}
		if err != nil {
			data["error"] = err.Error()
		}
		_ = e.events.LogEvent("query.degraded", data)
	}
	return records
}
