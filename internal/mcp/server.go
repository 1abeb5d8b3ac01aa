// Package mcp provides an MCP (Model Context Protocol) server that
// exposes the pomo task surface as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/focusvault/pomo/internal/core"
	"github.com/focusvault/pomo/internal/observability"
	"github.com/focusvault/pomo/internal/storage"
	"github.com/focusvault/pomo/pkg/models"
)

// ExternalFetcher supplies external record sets for collection merges.
// Nil disables external sources for MCP requests.
type ExternalFetcher func(ctx context.Context) [][]models.TaskRecord

// Server wraps pomo services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	vault       storage.Vault
	resolver    core.Resolver
	deser       core.Deserializer
	tracker     core.Tracker
	metricsCalc observability.MetricsCalculator
	external    ExternalFetcher
}

// NewServer creates a new MCP server with the given pomo service
// dependencies. metricsCalc and external may be nil.
func NewServer(vault storage.Vault, resolver core.Resolver, deser core.Deserializer, tracker core.Tracker, metricsCalc observability.MetricsCalculator, external ExternalFetcher, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		vault:       vault,
		resolver:    resolver,
		deser:       deser,
		tracker:     tracker,
		metricsCalc: metricsCalc,
		external:    external,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pomo", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type taskOutput struct {
	SourcePath       string   `json:"source_path"`
	LineNumber       int      `json:"line_number"`
	Status           string   `json:"status"`
	BlockAnchor      string   `json:"block_anchor,omitempty"`
	Description      string   `json:"description"`
	Section          string   `json:"section,omitempty"`
	Due              string   `json:"due,omitempty"`
	Priority         string   `json:"priority,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	SessionsActual   int      `json:"sessions_actual"`
	SessionsExpected int      `json:"sessions_expected,omitempty"`
	Provenance       string   `json:"provenance"`
}

type listTasksInput struct {
	File string `json:"file,omitempty" jsonschema:"vault-relative markdown file to scan; omit to scan the whole vault"`
	Open bool   `json:"open,omitempty" jsonschema:"when true, only tasks that are not done"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getActiveTaskInput struct{}

type activeTaskOutput struct {
	Selected    bool       `json:"selected"`
	Pinned      bool       `json:"pinned,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Task        taskOutput `json:"task,omitempty"`
}

type selectTaskInput struct {
	File        string `json:"file" jsonschema:"required,vault-relative markdown file containing the task"`
	Anchor      string `json:"anchor,omitempty" jsonschema:"block anchor of the task, with or without the leading caret"`
	Description string `json:"description,omitempty" jsonschema:"task description to match when no anchor is given"`
}

type selectTaskOutput struct {
	Message string     `json:"message"`
	Task    taskOutput `json:"task"`
}

type completeSessionInput struct{}

type completeSessionOutput struct {
	Message        string `json:"message"`
	SessionsActual int    `json:"sessions_actual"`
	NewLine        string `json:"new_line"`
}

type sessionStatsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for stats (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type sessionStatsOutput struct {
	SessionsToday  int            `json:"sessions_today"`
	SessionsWindow int            `json:"sessions_window"`
	Misses         int            `json:"misses"`
	PerTask        map[string]int `json:"per_task,omitempty"`
	EventCount     int            `json:"event_count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List task lines resolved from vault documents, merged with external sources and deduplicated by identity.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_active_task",
		Description: "Get the currently selected task, if any, including its session counters.",
	}, s.handleGetActiveTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "select_task",
		Description: "Select a task as active by file plus anchor or description. Synthesizes and persists a block anchor when the line has none.",
	}, s.handleSelectTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_session",
		Description: "Record one completed work session on the active task, incrementing its embedded session counter in the source document.",
	}, s.handleCompleteSession)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "session_stats",
		Description: "Get session statistics derived from the event log (sessions today, in window, per task).",
	}, s.handleSessionStats)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(ctx context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	files := []string{input.File}
	if input.File == "" {
		var err error
		files, err = s.vault.ListDocuments()
		if err != nil {
			return errorResult(fmt.Sprintf("listing vault documents: %s", err)), listTasksOutput{}, nil
		}
	}

	var external [][]models.TaskRecord
	if s.external != nil {
		external = s.external(ctx)
	}

	out := listTasksOutput{}
	for _, file := range files {
		text, err := s.vault.ReadDocument(file)
		if err != nil {
			if input.File != "" {
				return errorResult(fmt.Sprintf("reading %s: %s", file, err)), listTasksOutput{}, nil
			}
			continue
		}
		col := s.resolver.Resolve(file, text, core.BuildOutline(text), external...)
		for _, rec := range col.Records {
			if input.Open && rec.Done() {
				continue
			}
			out.Tasks = append(out.Tasks, taskToOutput(rec))
		}
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleGetActiveTask(_ context.Context, _ *gomcp.CallToolRequest, _ getActiveTaskInput) (*gomcp.CallToolResult, activeTaskOutput, error) {
	rec, ok := s.tracker.Active()
	if !ok {
		return nil, activeTaskOutput{Selected: false}, nil
	}
	return nil, activeTaskOutput{
		Selected:    true,
		Pinned:      s.tracker.Pinned(),
		DisplayName: s.tracker.DisplayName(),
		Task:        taskToOutput(rec),
	}, nil
}

func (s *Server) handleSelectTask(_ context.Context, _ *gomcp.CallToolRequest, input selectTaskInput) (*gomcp.CallToolResult, selectTaskOutput, error) {
	if input.File == "" {
		return errorResult("file is required"), selectTaskOutput{}, nil
	}
	if input.Anchor == "" && input.Description == "" {
		return errorResult("one of anchor or description is required"), selectTaskOutput{}, nil
	}

	text, err := s.vault.ReadDocument(input.File)
	if err != nil {
		return errorResult(fmt.Sprintf("reading %s: %s", input.File, err)), selectTaskOutput{}, nil
	}

	col := s.resolver.Resolve(input.File, text, core.BuildOutline(text))
	key := core.IdentityKey{
		Anchor:      core.NormalizeAnchor(input.Anchor),
		Description: core.NormalizeDescription(input.Description),
		SourcePath:  input.File,
		LineNumber:  -1,
	}
	rec, ok := col.Find(key)
	if !ok {
		return errorResult(fmt.Sprintf("no task matching %q in %s", input.Anchor+input.Description, input.File)), selectTaskOutput{}, nil
	}

	held, err := s.tracker.Select(rec)
	if err != nil {
		return errorResult(fmt.Sprintf("selecting task: %s", err)), selectTaskOutput{}, nil
	}

	return nil, selectTaskOutput{
		Message: fmt.Sprintf("selected %q (^%s) in %s", held.Description, held.BlockAnchor, held.SourcePath),
		Task:    taskToOutput(held),
	}, nil
}

func (s *Server) handleCompleteSession(_ context.Context, _ *gomcp.CallToolRequest, _ completeSessionInput) (*gomcp.CallToolResult, completeSessionOutput, error) {
	result, err := s.tracker.CompleteSession()
	if err != nil {
		return errorResult(fmt.Sprintf("completing session: %s", err)), completeSessionOutput{}, nil
	}
	rec, _ := s.tracker.Active()
	return nil, completeSessionOutput{
		Message:        fmt.Sprintf("session %d recorded for %q", rec.SessionsActual, rec.Description),
		SessionsActual: rec.SessionsActual,
		NewLine:        result.NewLine,
	}, nil
}

func (s *Server) handleSessionStats(_ context.Context, _ *gomcp.CallToolRequest, input sessionStatsInput) (*gomcp.CallToolResult, sessionStatsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics not available (observability may be disabled)"), sessionStatsOutput{}, nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}
	since, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), sessionStatsOutput{}, nil
	}

	stats, err := s.metricsCalc.Calculate(since)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating session stats: %s", err)), sessionStatsOutput{}, nil
	}

	return nil, sessionStatsOutput{
		SessionsToday:  stats.SessionsToday,
		SessionsWindow: stats.SessionsWindow,
		Misses:         stats.Misses,
		PerTask:        stats.PerTask,
		EventCount:     stats.EventCount,
	}, nil
}

// --- Helpers ---

func taskToOutput(rec models.TaskRecord) taskOutput {
	out := taskOutput{
		SourcePath:       rec.SourcePath,
		LineNumber:       rec.LineNumber,
		Status:           rec.StatusMarker,
		BlockAnchor:      rec.BlockAnchor,
		Description:      rec.Description,
		Section:          rec.Section,
		Priority:         string(rec.Priority),
		Tags:             rec.Tags,
		SessionsActual:   rec.SessionsActual,
		SessionsExpected: rec.SessionsExpected,
		Provenance:       string(rec.Provenance),
	}
	if !rec.Dates.Due.IsZero() {
		out.Due = rec.Dates.Due.Format("2006-01-02")
	}
	return out
}

// parseSince converts a shorthand duration like "7d", "30d", or "24h"
// into an absolute start time.
func parseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty duration")
	}

	unit := s[len(s)-1]
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || value < 0 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	switch unit {
	case 'd':
		return time.Now().Add(-time.Duration(value) * 24 * time.Hour), nil
	case 'h':
		return time.Now().Add(-time.Duration(value) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("invalid duration unit %q (use d or h)", string(unit))
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		IsError: true,
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
	}
}
