// Package internal provides the App struct that wires all components of
// pomo together and initializes the CLI layer.
package internal

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/focusvault/pomo/internal/cli"
	"github.com/focusvault/pomo/internal/core"
	"github.com/focusvault/pomo/internal/integration"
	"github.com/focusvault/pomo/internal/observability"
	"github.com/focusvault/pomo/internal/storage"
	"github.com/focusvault/pomo/pkg/models"
)

// App holds all service dependencies for pomo.
type App struct {
	VaultRoot string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.VaultConfig

	// Storage layer
	Vault     storage.Vault
	Selection storage.SelectionStore

	// Core services
	Deserializer core.Deserializer
	Resolver     core.Resolver
	Tracker      core.Tracker
	SessionLog   core.SessionLogger

	// Integration services
	QueryEngine   *integration.QueryEngine
	PreviewSource integration.TaskSource

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of pomo. vaultRoot is the
// directory containing the markdown documents and .pomo.yaml.
func NewApp(vaultRoot string) (*App, error) {
	app := &App{VaultRoot: vaultRoot}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(vaultRoot)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.Vault = storage.NewVault(vaultRoot)
	app.Selection = storage.NewSelectionStore(vaultRoot)

	// --- Observability ---
	eventLogPath := filepath.Join(vaultRoot, ".pomo_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Notifications.Enabled && cfg.Notifications.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	}

	// --- Core services ---
	app.Deserializer = core.NewDeserializer(cfg.Dialect)
	app.Resolver = core.NewResolver(app.Deserializer)

	// EventLog satisfies core.EventLogger and integration.SourceLogger
	// directly; a nil log disables event recording downstream.
	var events core.EventLogger
	if app.EventLog != nil {
		events = app.EventLog
	}
	app.Tracker = core.NewTracker(app.Vault, app.Deserializer, events)
	if cfg.Log.File != "" {
		app.SessionLog = core.NewSessionLogger(app.Vault, cfg.Log.File)
	}

	// --- Integration services ---
	if cfg.Query.Command != "" {
		source := integration.NewCommandQuerySource(cfg.Query.Command, cfg.Query.Args)
		policy := integration.RetryPolicy{
			MaxAttempts: cfg.Query.MaxAttempts,
			BaseDelay:   time.Duration(cfg.Query.BaseDelayMS) * time.Millisecond,
		}
		var srcLogger integration.SourceLogger
		if app.EventLog != nil {
			srcLogger = app.EventLog
		}
		app.QueryEngine = integration.NewQueryEngine(source, policy, srcLogger)
	}
	if cfg.Sources.PreviewScrape && cfg.Query.ResultsFile != "" {
		app.PreviewSource = integration.NewPreviewSource(app.Vault, cfg.Query.ResultsFile, app.Deserializer)
	}

	// --- Wire CLI package-level variables ---
	cli.VaultRoot = vaultRoot
	cli.Cfg = cfg
	cli.Vault = app.Vault
	cli.Selection = app.Selection
	cli.Deserializer = app.Deserializer
	cli.TaskResolver = app.Resolver
	cli.ActiveTracker = app.Tracker
	cli.SessionLog = app.SessionLog

	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	if app.QueryEngine != nil || app.PreviewSource != nil {
		cli.FetchExternal = app.fetchExternal
	}

	return app, nil
}

// fetchExternal gathers external record sets in merge order: query
// engine first, preview scrape last. Every failure mode inside the
// sources collapses to an absent set.
func (a *App) fetchExternal(ctx context.Context) [][]models.TaskRecord {
	var sets [][]models.TaskRecord
	if a.QueryEngine != nil {
		if records := a.QueryEngine.Fetch(ctx); len(records) > 0 {
			sets = append(sets, records)
		}
	}
	if a.PreviewSource != nil {
		if records, err := a.PreviewSource.Fetch(ctx); err == nil && len(records) > 0 {
			sets = append(sets, records)
		}
	}
	return sets
}

// Close releases resources held by the App, such as the event log file
// handle. Safe to call when EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveVaultRoot determines the vault root directory. It checks the
// POMO_VAULT env var, then walks up from the current directory looking
// for .pomo.yaml, and falls back to the current directory.
func ResolveVaultRoot() string {
	if root := os.Getenv("POMO_VAULT"); root != "" {
		return root
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".pomo.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
