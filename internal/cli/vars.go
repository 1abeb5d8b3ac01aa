package cli

import (
	"context"

	"github.com/focusvault/pomo/internal/core"
	"github.com/focusvault/pomo/internal/observability"
	"github.com/focusvault/pomo/internal/storage"
	"github.com/focusvault/pomo/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	VaultRoot string
	Cfg       *models.VaultConfig

	Vault         storage.Vault
	Deserializer  core.Deserializer
	TaskResolver  core.Resolver
	ActiveTracker core.Tracker
	Selection     storage.SelectionStore
	SessionLog    core.SessionLogger

	// FetchExternal returns external record sets in merge order
	// (query engine first, preview scrape last). Nil when no external
	// sources are configured.
	FetchExternal func(ctx context.Context) [][]models.TaskRecord

	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
