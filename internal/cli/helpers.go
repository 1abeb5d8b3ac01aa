package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/focusvault/pomo/internal/core"
	"github.com/focusvault/pomo/pkg/models"
)

// resolveDocument reads one vault document and resolves its task
// collection, merging external sources when configured.
func resolveDocument(ctx context.Context, path string) (*core.TaskCollection, error) {
	text, err := Vault.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	var external [][]models.TaskRecord
	if FetchExternal != nil {
		external = FetchExternal(ctx)
	}
	return TaskResolver.Resolve(path, text, core.BuildOutline(text), external...), nil
}

// restoreSelection loads the persisted selection state, re-finds the
// task by anchor in the current document text, and hands it to the
// tracker. Returns false when no selection is persisted or the anchor
// no longer resolves.
func restoreSelection(ctx context.Context) (bool, error) {
	if Selection == nil || ActiveTracker == nil {
		return false, nil
	}
	state, err := Selection.Load()
	if err != nil {
		return false, fmt.Errorf("loading selection state: %w", err)
	}
	if state == nil {
		return false, nil
	}

	col, err := resolveDocument(ctx, state.SourcePath)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", state.SourcePath, err)
	}
	rec, ok := col.Find(core.IdentityKey{Anchor: core.NormalizeAnchor(state.BlockAnchor), LineNumber: -1})
	if !ok {
		return false, nil
	}
	ActiveTracker.Restore(rec, state.Pinned, state.DisplayName)
	return true, nil
}

// saveSelection persists the tracker's current selection, or clears the
// state file when nothing is selected.
func saveSelection() error {
	if Selection == nil || ActiveTracker == nil {
		return nil
	}
	rec, ok := ActiveTracker.Active()
	if !ok {
		return Selection.Clear()
	}
	displayName := ""
	if name := ActiveTracker.DisplayName(); name != rec.Description {
		displayName = name
	}
	return Selection.Save(&models.SelectionState{
		SourcePath:       rec.SourcePath,
		BlockAnchor:      rec.BlockAnchor,
		DisplayName:      displayName,
		Pinned:           ActiveTracker.Pinned(),
		SelectedAt:       time.Now().UTC(),
		SessionsAtSelect: rec.SessionsActual,
	})
}

// recordCompletion runs the post-increment side effects: session log
// append, webhook notification, and selection state refresh. Failures
// are reported but never roll back the recorded session.
func recordCompletion(rec models.TaskRecord) []error {
	var errs []error
	if SessionLog != nil {
		if err := SessionLog.Append(rec, time.Now()); err != nil {
			errs = append(errs, fmt.Errorf("appending session log: %w", err))
		}
	}
	if Notifier != nil {
		if err := Notifier.NotifySessionCompleted(rec); err != nil {
			errs = append(errs, fmt.Errorf("notifying webhook: %w", err))
		}
	}
	if err := saveSelection(); err != nil {
		errs = append(errs, fmt.Errorf("saving selection state: %w", err))
	}
	return errs
}
