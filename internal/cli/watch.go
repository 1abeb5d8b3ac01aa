package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/focusvault/pomo/internal/integration"
	"github.com/focusvault/pomo/internal/observability"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and keep the active selection in sync",
	Long: `Watch the vault for document changes. Each changed document is
re-resolved; when it is the active task's document, the tracker's held
record is refreshed by identity. Change handling is keyed by document
path, so an in-flight change to one document never touches state
belonging to another. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Vault == nil || ActiveTracker == nil {
			return fmt.Errorf("vault not initialized")
		}
		if _, err := restoreSelection(cmd.Context()); err != nil {
			return err
		}

		watcher, err := integration.NewVaultWatcher(Vault.Root())
		if err != nil {
			return err
		}
		defer watcher.Close()

		watcher.OnDocumentChanged(func(path string) {
			if EventLog != nil {
				_ = EventLog.LogEvent(observability.EventVaultChanged, map[string]any{"path": path})
			}
			col, err := resolveDocument(context.Background(), path)
			if err != nil {
				fmt.Printf("  %s: %v\n", path, err)
				return
			}
			ActiveTracker.Sync(col)
			fmt.Printf("  %s: %d task(s)\n", path, len(col.Records))
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", Vault.Root())
		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return saveSelection()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
