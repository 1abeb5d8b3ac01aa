package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Record one completed work session on the active task",
	Long: `Record one completed work session: the active task's source line is
located by identity in the current document text and its session
counter is incremented in place, preserving every other piece of
metadata on the line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := restoreSelection(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no active task (use 'pomo select' or 'pomo pick')")
		}

		result, err := ActiveTracker.CompleteSession()
		if err != nil {
			return err
		}

		rec, _ := ActiveTracker.Active()
		fmt.Printf("Session %d recorded for %q\n", rec.SessionsActual, ActiveTracker.DisplayName())
		fmt.Printf("  %s:%d: %s\n", rec.SourcePath, result.LineNumber, result.NewLine)

		for _, sideErr := range recordCompletion(rec) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", sideErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
}
