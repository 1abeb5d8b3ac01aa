package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusvault/pomo/pkg/models"
)

var tasksOpenOnly bool

var tasksCmd = &cobra.Command{
	Use:   "tasks [file]",
	Short: "List tasks resolved from the vault",
	Long: `List task lines from one document or the whole vault, merged with any
configured external sources and deduplicated by identity.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Vault == nil || TaskResolver == nil {
			return fmt.Errorf("vault not initialized")
		}

		files := args
		if len(files) == 0 {
			var err error
			files, err = Vault.ListDocuments()
			if err != nil {
				return fmt.Errorf("listing vault documents: %w", err)
			}
		}

		total := 0
		for _, file := range files {
			col, err := resolveDocument(cmd.Context(), file)
			if err != nil {
				if len(args) > 0 {
					return fmt.Errorf("resolving %s: %w", file, err)
				}
				continue
			}
			for _, w := range col.Warnings {
				fmt.Printf("  warning: %s: %s\n", file, w)
			}
			for _, rec := range col.Records {
				if tasksOpenOnly && rec.Done() {
					continue
				}
				printTaskLine(rec)
				total++
			}
		}

		fmt.Printf("\n%d task(s)\n", total)
		return nil
	},
}

// printTaskLine renders one record as a table row.
func printTaskLine(rec models.TaskRecord) {
	sessions := fmt.Sprintf("%d", rec.SessionsActual)
	if rec.SessionsExpected > 0 {
		sessions = fmt.Sprintf("%d/%d", rec.SessionsActual, rec.SessionsExpected)
	}
	due := ""
	if !rec.Dates.Due.IsZero() {
		due = rec.Dates.Due.Format("2006-01-02")
	}
	anchor := ""
	if rec.BlockAnchor != "" {
		anchor = "^" + rec.BlockAnchor
	}
	fmt.Printf("  [%s] %-5s %-10s %-8s %s:%d %s\n",
		rec.StatusMarker, sessions, due, anchor, rec.SourcePath, rec.LineNumber, rec.Description)
}

func init() {
	tasksCmd.Flags().BoolVar(&tasksOpenOnly, "open", false, "only tasks that are not done")
	rootCmd.AddCommand(tasksCmd)
}
