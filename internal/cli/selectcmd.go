package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusvault/pomo/internal/core"
)

var selectCmd = &cobra.Command{
	Use:   "select <file> <anchor-or-description>",
	Short: "Select a task as the active Pomodoro target",
	Long: `Select a task by its vault-relative file plus a block anchor (with or
without the leading caret) or a description fragment. If the task line
has no block anchor yet, a short random one is synthesized and written
to the line before the selection takes effect.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ActiveTracker == nil {
			return fmt.Errorf("tracker not initialized")
		}
		file, needle := args[0], args[1]

		col, err := resolveDocument(cmd.Context(), file)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", file, err)
		}

		key := core.IdentityKey{
			Anchor:      core.NormalizeAnchor(needle),
			Description: core.NormalizeDescription(needle),
			SourcePath:  file,
			LineNumber:  -1,
		}
		rec, ok := col.Find(key)
		if !ok {
			return fmt.Errorf("no task matching %q in %s", needle, file)
		}

		held, err := ActiveTracker.Select(rec)
		if err != nil {
			return fmt.Errorf("selecting task: %w", err)
		}
		if err := saveSelection(); err != nil {
			return err
		}

		fmt.Printf("Selected: %s (^%s) in %s\n", held.Description, held.BlockAnchor, held.SourcePath)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the active task selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ActiveTracker != nil {
			ActiveTracker.Clear()
		}
		if Selection != nil {
			if err := Selection.Clear(); err != nil {
				return err
			}
		}
		fmt.Println("Selection cleared.")
		return nil
	},
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin the active selection across document navigation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := restoreSelection(cmd.Context())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no active task (use 'pomo select' or 'pomo pick')")
		}
		ActiveTracker.SetPinned(!ActiveTracker.Pinned())
		if err := saveSelection(); err != nil {
			return err
		}
		if ActiveTracker.Pinned() {
			fmt.Println("Selection pinned.")
		} else {
			fmt.Println("Selection unpinned.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(pinCmd)
}
