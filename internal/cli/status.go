package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	statusTitleStyle = lipgloss.NewStyle().Bold(true)
	statusDimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active task and session statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := restoreSelection(cmd.Context())
		if err != nil {
			return err
		}

		if !ok {
			fmt.Println("No active task. Use 'pomo select' or 'pomo pick' to choose one.")
		} else {
			rec, _ := ActiveTracker.Active()
			name := ActiveTracker.DisplayName()

			fmt.Println(statusTitleStyle.Render("Active task"))
			fmt.Printf("  %s\n", name)
			fmt.Printf("  %s\n", statusDimStyle.Render(fmt.Sprintf("%s:%d ^%s", rec.SourcePath, rec.LineNumber, rec.BlockAnchor)))
			if rec.SessionsExpected > 0 {
				fmt.Printf("  Sessions: %d/%d\n", rec.SessionsActual, rec.SessionsExpected)
			} else {
				fmt.Printf("  Sessions: %d\n", rec.SessionsActual)
			}
			if !rec.Dates.Due.IsZero() {
				fmt.Printf("  Due: %s\n", rec.Dates.Due.Format("2006-01-02"))
			}
			if ActiveTracker.Pinned() {
				fmt.Println("  Pinned: yes")
			}
		}

		if MetricsCalc != nil {
			stats, err := MetricsCalc.Calculate(time.Now().Add(-7 * 24 * time.Hour))
			if err != nil {
				return fmt.Errorf("calculating session stats: %w", err)
			}
			fmt.Println()
			fmt.Println(statusTitleStyle.Render("Sessions"))
			fmt.Printf("  Today: %d   Last 7 days: %d\n", stats.SessionsToday, stats.SessionsWindow)
			if stats.Misses > 0 {
				fmt.Printf("  Unattributed: %d\n", stats.Misses)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
