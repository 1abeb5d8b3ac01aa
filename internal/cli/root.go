// Package cli implements the pomo command-line interface. Service
// instances are package-level variables wired during app initialization
// in internal/app.go.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "pomo",
	Short: "pomo - Pomodoro session tracking for markdown task vaults",
	Long: `pomo attaches Pomodoro work-session counters to task lines in a
markdown note vault. It parses the community task dialects (Tasks-plugin
emoji shorthand and Dataview bracket fields), merges task records from
direct scans and external query engines without double counting, and
rewrites source lines in place without disturbing embedded metadata.

Select a task, run focus sessions against it, and every completed
session is recorded on the task's own line in your notes.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pomo %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
