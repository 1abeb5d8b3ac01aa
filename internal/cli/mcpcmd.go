package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusvault/pomo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run a Model Context Protocol server exposing the task surface
(list_tasks, get_active_task, select_task, complete_session,
session_stats) to AI coding assistants over stdio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Vault == nil || TaskResolver == nil || ActiveTracker == nil {
			return fmt.Errorf("vault not initialized")
		}
		if _, err := restoreSelection(cmd.Context()); err != nil {
			return err
		}

		server := mcp.NewServer(Vault, TaskResolver, Deserializer, ActiveTracker, MetricsCalc, mcp.ExternalFetcher(FetchExternal), appVersion)
		return server.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
