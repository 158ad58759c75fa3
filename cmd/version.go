package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slighter12/toolbelt-mcp-go/config"
	"github.com/slighter12/toolbelt-mcp-go/mcp"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (MCP protocol %s)\n", mcp.ServerName, mcp.ServerVersion, mcp.ProtocolVersion)
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a default config file if none exists",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			resolved, err := config.ResolveConfigPath()
			if err != nil {
				return err
			}
			path = resolved
		}
		if err := config.EnsureDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}
