// Package cmd implements the toolbelt-mcp CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slighter12/toolbelt-mcp-go/config"
	"github.com/slighter12/toolbelt-mcp-go/dependency"
	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/mcp"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "toolbelt-mcp",
	Short:         "MCP server exposing schema-validated utility tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = mcp.ServerVersion
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml, .yml or .json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(versionCmd)
}

// bootstrap loads configuration, initializes logging and wires services.
func bootstrap() (*dependency.Container, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Server.Debug {
		cfg.Logging.Level = "debug"
	}
	if err := logger.Init(logger.GetLevelFromString(cfg.Logging.Level), logger.Format(cfg.Logging.Format), cfg.Logging.Path); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return nil, err
	}
	return container, nil
}
