package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/slighter12/toolbelt-mcp-go/config"
	"github.com/slighter12/toolbelt-mcp-go/dependency"
	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/tools/notes"
)

var (
	serveStdio bool
	serveHTTP  bool
	servePort  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the enabled MCP transports",
	Long: `Run every transport enabled in the configuration until interrupted.
--stdio and --http restrict the run to the named transports.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve MCP over stdin/stdout")
	serveCmd.Flags().BoolVar(&serveHTTP, "http", false, "serve streamable HTTP")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	container, err := bootstrap()
	if err != nil {
		return err
	}
	cfg := container.Config()
	applyServeFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.TransportEnabled(config.TransportStreamableHTTP) {
		server, err := container.HTTPServer()
		if err != nil {
			return fmt.Errorf("build http server: %w", err)
		}
		g.Go(func() error { return server.Run(gctx) })
	}

	if cfg.TransportEnabled(config.TransportStdio) {
		server, err := container.StdioServer()
		if err != nil {
			return fmt.Errorf("build stdio server: %w", err)
		}
		g.Go(func() error {
			err := server.Start(gctx)
			// stdin closing ends the whole process.
			stop()
			return err
		})
	}

	if cfg.Storage.Watch {
		if err := startWatcher(gctx, g, container); err != nil {
			logger.Warn("Note watcher disabled", "error", err)
		}
	}

	logger.Info("Server running", "name", cfg.Name, "version", cfg.Version, "storage", container.Storage().Root())
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		return err
	}
	logger.Info("Shutdown complete")
	return nil
}

func applyServeFlags(cfg *config.Config) {
	switch {
	case serveStdio && serveHTTP:
		cfg.EnableOnly(config.TransportStdio, config.TransportStreamableHTTP)
	case serveStdio:
		cfg.EnableOnly(config.TransportStdio)
	case serveHTTP:
		cfg.EnableOnly(config.TransportStreamableHTTP)
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
}

func startWatcher(ctx context.Context, g *errgroup.Group, container *dependency.Container) error {
	watcher, err := notes.NewWatcher(container.Storage().Root(), func(change notes.Change) {
		logger.Info("Note changed on disk", "filename", change.Filename, "op", change.Op)
	})
	if err != nil {
		return err
	}
	g.Go(func() error { return watcher.Run(ctx) })
	return nil
}
