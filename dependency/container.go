// Package dependency wires the server's services using go.uber.org/dig.
package dependency

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/slighter12/toolbelt-mcp-go/config"
	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/tools"
	"github.com/slighter12/toolbelt-mcp-go/tools/notes"
	httptransport "github.com/slighter12/toolbelt-mcp-go/transport/http"
	"github.com/slighter12/toolbelt-mcp-go/transport/stdio"
)

// Container holds the resolved singletons. Transports are built lazily so
// one-shot commands never pay for an HTTP router or SDK server.
type Container struct {
	dig     *dig.Container
	config  *config.Config
	storage *notes.FileStorage
	manager *tools.Manager
}

func (c *Container) Config() *config.Config      { return c.config }
func (c *Container) Storage() *notes.FileStorage { return c.storage }
func (c *Container) Manager() *tools.Manager     { return c.manager }

// New builds and wires the core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	providers := []any{
		func() *config.Config { return cfg },
		newFileStorage,
		func(s *notes.FileStorage) notes.Storage { return s },
		newManager,
		httptransport.NewServer,
		stdio.NewStdioServer,
	}
	for _, provide := range providers {
		if err := d.Provide(provide); err != nil {
			return nil, fmt.Errorf("provide: %w", err)
		}
	}

	result := &Container{dig: d}
	err := d.Invoke(func(cfg *config.Config, storage *notes.FileStorage, manager *tools.Manager) {
		result.config = cfg
		result.storage = storage
		result.manager = manager
	})
	if err != nil {
		return nil, fmt.Errorf("build container: %w", err)
	}
	return result, nil
}

// HTTPServer resolves the streamable HTTP transport.
func (c *Container) HTTPServer() (*httptransport.Server, error) {
	var server *httptransport.Server
	err := c.dig.Invoke(func(s *httptransport.Server) { server = s })
	return server, err
}

// StdioServer resolves the stdio transport.
func (c *Container) StdioServer() (*stdio.StdioServer, error) {
	var server *stdio.StdioServer
	err := c.dig.Invoke(func(s *stdio.StdioServer) { server = s })
	return server, err
}

func newFileStorage(cfg *config.Config) (*notes.FileStorage, error) {
	storage, err := notes.NewFileStorage(cfg.Storage.Root, cfg.Storage.MaxReadBytes)
	if err != nil {
		return nil, err
	}
	logger.Debug("Note storage ready", "root", storage.Root(), "max_read_bytes", cfg.Storage.MaxReadBytes)
	return storage, nil
}

func newManager(storage notes.Storage) (*tools.Manager, error) {
	manager, err := tools.NewDefaultManager(tools.Dependencies{Storage: storage})
	if err != nil {
		return nil, err
	}
	logger.Debug("Tool registry built", "tools", manager.Names())
	return manager, nil
}
