package stdio

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/mcp"
	"github.com/slighter12/toolbelt-mcp-go/tools"
	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
)

// StdioServer serves the tool registry as MCP over stdin/stdout.
type StdioServer struct {
	toolManager *tools.Manager
	server      *sdkmcp.Server
	rank        map[string]int
}

// NewStdioServer registers every tool of the manager, in registry order,
// on an SDK server.
func NewStdioServer(toolManager *tools.Manager) *StdioServer {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    mcp.ServerName,
		Version: mcp.ServerVersion,
	}, &sdkmcp.ServerOptions{Logger: logger.Slog()})

	s := &StdioServer{
		toolManager: toolManager,
		server:      server,
		rank:        make(map[string]int),
	}
	for i, def := range toolManager.Definitions() {
		s.rank[def.Name] = i
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, s.handler(def.Name))
	}
	server.AddReceivingMiddleware(s.registryOrder)
	return s
}

// registryOrder sorts tools/list results back into registry order. The SDK
// lists tools by name.
func (s *StdioServer) registryOrder(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
	return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
		res, err := next(ctx, method, req)
		if err != nil || method != "tools/list" {
			return res, err
		}
		if list, ok := res.(*sdkmcp.ListToolsResult); ok {
			slices.SortStableFunc(list.Tools, func(a, b *sdkmcp.Tool) int {
				return cmp.Compare(s.rank[a.Name], s.rank[b.Name])
			})
		}
		return res, nil
	}
}

func (s *StdioServer) handler(name string) sdkmcp.ToolHandler {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
		var arguments json.RawMessage
		if req.Params != nil {
			arguments = req.Params.Arguments
		}
		env := s.toolManager.InvokeJSON(ctx, name, arguments)
		return toCallToolResult(env), nil
	}
}

// toCallToolResult mirrors shared.BuildToolCallResult in SDK types.
func toCallToolResult(env envelope.Envelope) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: string(env.JSON())}},
		StructuredContent: env,
		IsError:           !env.OK(),
	}
}

// Start serves stdin/stdout until the client disconnects or ctx ends.
func (s *StdioServer) Start(ctx context.Context) error {
	return s.Serve(ctx, &sdkmcp.StdioTransport{})
}

// Serve runs the server over an arbitrary SDK transport.
func (s *StdioServer) Serve(ctx context.Context, transport sdkmcp.Transport) error {
	logger.Info("MCP stdio server started", "tools", len(s.toolManager.Definitions()))
	if err := s.server.Run(ctx, transport); err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Debug("MCP stdio server stopped")
	return nil
}

// SDK exposes the underlying server, mainly for in-memory connections.
func (s *StdioServer) SDK() *sdkmcp.Server {
	return s.server
}
