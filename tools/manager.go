package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/mcp"
	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

// Tool is one named, schema-validated operation.
type Tool interface {
	Name() string
	Description() string
	Schema() schema.Schema
	OutputSchema() schema.Output
	// Execute receives input that already passed Schema().Validate.
	// Failures are returned as *types.Failure.
	Execute(ctx context.Context, in schema.Values) (any, error)
}

var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrDuplicateTool = errors.New("duplicate tool name")
)

func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithClock overrides the time source used for envelope timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager is the immutable tool registry and dispatcher. It is safe for
// concurrent use without locking because nothing mutates after NewManager.
type Manager struct {
	ordered []Tool
	byName  map[string]Tool
	now     func() time.Time
}

// NewManager registers tools in the given order.
func NewManager(tools []Tool, opts ...Option) (*Manager, error) {
	m := &Manager{
		ordered: make([]Tool, 0, len(tools)),
		byName:  make(map[string]Tool, len(tools)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, tool := range tools {
		if tool == nil {
			return nil, errors.New("tool cannot be nil")
		}
		name := tool.Name()
		if name == "" {
			return nil, errors.New("tool name cannot be empty")
		}
		if _, exists := m.byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		m.byName[name] = tool
		m.ordered = append(m.ordered, tool)
		logger.Debug("Tool registered", "name", name)
	}
	return m, nil
}

// GetTool retrieves a tool by name
func (m *Manager) GetTool(name string) (Tool, error) {
	tool, exists := m.byName[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool, nil
}

// ListTools returns the registered tools in registration order.
func (m *Manager) ListTools() []Tool {
	return append([]Tool(nil), m.ordered...)
}

// Names returns the registered tool names in registration order.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.ordered))
	for _, tool := range m.ordered {
		names = append(names, tool.Name())
	}
	return names
}

// Definitions is the registry export used for discovery.
func (m *Manager) Definitions() []mcp.Tool {
	defs := make([]mcp.Tool, 0, len(m.ordered))
	for _, tool := range m.ordered {
		output := tool.OutputSchema().JSONSchema()
		defs = append(defs, mcp.Tool{
			Name:         tool.Name(),
			Description:  tool.Description(),
			InputSchema:  tool.Schema().JSONSchema(),
			OutputSchema: &output,
		})
	}
	return defs
}

// InvokeJSON decodes raw as the argument object and invokes name. Empty
// input and JSON null are treated as {}.
func (m *Manager) InvokeJSON(ctx context.Context, name string, raw json.RawMessage) envelope.Envelope {
	args, err := decodeArguments(raw)
	if err != nil {
		if _, lookupErr := m.GetTool(name); lookupErr != nil {
			return m.unknownTool(ctx, name)
		}
		return envelope.Failure(types.KindDomainViolation, err.Error(), m.now())
	}
	return m.Invoke(ctx, name, args)
}

// Invoke runs the full pipeline for one call: lookup, validation,
// execution and envelope construction. It never panics.
func (m *Manager) Invoke(ctx context.Context, name string, args map[string]any) (env envelope.Envelope) {
	requestID := uuid.NewString()
	started := time.Now()

	tool, err := m.GetTool(name)
	if err != nil {
		return m.unknownTool(ctx, name)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "Tool panicked", "request_id", requestID, "tool", name, "panic", fmt.Sprint(recovered))
			env = envelope.FromError(fmt.Errorf("panic: %v", recovered), m.now())
		}
		logOutcome(ctx, requestID, name, env, time.Since(started))
	}()

	values, err := tool.Schema().Validate(args)
	if err != nil {
		var violations schema.Violations
		if errors.As(err, &violations) {
			return envelope.FromError(violations.Failure(), m.now())
		}
		return envelope.FromError(err, m.now())
	}

	result, err := tool.Execute(ctx, values)
	if err != nil {
		if _, ok := types.AsFailure(err); !ok {
			logger.ErrorContext(ctx, "Tool returned unclassified error", "request_id", requestID, "tool", name, "error", err)
		}
		return envelope.FromError(err, m.now())
	}

	env, err = envelope.Success(result, m.now())
	if err != nil {
		logger.ErrorContext(ctx, "Tool result could not be enveloped", "request_id", requestID, "tool", name, "error", err)
		return envelope.FromError(err, m.now())
	}
	return env
}

func (m *Manager) unknownTool(ctx context.Context, name string) envelope.Envelope {
	logger.WarnContext(ctx, "Unknown tool requested", "tool", name)
	return envelope.Failure(types.KindUnknownTool, fmt.Sprintf("unknown tool: %s", name), m.now())
}

func logOutcome(ctx context.Context, requestID, name string, env envelope.Envelope, elapsed time.Duration) {
	if env.OK() {
		logger.InfoContext(ctx, "Tool call succeeded", "request_id", requestID, "tool", name, "duration", elapsed)
		return
	}
	logger.WarnContext(ctx, "Tool call failed",
		"request_id", requestID,
		"tool", name,
		"error_type", env.ErrorType(),
		"duration", elapsed,
	)
}

func decodeArguments(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return map[string]any{}, nil
	}
	if trimmed[0] != '{' {
		return nil, errors.New("arguments must be a JSON object")
	}
	var args map[string]any
	if err := json.Unmarshal(trimmed, &args); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	return args, nil
}
