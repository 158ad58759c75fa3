package tools

import (
	"time"

	"github.com/slighter12/toolbelt-mcp-go/tools/calc"
	"github.com/slighter12/toolbelt-mcp-go/tools/clock"
	"github.com/slighter12/toolbelt-mcp-go/tools/notes"
	"github.com/slighter12/toolbelt-mcp-go/tools/weather"
)

// Dependencies are the collaborators tools need at construction.
type Dependencies struct {
	Storage notes.Storage
	// Now defaults to time.Now.
	Now func() time.Time
}

// GetAllTools returns every tool in its published order.
func GetAllTools(deps Dependencies) []Tool {
	return []Tool{
		calc.NewCalculateTool(),
		weather.NewTool(),
		notes.NewSaveTool(deps.Storage, deps.Now),
		calc.NewConvertTemperatureTool(),
		notes.NewReadTool(deps.Storage),
		clock.NewTool(deps.Now),
	}
}

// NewDefaultManager builds the registry of all tools.
func NewDefaultManager(deps Dependencies, opts ...Option) (*Manager, error) {
	if deps.Now != nil {
		opts = append([]Option{WithClock(deps.Now)}, opts...)
	}
	return NewManager(GetAllTools(deps), opts...)
}
