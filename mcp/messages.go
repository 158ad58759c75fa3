package mcp

// Tool represents a tool definition as exposed for discovery.
type Tool struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	InputSchema  InputSchema  `json:"inputSchema"`
	OutputSchema *InputSchema `json:"outputSchema,omitempty"`
}

// InputSchema represents the JSON schema for tool input (and output).
type InputSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
	Title      string         `json:"title,omitempty"`
}

// ToolNames returns the names of tools in their given order.
func ToolNames(tools []Tool) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	return names
}
