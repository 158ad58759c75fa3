package mcp

// Protocol version
const (
	ProtocolVersion = "2025-11-25"
)

// Server identity reported by every transport.
const (
	ServerName    = "toolbelt-mcp-go"
	ServerVersion = "0.1.0"
)
