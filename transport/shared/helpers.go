package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/slighter12/toolbelt-mcp-go/mcp"
	"github.com/slighter12/toolbelt-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/toolbelt-mcp-go/tools"
	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
)

const pageSize = 50

func BuildToolsListResponse(msg jsonrpc.Request, defs []mcp.Tool) *jsonrpc.Response {
	start, err := ParseCursor(msg.Params, len(defs))
	if err != nil {
		return errorResponse(msg.ID, err)
	}
	end := min(start+pageSize, len(defs))

	result := map[string]any{
		"tools": defs[start:end],
	}
	if end < len(defs) {
		result["nextCursor"] = strconv.Itoa(end)
	}
	return jsonrpc.NewResponse(msg.ID, result)
}

func BuildPingResponse(msg jsonrpc.Request) *jsonrpc.Response {
	return jsonrpc.NewResponse(msg.ID, map[string]any{})
}

// BuildInitializeResult is the result body of a successful initialize.
func BuildInitializeResult() map[string]any {
	return map[string]any{
		"protocolVersion": mcp.ProtocolVersion,
		"capabilities":    ServerCapabilities(),
		"serverInfo": map[string]any{
			"name":    mcp.ServerName,
			"version": mcp.ServerVersion,
		},
	}
}

func ServerCapabilities() map[string]any {
	return map[string]any{
		"tools": map[string]any{"listChanged": false},
	}
}

// DispatchStandardMethod handles the non-initialize JSON-RPC methods shared
// by every transport. A nil return means nothing should be written.
func DispatchStandardMethod(ctx context.Context, msg jsonrpc.Request, manager *tools.Manager) *jsonrpc.Response {
	switch msg.Method {
	case "tools/list":
		return BuildToolsListResponse(msg, manager.Definitions())
	case "tools/call":
		return BuildToolCallResponse(ctx, msg, manager)
	case "ping":
		return BuildPingResponse(msg)
	case "notifications/initialized", "notifications/cancelled":
		return nil
	default:
		if msg.IsNotification() {
			return nil
		}
		return jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrMethodNotFound, "Method not found", map[string]any{
			"method": msg.Method,
		})
	}
}

// BuildToolCallResponse runs tools/call through the dispatcher. Tool
// failures are successful JSON-RPC responses with isError set; only a
// malformed request is a protocol error.
func BuildToolCallResponse(ctx context.Context, msg jsonrpc.Request, manager *tools.Manager) *jsonrpc.Response {
	toolName, arguments, err := parseToolCall(msg.Params)
	if err != nil {
		return errorResponse(msg.ID, err)
	}

	env := manager.InvokeJSON(ctx, toolName, arguments)
	return jsonrpc.NewResponse(msg.ID, BuildToolCallResult(env))
}

func parseToolCall(params json.RawMessage) (string, json.RawMessage, error) {
	var toolCall struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &toolCall); err != nil {
		return "", nil, jsonrpc.NewJSONRPCError(jsonrpc.ErrInvalidParams, "Invalid tool call payload", nil)
	}
	toolName := strings.TrimSpace(toolCall.Name)
	if toolName == "" {
		return "", nil, jsonrpc.NewJSONRPCError(jsonrpc.ErrInvalidParams, "Tool name is required", nil)
	}
	return toolName, toolCall.Arguments, nil
}

// errorResponse renders err as a JSON-RPC error; untyped errors become
// internal errors.
func errorResponse(id any, err error) *jsonrpc.Response {
	if rpcErr, ok := errors.AsType[*jsonrpc.JSONRPCError](err); ok {
		return rpcErr.Response(id)
	}
	return jsonrpc.NewErrorResponse(id, jsonrpc.ErrInternalError, "Internal error", nil)
}

// BuildToolCallResult renders an envelope as an MCP CallToolResult.
func BuildToolCallResult(env envelope.Envelope) map[string]any {
	return map[string]any{
		"content":           []map[string]any{{"type": "text", "text": string(env.JSON())}},
		"structuredContent": env,
		"isError":           !env.OK(),
	}
}

func ParseCursor(paramsRaw json.RawMessage, total int) (int, error) {
	if len(paramsRaw) == 0 {
		return 0, nil
	}

	var params struct {
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return 0, jsonrpc.NewJSONRPCError(jsonrpc.ErrInvalidParams, "invalid params payload", nil)
	}
	if strings.TrimSpace(params.Cursor) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(params.Cursor)
	if err != nil || offset < 0 || offset > total {
		return 0, jsonrpc.NewJSONRPCError(jsonrpc.ErrInvalidParams, "invalid cursor value", map[string]any{
			"cursor": params.Cursor,
		})
	}
	return offset, nil
}

// ParseJSONRPCFrame validates and parses one JSON-RPC message frame. Batches
// are rejected. Responses sent by the client are accepted and dropped.
func ParseJSONRPCFrame(frame []byte) (*jsonrpc.Request, *jsonrpc.Response, error) {
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty message")
	}

	if trimmed[0] == '[' {
		return nil, invalidRequest(nil), nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrParseError, "Parse error", nil), nil
	}

	requestID, hasID, validID := parseID(fields)
	if !validID {
		return nil, invalidRequest(nil), nil
	}

	var msg jsonrpc.Request
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, invalidRequest(requestID), nil
	}
	msg.ID = requestID

	if msg.Method == "" {
		_, hasResult := fields["result"]
		_, hasErr := fields["error"]
		if (hasResult || hasErr) && msg.JSONRPC == jsonrpc.Version && hasID && !(hasResult && hasErr) {
			return nil, nil, nil
		}
		return nil, invalidRequest(requestID), nil
	}

	if msg.JSONRPC != jsonrpc.Version {
		return nil, invalidRequest(requestID), nil
	}

	if rawParams, ok := fields["params"]; ok && !isValidParamsValue(rawParams) {
		return nil, invalidRequest(requestID), nil
	}

	if msg.Method == "initialize" && msg.ID == nil {
		return nil, invalidRequest(nil), nil
	}

	return &msg, nil, nil
}

func invalidRequest(id any) *jsonrpc.Response {
	return jsonrpc.NewErrorResponse(id, jsonrpc.ErrInvalidRequest, "Invalid request", nil)
}

func parseID(fields map[string]json.RawMessage) (any, bool, bool) {
	rawID, exists := fields["id"]
	if !exists {
		return nil, false, true
	}
	trimmed := bytes.TrimSpace(rawID)
	if len(trimmed) == 0 {
		return nil, true, false
	}

	var id any
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	if err := decoder.Decode(&id); err != nil {
		return nil, true, false
	}
	if !isValidJSONRPCID(id) {
		return nil, true, false
	}
	return id, true, true
}

func isValidJSONRPCID(id any) bool {
	switch v := id.(type) {
	case string:
		return true
	case json.Number:
		return isJSONInteger(v.String())
	default:
		return false
	}
}

func isValidParamsValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	return trimmed[0] == '{'
}

func isJSONInteger(value string) bool {
	if value == "" || strings.ContainsAny(value, ".eE") {
		return false
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return true
	}
	if strings.HasPrefix(value, "-") {
		return false
	}
	_, err := strconv.ParseUint(value, 10, 64)
	return err == nil
}
