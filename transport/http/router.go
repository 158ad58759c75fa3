package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/slighter12/toolbelt-mcp-go/config"
	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/mcp"
	"github.com/slighter12/toolbelt-mcp-go/mcp/jsonrpc"
	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
	"github.com/slighter12/toolbelt-mcp-go/transport/shared"
)

const maxBodyBytes = 1 << 20

const (
	headerSessionID       = "MCP-Session-Id"
	headerProtocolVersion = "MCP-Protocol-Version"
)

var supportedProtocolVersions = map[string]struct{}{
	"2024-11-05":        {},
	"2025-03-26":        {},
	"2025-06-18":        {},
	mcp.ProtocolVersion: {},
}

func RegisterRoutes(e *echo.Echo, s *Server) {
	e.GET("/", s.handleHTTPInfo)
	e.GET("/health", s.handleHealth)
	e.GET("/tools", s.handleListTools)
	e.POST("/tools/:name", s.handleInvokeTool)
	e.POST("/mcp", s.handleStreamableHTTPPost)
	e.DELETE("/mcp", s.handleStreamableHTTPDelete)
	e.OPTIONS("/mcp", s.handleOptions)
}

func (s *Server) endpoints() map[string]string {
	return map[string]string{
		"health": "/health",
		"tools":  "/tools",
		"invoke": "/tools/{name}",
		"mcp":    "/mcp",
	}
}

func (s *Server) handleHTTPInfo(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":            s.config.Name,
		"version":         s.config.Version,
		"description":     s.config.Description,
		"protocolVersion": mcp.ProtocolVersion,
		"capabilities": map[string]any{
			"stdio":           s.config.TransportEnabled(config.TransportStdio),
			"streamable_http": true,
		},
		"endpoints": s.endpoints(),
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "healthy",
		"server":    s.config.Name,
		"endpoints": s.endpoints(),
		"tools":     s.toolManager.Names(),
	})
}

func (s *Server) handleListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"tools": s.toolManager.Definitions(),
	})
}

// handleInvokeTool answers every dispatched call with 200 and the envelope,
// failures included. Only a body that is not JSON at all is a 400.
func (s *Server) handleInvokeTool(c echo.Context) error {
	name := c.Param("name")
	body, status, err := readBody(c)
	if err != nil {
		return c.JSON(status, envelope.Failure(types.KindDomainViolation, err.Error(), s.now()))
	}
	if len(strings.TrimSpace(string(body))) > 0 && !json.Valid(body) {
		return c.JSON(http.StatusBadRequest, envelope.Failure(types.KindDomainViolation, "request body must be valid JSON", s.now()))
	}

	env := s.toolManager.InvokeJSON(c.Request().Context(), name, body)
	return c.JSON(http.StatusOK, env)
}

func (s *Server) handleOptions(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleStreamableHTTPPost(c echo.Context) error {
	body, status, err := readBody(c)
	if err != nil {
		logger.Warn("Rejected MCP request body", "error", err, "remote_addr", c.RealIP())
		return c.JSON(status, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, err.Error(), nil))
	}

	request, prebuilt, err := shared.ParseJSONRPCFrame(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrParseError, "Parse error", nil))
	}
	if prebuilt != nil {
		return c.JSON(http.StatusBadRequest, prebuilt)
	}

	requestedVersion := strings.TrimSpace(c.Request().Header.Get(headerProtocolVersion))
	if requestedVersion != "" && !isSupportedProtocolVersion(requestedVersion) {
		return c.JSON(http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, "Unsupported MCP-Protocol-Version header", nil))
	}

	if request != nil && request.Method == "initialize" {
		return s.handleInitialize(c, *request)
	}

	sessionID := strings.TrimSpace(c.Request().Header.Get(headerSessionID))
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, "Missing MCP-Session-Id header", nil))
	}
	session, ok := s.sessionManager.TouchSession(sessionID)
	if !ok {
		return c.JSON(http.StatusNotFound, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, "Unknown MCP session", nil))
	}
	if requestedVersion != "" && session.ProtocolVersion != "" && requestedVersion != session.ProtocolVersion {
		return c.JSON(http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, "MCP-Protocol-Version does not match the negotiated version", nil))
	}
	c.Response().Header().Set(headerSessionID, sessionID)

	// A response frame sent by the client.
	if request == nil {
		return c.NoContent(http.StatusAccepted)
	}

	logger.Debug("Streamable HTTP request received", "method", request.Method, "id", request.ID, "session_id", sessionID)
	if request.Method == "notifications/initialized" {
		if !request.IsNotification() {
			return c.JSON(http.StatusOK, jsonrpc.NewErrorResponse(request.ID, jsonrpc.ErrInvalidRequest, "Invalid request", nil))
		}
		s.sessionManager.MarkInitialized(sessionID)
		return c.NoContent(http.StatusAccepted)
	}

	response := shared.DispatchStandardMethod(c.Request().Context(), *request, s.toolManager)
	if response == nil || request.IsNotification() {
		return c.NoContent(http.StatusAccepted)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) handleInitialize(c echo.Context, msg jsonrpc.Request) error {
	if existing := strings.TrimSpace(c.Request().Header.Get(headerSessionID)); existing != "" {
		if _, ok := s.sessionManager.TouchSession(existing); !ok {
			return c.JSON(http.StatusNotFound, jsonrpc.NewErrorResponse(msg.ID, jsonrpc.ErrInvalidRequest, "Unknown MCP session", nil))
		}
		s.sessionManager.RemoveSession(existing)
	}

	version := negotiateProtocolVersion(msg.Params)
	session := s.sessionManager.CreateSession(version)
	logger.Info("MCP session created", "session_id", session.ID, "protocol_version", version)

	result := shared.BuildInitializeResult()
	result["protocolVersion"] = version
	c.Response().Header().Set(headerSessionID, session.ID)
	return c.JSON(http.StatusOK, jsonrpc.NewResponse(msg.ID, result))
}

func (s *Server) handleStreamableHTTPDelete(c echo.Context) error {
	sessionID := strings.TrimSpace(c.Request().Header.Get(headerSessionID))
	if sessionID == "" {
		return c.JSON(http.StatusBadRequest, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, "Missing MCP-Session-Id header", nil))
	}
	if !s.sessionManager.RemoveSession(sessionID) {
		return c.JSON(http.StatusNotFound, jsonrpc.NewErrorResponse(nil, jsonrpc.ErrInvalidRequest, "Unknown MCP session", nil))
	}
	logger.Info("MCP session terminated", "session_id", sessionID)
	return c.NoContent(http.StatusNoContent)
}

// readBody reads at most maxBodyBytes. Requests without Content-Length
// get past the BodyLimit middleware, so the cap is enforced here too.
func readBody(c echo.Context) ([]byte, int, error) {
	limited := http.MaxBytesReader(c.Response(), c.Request().Body, maxBodyBytes)
	defer limited.Close()

	body, err := io.ReadAll(limited)
	if err != nil {
		if _, ok := errors.AsType[*http.MaxBytesError](err); ok || errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("request body too large")
		}
		return nil, http.StatusBadRequest, errors.New("failed to read request body")
	}
	return body, http.StatusOK, nil
}

func isSupportedProtocolVersion(version string) bool {
	_, ok := supportedProtocolVersions[version]
	return ok
}

func negotiateProtocolVersion(paramsRaw json.RawMessage) string {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := json.Unmarshal(paramsRaw, &params); err != nil {
		return mcp.ProtocolVersion
	}
	if isSupportedProtocolVersion(params.ProtocolVersion) {
		return params.ProtocolVersion
	}
	return mcp.ProtocolVersion
}
