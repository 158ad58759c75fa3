package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/slighter12/toolbelt-mcp-go/config"
	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/tools"
)

const (
	sessionSweepInterval = time.Minute
	shutdownTimeout      = 10 * time.Second
)

type Server struct {
	toolManager    *tools.Manager
	sessionManager *SessionManager
	config         *config.Config
	echo           *echo.Echo
	now            func() time.Time
}

func NewServer(cfg *config.Config, toolManager *tools.Manager) *Server {
	idle := time.Duration(cfg.Server.SessionIdleSeconds) * time.Second
	s := &Server{
		toolManager:    toolManager,
		sessionManager: NewSessionManager(idle, time.Now),
		config:         cfg,
		echo:           echo.New(),
		now:            time.Now,
	}
	s.setupEcho()
	return s
}

func (s *Server) setupEcho() {
	// stdout belongs to the stdio transport when both run.
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Logger.SetOutput(os.Stderr)
	s.echo.Debug = s.config.Server.Debug

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				logger.WarnContext(c.Request().Context(), "HTTP request failed", append(args, "error", v.Error)...)
				return nil
			}
			logger.DebugContext(c.Request().Context(), "HTTP request", args...)
			return nil
		},
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.BodyLimit("1M"))
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, headerSessionID, headerProtocolVersion},
		ExposeHeaders: []string{headerSessionID},
	}))
	RegisterRoutes(s.echo, s)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts the listener down
// gracefully. Idle sessions are swept while the server runs.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.sessionManager.Run(gctx, sessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		addr := s.config.Addr()
		logger.Info("Streamable HTTP server listening", "address", addr, "endpoint", "/mcp")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func (s *Server) GetToolManager() *tools.Manager {
	return s.toolManager
}

func (s *Server) GetSessionManager() *SessionManager {
	return s.sessionManager
}

func (s *Server) GetConfig() *config.Config {
	return s.config
}
