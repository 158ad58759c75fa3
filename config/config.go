package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/mcp"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable_http"

	defaultConfigFile = "config/mcp_config.yaml"
)

// Config represents the MCP server configuration
type Config struct {
	Name        string      `json:"name" yaml:"name"`
	Version     string      `json:"version" yaml:"version"`
	Description string      `json:"description" yaml:"description"`
	Server      Server      `json:"server" yaml:"server"`
	Transports  []Transport `json:"transports" yaml:"transports"`
	Logging     Logging     `json:"logging" yaml:"logging"`
	Storage     Storage     `json:"storage" yaml:"storage"`
}

// Server represents server configuration
type Server struct {
	Host  string `json:"host" yaml:"host"`
	Port  int    `json:"port" yaml:"port"`
	Debug bool   `json:"debug" yaml:"debug"`
	// SessionIdleSeconds is how long an HTTP MCP session may stay unused.
	SessionIdleSeconds int `json:"session_idle_seconds" yaml:"session_idle_seconds"`
}

// Transport represents a transport configuration
type Transport struct {
	Type    string            `json:"type" yaml:"type"`
	Enabled bool              `json:"enabled" yaml:"enabled"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Logging represents logging configuration. An empty Path logs to stderr only.
type Logging struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	Path   string `json:"path" yaml:"path"`
}

// Storage configures the directory shared by save_note and read_file.
type Storage struct {
	Root         string `json:"root" yaml:"root"`
	MaxReadBytes int64  `json:"max_read_bytes" yaml:"max_read_bytes"`
	Watch        bool   `json:"watch" yaml:"watch"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Name:        mcp.ServerName,
		Version:     mcp.ServerVersion,
		Description: "Model Context Protocol server exposing schema-validated utility tools",
		Server: Server{
			Host:               "localhost",
			Port:               8080,
			Debug:              false,
			SessionIdleSeconds: 1800,
		},
		Transports: []Transport{
			{
				Type:    TransportStdio,
				Enabled: false,
			},
			{
				Type:    TransportStreamableHTTP,
				Enabled: true,
				URL:     "http://localhost:8080/mcp",
				Headers: map[string]string{
					"Accept":               "application/json",
					"Content-Type":         "application/json",
					"MCP-Protocol-Version": mcp.ProtocolVersion,
				},
			},
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Storage: Storage{
			Root:         "notes",
			MaxReadBytes: 1 << 20,
			Watch:        true,
		},
	}
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() (*Config, error) {
	cfg := NewConfig()
	applyEnvOverrides(cfg)
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads the configuration from a .json, .yaml or .yml file.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := unmarshal(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Environment wins over the file.
	applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load reads path when given. Otherwise it uses the resolved default path if
// that file exists, and falls back to FromEnv.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) != "" {
		return LoadConfig(path)
	}
	resolved, err := ResolveConfigPath()
	if err == nil {
		if _, statErr := os.Stat(resolved); statErr == nil {
			return LoadConfig(resolved)
		}
	}
	return FromEnv()
}

// SaveConfig saves the configuration to a file
func SaveConfig(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := marshal(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func unmarshal(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

func marshal(path string, cfg *Config) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(cfg)
	}
	return json.MarshalIndent(cfg, "", "  ")
}

func applyEnvOverrides(cfg *Config) {
	// PORT is what hosting platforms inject; MCP_PORT is more specific.
	for _, key := range []string{"PORT", "MCP_PORT"} {
		if portStr := os.Getenv(key); portStr != "" {
			if port, err := strconv.Atoi(portStr); err == nil {
				cfg.Server.Port = port
			} else {
				logger.Warn("Ignoring invalid environment value", "key", key, "value", portStr, "error", err)
			}
		}
	}

	if host := os.Getenv("MCP_HOST"); host != "" {
		cfg.Server.Host = host
	}

	envBool("MCP_DEBUG", &cfg.Server.Debug)

	if logLevel := os.Getenv("MCP_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("MCP_LOG_FORMAT"); logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	if logPath := os.Getenv("MCP_LOG_PATH"); logPath != "" {
		cfg.Logging.Path = logPath
	}

	if root := os.Getenv("MCP_STORAGE_ROOT"); root != "" {
		cfg.Storage.Root = root
	}

	envBool("MCP_STORAGE_WATCH", &cfg.Storage.Watch)

	if raw := os.Getenv("MCP_STORAGE_MAX_READ_BYTES"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.Storage.MaxReadBytes = parsed
		} else {
			logger.Warn("Ignoring invalid environment value", "key", "MCP_STORAGE_MAX_READ_BYTES", "value", raw, "error", err)
		}
	}
}

func envBool(key string, target *bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("Ignoring invalid environment value", "key", key, "value", raw, "error", err)
		return
	}
	*target = parsed
}

// Normalize canonicalizes config values so downstream validation and runtime
// logic operate on stable representations.
func (c *Config) Normalize() {
	c.Server.Host = strings.TrimSpace(c.Server.Host)
	if c.Server.SessionIdleSeconds == 0 {
		c.Server.SessionIdleSeconds = 1800
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Path = strings.TrimSpace(c.Logging.Path)
	c.Storage.Root = strings.TrimSpace(c.Storage.Root)
	if c.Storage.Root == "" {
		c.Storage.Root = "."
	}
	if c.Storage.MaxReadBytes == 0 {
		c.Storage.MaxReadBytes = 1 << 20
	}
	for i := range c.Transports {
		c.Transports[i].Type = strings.ToLower(strings.TrimSpace(c.Transports[i].Type))
		c.Transports[i].URL = strings.TrimSpace(c.Transports[i].URL)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid port number")
	}

	if c.Server.Host == "" {
		return errors.New("host cannot be empty")
	}

	if c.Server.SessionIdleSeconds < 0 {
		return errors.New("session idle seconds cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}

	if c.Storage.MaxReadBytes < 0 {
		return errors.New("storage max read bytes cannot be negative")
	}

	if len(c.Transports) == 0 {
		return errors.New("at least one transport must be enabled")
	}

	validTransportTypes := map[string]bool{
		TransportStdio:          true,
		TransportStreamableHTTP: true,
	}

	enabledTransports := 0
	for _, t := range c.Transports {
		if !validTransportTypes[t.Type] {
			return fmt.Errorf("invalid transport type: %s", t.Type)
		}
		if t.Enabled {
			enabledTransports++
		}
	}

	if enabledTransports == 0 {
		return errors.New("at least one transport must be enabled")
	}

	return nil
}

// TransportEnabled reports whether a transport of the given type is on.
func (c *Config) TransportEnabled(kind string) bool {
	for _, t := range c.Transports {
		if t.Type == kind && t.Enabled {
			return true
		}
	}
	return false
}

// EnableOnly turns on exactly the listed transport types.
func (c *Config) EnableOnly(kinds ...string) {
	want := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		want[kind] = true
	}
	for i := range c.Transports {
		c.Transports[i].Enabled = want[c.Transports[i].Type]
		delete(want, c.Transports[i].Type)
	}
	for kind := range want {
		c.Transports = append(c.Transports, Transport{Type: kind, Enabled: true})
	}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ResolveConfigPath returns the path that should be used for configuration.
func ResolveConfigPath() (string, error) {
	if path := strings.TrimSpace(os.Getenv("MCP_CONFIG_PATH")); path != "" {
		return path, nil
	}

	for _, candidate := range []string{defaultConfigFile, "config/mcp_config.yml", "config/mcp_config.json"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".toolbelt-mcp", "config", "mcp_config.yaml"), nil
}

// EnsureDefaultConfig creates a default config file if one does not exist.
func EnsureDefaultConfig(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("config path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}

	return SaveConfig(NewConfig(), path)
}
