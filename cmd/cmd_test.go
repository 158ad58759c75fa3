package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/slighter12/toolbelt-mcp-go/config"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MCP_CONFIG_PATH", "")
	t.Setenv("MCP_STORAGE_WATCH", "false")
	configPath = ""
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(`{"city": "Paris"}`))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCallPrintsEnvelope(t *testing.T) {
	isolate(t)

	out, err := run(t, "call", "calculate", `{"operation":"add","a":2,"b":2}`)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	var env map[string]any
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if env["success"] != true || env["result"] != float64(4) {
		t.Fatalf("unexpected envelope %v", env)
	}
}

func TestCallReadsStdinAndReportsFailures(t *testing.T) {
	isolate(t)

	out, err := run(t, "call", "get_weather", "-")
	if err != nil || !strings.Contains(out, `"city": "Paris"`) {
		t.Fatalf("stdin arguments: %v %s", err, out)
	}

	out, err = run(t, "call", "calculate", `{"operation":"divide","a":1,"b":0}`)
	if !errors.Is(err, errToolFailed) {
		t.Fatalf("expected errToolFailed, got %v", err)
	}
	if !strings.Contains(out, "division_by_zero") {
		t.Fatalf("failure envelope must still be printed: %s", out)
	}
}

func TestToolsPrintsRegistry(t *testing.T) {
	isolate(t)

	out, err := run(t, "tools")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	var payload struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Tools) != 6 || payload.Tools[0].Name != "calculate" || payload.Tools[5].Name != "get_time" {
		t.Fatalf("unexpected registry %+v", payload.Tools)
	}
}

func TestApplyServeFlags(t *testing.T) {
	defer func() { serveStdio, serveHTTP, servePort = false, false, 0 }()

	cfg := config.NewConfig()
	serveStdio, servePort = true, 9999
	applyServeFlags(cfg)
	if !cfg.TransportEnabled(config.TransportStdio) || cfg.TransportEnabled(config.TransportStreamableHTTP) {
		t.Fatalf("expected stdio only, got %+v", cfg.Transports)
	}
	if cfg.Server.Port != 9999 {
		t.Fatalf("expected port override, got %d", cfg.Server.Port)
	}

	cfg = config.NewConfig()
	serveStdio, serveHTTP, servePort = true, true, 0
	applyServeFlags(cfg)
	if !cfg.TransportEnabled(config.TransportStdio) || !cfg.TransportEnabled(config.TransportStreamableHTTP) {
		t.Fatalf("expected both transports, got %+v", cfg.Transports)
	}
}

func TestCallPayload(t *testing.T) {
	payload, err := callPayload(strings.NewReader("ignored"), nil)
	if err != nil || payload != nil {
		t.Fatalf("no argument must mean empty payload, got %q %v", payload, err)
	}
	payload, _ = callPayload(strings.NewReader(`{"a":1}`), []string{"-"})
	if string(payload) != `{"a":1}` {
		t.Fatalf("expected stdin payload, got %q", payload)
	}
}
