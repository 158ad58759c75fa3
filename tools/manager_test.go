package tools

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/slighter12/toolbelt-mcp-go/logger"
	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
	"github.com/slighter12/toolbelt-mcp-go/tools/notes"
	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "tools-test-logs")
	if err == nil {
		logger.Init(logger.GetLevelFromString("debug"), logger.FormatJSON, filepath.Join(dir, "tools_test.log"))
	}
	code := m.Run()
	logger.Default().Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

// stubTool implements Tool for testing
type stubTool struct {
	name    string
	fields  []schema.Field
	execute func(ctx context.Context, in schema.Values) (any, error)
}

func (t *stubTool) Name() string                { return t.name }
func (t *stubTool) Description() string         { return "stub " + t.name }
func (t *stubTool) Schema() schema.Schema       { return schema.Schema{Fields: t.fields} }
func (t *stubTool) OutputSchema() schema.Output { return schema.Output{} }
func (t *stubTool) Execute(ctx context.Context, in schema.Values) (any, error) {
	return t.execute(ctx, in)
}

func newTestManager(t *testing.T) (*Manager, *notes.FileStorage) {
	t.Helper()
	storage, err := notes.NewFileStorage(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	manager, err := NewDefaultManager(Dependencies{Storage: storage, Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return manager, storage
}

func TestManager_OrderAndDefinitions(t *testing.T) {
	manager, _ := newTestManager(t)

	want := []string{"calculate", "get_weather", "save_note", "convert_temperature", "read_file", "get_time"}
	if got := manager.Names(); !slices.Equal(got, want) {
		t.Fatalf("unexpected order %v", got)
	}

	defs := manager.Definitions()
	if len(defs) != len(want) {
		t.Fatalf("expected %d definitions, got %d", len(want), len(defs))
	}
	for i, def := range defs {
		if def.Name != want[i] || def.Description == "" {
			t.Fatalf("definition %d malformed: %+v", i, def)
		}
		if def.InputSchema.Type != "object" || def.OutputSchema == nil {
			t.Fatalf("%s: missing schemas", def.Name)
		}
	}
}

func TestNewManager_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	ok := func(context.Context, schema.Values) (any, error) { return map[string]any{}, nil }

	_, err := NewManager([]Tool{&stubTool{name: "a", execute: ok}, &stubTool{name: "a", execute: ok}})
	if !errors.Is(err, ErrDuplicateTool) {
		t.Fatalf("expected ErrDuplicateTool, got %v", err)
	}
	if _, err := NewManager([]Tool{&stubTool{name: "", execute: ok}}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestManager_UnknownTool(t *testing.T) {
	manager, _ := newTestManager(t)

	env := manager.Invoke(context.Background(), "launch_rockets", map[string]any{})
	if env.OK() || env.ErrorType() != types.KindUnknownTool {
		t.Fatalf("expected unknown_tool, got %v", env)
	}
	if env[envelope.KeyTimestamp] != "2025-01-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp %v", env[envelope.KeyTimestamp])
	}

	if _, err := manager.GetTool("launch_rockets"); !IsToolNotFound(err) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestManager_RecoversPanics(t *testing.T) {
	manager, err := NewManager([]Tool{&stubTool{
		name: "boom",
		execute: func(context.Context, schema.Values) (any, error) {
			panic("kaboom")
		},
	}}, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	env := manager.Invoke(context.Background(), "boom", nil)
	if env.OK() || env.ErrorType() != types.KindIOError {
		t.Fatalf("expected io_error, got %v", env)
	}
	if env.ErrorMessage() == "kaboom" {
		t.Fatal("panic value must not leak")
	}
}

func TestManager_InvokeJSONPayloads(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	for _, raw := range []string{"", "null", "  {}  "} {
		env := manager.InvokeJSON(ctx, "get_time", json.RawMessage(raw))
		if !env.OK() {
			t.Fatalf("%q: expected success, got %v", raw, env)
		}
	}

	for _, raw := range []string{"[1,2]", `"text"`, "42", "{broken"} {
		env := manager.InvokeJSON(ctx, "get_time", json.RawMessage(raw))
		if env.ErrorType() != types.KindDomainViolation {
			t.Fatalf("%q: expected domain_violation, got %v", raw, env)
		}
	}

	env := manager.InvokeJSON(ctx, "nope", json.RawMessage("[]"))
	if env.ErrorType() != types.KindUnknownTool {
		t.Fatalf("unknown tool must win over payload shape, got %v", env)
	}
}

func TestManager_ValidationFailures(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx := context.Background()

	cases := []struct {
		tool string
		args map[string]any
		want types.Kind
	}{
		{"calculate", map[string]any{"operation": "divide", "a": 1, "b": 0}, types.KindDivisionByZero},
		{"calculate", map[string]any{"operation": "pow", "a": 1, "b": 2}, types.KindInvalidEnum},
		{"calculate", map[string]any{}, types.KindMissingField},
		{"get_weather", map[string]any{"city": "   "}, types.KindLengthViolation},
		{"save_note", map[string]any{"title": "!!!", "content": "x"}, types.KindLengthViolation},
		{"save_note", map[string]any{"title": "???", "content": "x"}, types.KindLengthViolation},
		{"convert_temperature", map[string]any{"temperature_fahrenheit": -500}, types.KindDomainViolation},
		{"read_file", map[string]any{"filename": "../etc/passwd"}, types.KindPathTraversal},
		{"read_file", map[string]any{"filename": "absent.txt"}, types.KindNotFound},
		{"get_time", map[string]any{"format": "epoch"}, types.KindInvalidEnum},
	}
	for _, tc := range cases {
		env := manager.Invoke(ctx, tc.tool, tc.args)
		if env.OK() || env.ErrorType() != tc.want {
			t.Fatalf("%s %v: expected %s, got %v", tc.tool, tc.args, tc.want, env)
		}
		if len(env) != 4 {
			t.Fatalf("%s: failure envelope must have exactly 4 keys, got %v", tc.tool, env)
		}
	}
}

func TestManager_SuccessKeySetMatchesOutputSchema(t *testing.T) {
	manager, storage := newTestManager(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(storage.Root(), "readme.txt"), []byte("hello\nworld\n"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	calls := map[string]map[string]any{
		"calculate":           {"operation": "multiply", "a": 5, "b": 3},
		"get_weather":         {"city": "Paris"},
		"save_note":           {"title": "Meeting Notes", "content": "Discussed Q1 goals"},
		"convert_temperature": {"temperature_fahrenheit": 72},
		"read_file":           {"filename": "readme.txt"},
		"get_time":            {"format": "human"},
	}
	for _, tool := range manager.ListTools() {
		args, ok := calls[tool.Name()]
		if !ok {
			t.Fatalf("no fixture call for %s", tool.Name())
		}
		env := manager.Invoke(ctx, tool.Name(), args)
		if !env.OK() {
			t.Fatalf("%s: expected success, got %v", tool.Name(), env)
		}

		want := append(tool.OutputSchema().Names(), envelope.KeySuccess, envelope.KeyTimestamp)
		got := make([]string, 0, len(env))
		for key := range env {
			got = append(got, key)
		}
		sort.Strings(want)
		sort.Strings(got)
		if !slices.Equal(got, want) {
			t.Fatalf("%s: key set %v, want %v", tool.Name(), got, want)
		}
	}
}

func TestManager_SaveNoteEnvelope(t *testing.T) {
	manager, _ := newTestManager(t)

	env := manager.Invoke(context.Background(), "save_note", map[string]any{
		"title":   "Meeting Notes",
		"content": "Discussed Q1 goals",
		"tags":    []any{"work"},
	})
	if !env.OK() {
		t.Fatalf("expected success, got %v", env)
	}
	if env["filename"] != "note_Meeting_Notes.txt" || env["content_length"] != float64(19) {
		t.Fatalf("unexpected envelope %v", env)
	}
	tags, ok := env["tags"].([]any)
	if !ok || len(tags) != 1 || tags[0] != "work" {
		t.Fatalf("unexpected tags %#v", env["tags"])
	}
}

func TestManager_ConcurrentInvocations(t *testing.T) {
	manager, _ := newTestManager(t)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			env := manager.Invoke(context.Background(), "calculate", map[string]any{"operation": "add", "a": i, "b": 1})
			if !env.OK() || env["result"] != float64(i+1) {
				errs <- "unexpected envelope"
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
