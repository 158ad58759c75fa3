package clock

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

func call(t *testing.T, tool *Tool, args map[string]any) (Result, error) {
	t.Helper()
	values, err := tool.Schema().Validate(args)
	if err != nil {
		return Result{}, err
	}
	out, err := tool.Execute(context.Background(), values)
	if err != nil {
		return Result{}, err
	}
	return out.(Result), nil
}

func TestTool_Formats(t *testing.T) {
	fixed := time.Date(2025, 3, 9, 15, 4, 5, 0, time.FixedZone("PST", -8*3600))
	tool := NewTool(func() time.Time { return fixed })

	cases := map[string]string{
		"iso":   "2025-03-09T23:04:05Z",
		"human": "March 09, 2025 at 11:04:05 PM",
		"unix":  strconv.FormatInt(fixed.Unix(), 10),
	}
	for format, want := range cases {
		res, err := call(t, tool, map[string]any{"format": format})
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if res.Formatted != want || res.FormatType != format || res.Timezone != "UTC" {
			t.Fatalf("%s: unexpected result %+v", format, res)
		}
		if res.Instant != "2025-03-09T23:04:05Z" {
			t.Fatalf("%s: unexpected instant %q", format, res.Instant)
		}
	}
}

func TestTool_DefaultsToISO(t *testing.T) {
	res, err := call(t, NewTool(nil), map[string]any{})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if res.FormatType != FormatISO {
		t.Fatalf("expected iso default, got %q", res.FormatType)
	}
	if _, err := time.Parse(time.RFC3339, res.Formatted); err != nil {
		t.Fatalf("iso output does not parse: %v", err)
	}
}

func TestTool_UnixMatchesInstant(t *testing.T) {
	res, err := call(t, NewTool(nil), map[string]any{"format": "unix"})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	seconds, err := strconv.ParseInt(res.Formatted, 10, 64)
	if err != nil {
		t.Fatalf("unix output is not an integer: %q", res.Formatted)
	}
	instant, err := time.Parse(time.RFC3339, res.Instant)
	if err != nil {
		t.Fatalf("parse instant: %v", err)
	}
	if diff := seconds - instant.Unix(); diff < -1 || diff > 1 {
		t.Fatalf("unix %d is %ds away from instant %s", seconds, diff, res.Instant)
	}
}

func TestTool_RejectsUnknownFormat(t *testing.T) {
	_, err := call(t, NewTool(nil), map[string]any{"format": "rfc822"})
	violations, ok := err.(schema.Violations)
	if !ok || violations.Failure().Kind != types.KindInvalidEnum {
		t.Fatalf("expected invalid_enum, got %v", err)
	}
}
