// Package clock serves get_time.
package clock

import (
	"context"
	"strconv"
	"time"

	"github.com/slighter12/toolbelt-mcp-go/tools/envelope"
	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
)

const (
	FormatISO   = "iso"
	FormatHuman = "human"
	FormatUnix  = "unix"

	humanLayout = "January 02, 2006 at 03:04:05 PM"
)

type Result struct {
	Instant    string `json:"instant"`
	Formatted  string `json:"formatted"`
	FormatType string `json:"format_type"`
	Timezone   string `json:"timezone"`
}

// Tool is get_time. The instant is read once per call so every rendered
// field describes the same moment.
type Tool struct {
	now func() time.Time
}

func NewTool(now func() time.Time) *Tool {
	if now == nil {
		now = time.Now
	}
	return &Tool{now: now}
}

func (t *Tool) Name() string { return "get_time" }

func (t *Tool) Description() string {
	return "Get current time in various formats with structured output"
}

func (t *Tool) Schema() schema.Schema {
	return schema.Schema{
		Title: "Get Time",
		Fields: []schema.Field{{
			Name:        "format",
			Type:        schema.TypeEnum,
			Description: "Time format",
			Default:     FormatISO,
			Enum:        []string{FormatISO, FormatHuman, FormatUnix},
		}},
	}
}

func (t *Tool) OutputSchema() schema.Output {
	return schema.Output{
		Title: "Current Time",
		Fields: []schema.OutputField{
			{Name: "instant", Type: "string", Description: "ISO-8601 UTC"},
			{Name: "formatted", Type: "string"},
			{Name: "format_type", Type: "string"},
			{Name: "timezone", Type: "string"},
		},
	}
}

func (t *Tool) Execute(ctx context.Context, in schema.Values) (any, error) {
	instant := t.now().UTC()
	format := in.String("format")
	return Result{
		Instant:    envelope.Timestamp(instant),
		Formatted:  Render(instant, format),
		FormatType: format,
		Timezone:   "UTC",
	}, nil
}

// Render formats instant in UTC. Unknown formats fall back to iso.
func Render(instant time.Time, format string) string {
	instant = instant.UTC()
	switch format {
	case FormatHuman:
		return instant.Format(humanLayout)
	case FormatUnix:
		return strconv.FormatInt(instant.Unix(), 10)
	default:
		return envelope.Timestamp(instant)
	}
}
