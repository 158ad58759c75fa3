// Package weather serves deterministic mock weather reports.
package weather

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/slighter12/toolbelt-mcp-go/tools/calc"
	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

var conditions = []string{
	"Sunny",
	"Partly Cloudy",
	"Cloudy",
	"Overcast",
	"Light Rain",
	"Rain",
	"Thunderstorms",
	"Fog",
	"Windy",
	"Snow",
}

type Report struct {
	City               string  `json:"city"`
	Temperature        string  `json:"temperature"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	Condition          string  `json:"condition"`
	Humidity           string  `json:"humidity"`
	Wind               string  `json:"wind"`
}

// Tool is get_weather. The same city, ignoring case and surrounding
// whitespace, always yields the same report.
type Tool struct{}

func NewTool() *Tool {
	return &Tool{}
}

func (t *Tool) Name() string { return "get_weather" }

func (t *Tool) Description() string {
	return "Get weather information with validated city input and structured JSON output"
}

func (t *Tool) Schema() schema.Schema {
	return schema.Schema{
		Title: "Get Weather",
		Fields: []schema.Field{{
			Name:        "city",
			Type:        schema.TypeString,
			Description: "City name",
			Required:    true,
			Trim:        true,
			MinLength:   1,
			MaxLength:   100,
		}},
	}
}

func (t *Tool) OutputSchema() schema.Output {
	return schema.Output{
		Title: "Weather Report",
		Fields: []schema.OutputField{
			{Name: "city", Type: "string"},
			{Name: "temperature", Type: "string", Description: "Fahrenheit, e.g. 72°F"},
			{Name: "temperature_celsius", Type: "number"},
			{Name: "condition", Type: "string"},
			{Name: "humidity", Type: "string", Description: "percent, e.g. 45%"},
			{Name: "wind", Type: "string", Description: "e.g. 10 mph"},
		},
	}
}

func (t *Tool) Execute(ctx context.Context, in schema.Values) (any, error) {
	return Synthesize(in.String("city")), nil
}

// Synthesize derives a report from the normalized city name.
func Synthesize(city string) Report {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(city))))
	seed := h.Sum64()

	fahrenheit := 20 + int(seed%80)
	seed /= 80
	condition := conditions[seed%uint64(len(conditions))]
	seed /= uint64(len(conditions))
	humidity := 20 + int(seed%70)
	seed /= 70
	wind := int(seed % 25)

	return Report{
		City:               city,
		Temperature:        fmt.Sprintf("%d°F", fahrenheit),
		TemperatureCelsius: types.Round2(calc.FahrenheitToCelsius(float64(fahrenheit))),
		Condition:          condition,
		Humidity:           fmt.Sprintf("%d%%", humidity),
		Wind:               fmt.Sprintf("%d mph", wind),
	}
}
