package calc

import (
	"context"
	"fmt"

	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

// AbsoluteZeroFahrenheit is the lowest accepted input.
const AbsoluteZeroFahrenheit = -459.67

type TemperatureResult struct {
	Fahrenheit     float64 `json:"fahrenheit"`
	Celsius        float64 `json:"celsius"`
	CelsiusRounded float64 `json:"celsius_rounded"`
	Formatted      string  `json:"formatted"`
}

// ConvertTemperatureTool converts Fahrenheit to Celsius.
type ConvertTemperatureTool struct{}

func NewConvertTemperatureTool() *ConvertTemperatureTool {
	return &ConvertTemperatureTool{}
}

func (t *ConvertTemperatureTool) Name() string { return "convert_temperature" }

func (t *ConvertTemperatureTool) Description() string {
	return "Convert Fahrenheit to Celsius with validation and structured output"
}

func (t *ConvertTemperatureTool) Schema() schema.Schema {
	return schema.Schema{
		Title: "Convert Temperature",
		Fields: []schema.Field{{
			Name:          "temperature_fahrenheit",
			Type:          schema.TypeNumber,
			Description:   "Temperature in Fahrenheit",
			Required:      true,
			Minimum:       schema.Bound(AbsoluteZeroFahrenheit),
			DomainMessage: "temperature cannot be below absolute zero (-459.67°F)",
		}},
	}
}

func (t *ConvertTemperatureTool) OutputSchema() schema.Output {
	return schema.Output{
		Title: "Temperature Conversion",
		Fields: []schema.OutputField{
			{Name: "fahrenheit", Type: "number"},
			{Name: "celsius", Type: "number", Description: "exact conversion"},
			{Name: "celsius_rounded", Type: "number", Description: "celsius rounded to 2 decimals"},
			{Name: "formatted", Type: "string"},
		},
	}
}

func (t *ConvertTemperatureTool) Execute(ctx context.Context, in schema.Values) (any, error) {
	f := in.Number("temperature_fahrenheit")
	c := FahrenheitToCelsius(f)
	return TemperatureResult{
		Fahrenheit:     f,
		Celsius:        c,
		CelsiusRounded: types.Round2(c),
		Formatted:      fmt.Sprintf("%s°F = %.2f°C", types.FormatNumber(f), c),
	}, nil
}

func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}
