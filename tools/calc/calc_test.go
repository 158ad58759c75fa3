package calc

import (
	"context"
	"math"
	"testing"
	"testing/quick"

	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

func run(t *testing.T, tool interface {
	Schema() schema.Schema
	Execute(context.Context, schema.Values) (any, error)
}, args map[string]any) (any, error) {
	t.Helper()
	values, err := tool.Schema().Validate(args)
	if err != nil {
		return nil, err
	}
	return tool.Execute(context.Background(), values)
}

func TestCalculateTool_Operations(t *testing.T) {
	tool := NewCalculateTool()
	cases := []struct {
		op        string
		a, b      float64
		result    float64
		formatted string
	}{
		{OpAdd, 2, 3, 5, "2 add 3 = 5"},
		{OpSubtract, 2, 3, -1, "2 subtract 3 = -1"},
		{OpMultiply, 5, 3, 15, "5 multiply 3 = 15"},
		{OpDivide, 5, 2, 2.5, "5 divide 2 = 2.5"},
	}
	for _, tc := range cases {
		out, err := run(t, tool, map[string]any{"operation": tc.op, "a": tc.a, "b": tc.b})
		if err != nil {
			t.Fatalf("%s: %v", tc.op, err)
		}
		res := out.(CalculateResult)
		if res.Result != tc.result || res.Formatted != tc.formatted {
			t.Fatalf("%s: got %+v", tc.op, res)
		}
		if res.OperandA != tc.a || res.OperandB != tc.b || res.Operation != tc.op {
			t.Fatalf("%s: operands not echoed: %+v", tc.op, res)
		}
	}
}

func TestCalculateTool_DivideByZero(t *testing.T) {
	check := func(a float64) bool {
		_, err := run(t, NewCalculateTool(), map[string]any{"operation": "divide", "a": a, "b": 0})
		failure, ok := types.AsFailure(err)
		return ok && failure.Kind == types.KindDivisionByZero
	}
	if err := quick.Check(check, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCalculateTool_ExactArithmetic(t *testing.T) {
	check := func(a, b float64) bool {
		sum, err1 := Apply(OpAdd, a, b)
		diff, err2 := Apply(OpSubtract, a, b)
		prod, err3 := Apply(OpMultiply, a, b)
		if err1 != nil || err2 != nil || err3 != nil {
			// Only overflow may fail, and it must be classified.
			for _, err := range []error{err1, err2, err3} {
				if err == nil {
					continue
				}
				if failure, ok := types.AsFailure(err); !ok || failure.Kind != types.KindDomainViolation {
					return false
				}
			}
			return true
		}
		return sum == a+b && diff == a-b && prod == a*b
	}
	if err := quick.Check(check, nil); err != nil {
		t.Fatal(err)
	}
}

func TestCalculateTool_Overflow(t *testing.T) {
	_, err := run(t, NewCalculateTool(), map[string]any{"operation": "multiply", "a": math.MaxFloat64, "b": 10})
	failure, ok := types.AsFailure(err)
	if !ok || failure.Kind != types.KindDomainViolation {
		t.Fatalf("expected domain_violation, got %v", err)
	}
}

func TestCalculateTool_InvalidOperation(t *testing.T) {
	_, err := run(t, NewCalculateTool(), map[string]any{"operation": "modulo", "a": 1, "b": 2})
	var violations schema.Violations
	if v, ok := err.(schema.Violations); ok {
		violations = v
	}
	if len(violations) != 1 || violations[0].Kind != types.KindInvalidEnum {
		t.Fatalf("expected invalid_enum, got %v", err)
	}
}

func TestConvertTemperatureTool(t *testing.T) {
	tool := NewConvertTemperatureTool()

	out, err := run(t, tool, map[string]any{"temperature_fahrenheit": 72})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	res := out.(TemperatureResult)
	if res.CelsiusRounded != 22.22 {
		t.Fatalf("expected 22.22, got %v", res.CelsiusRounded)
	}
	if res.Formatted != "72°F = 22.22°C" {
		t.Fatalf("unexpected formatted %q", res.Formatted)
	}

	out, err = run(t, tool, map[string]any{"temperature_fahrenheit": AbsoluteZeroFahrenheit})
	if err != nil {
		t.Fatalf("absolute zero must be accepted: %v", err)
	}
	if got := out.(TemperatureResult).CelsiusRounded; got != -273.15 {
		t.Fatalf("expected -273.15, got %v", got)
	}
}

func TestConvertTemperatureTool_BelowAbsoluteZero(t *testing.T) {
	_, err := run(t, NewConvertTemperatureTool(), map[string]any{"temperature_fahrenheit": -500})
	violations, ok := err.(schema.Violations)
	if !ok || violations.Failure().Kind != types.KindDomainViolation {
		t.Fatalf("expected domain_violation, got %v", err)
	}
}

func TestConvertTemperatureTool_Precision(t *testing.T) {
	tool := NewConvertTemperatureTool()
	check := func(raw float64) bool {
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return true
		}
		f := math.Mod(math.Abs(raw), 1e6) + AbsoluteZeroFahrenheit
		out, err := run(t, tool, map[string]any{"temperature_fahrenheit": f})
		if err != nil {
			return false
		}
		res := out.(TemperatureResult)
		return math.Abs(res.Celsius-(f-32)*5/9) < 1e-6
	}
	if err := quick.Check(check, &quick.Config{MaxCount: 500}); err != nil {
		t.Fatal(err)
	}
}
