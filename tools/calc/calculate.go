// Package calc holds the pure numeric tools.
package calc

import (
	"context"
	"fmt"
	"math"

	"github.com/slighter12/toolbelt-mcp-go/tools/schema"
	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

const (
	OpAdd      = "add"
	OpSubtract = "subtract"
	OpMultiply = "multiply"
	OpDivide   = "divide"
)

// CalculateResult is the success payload of calculate.
type CalculateResult struct {
	Operation string  `json:"operation"`
	OperandA  float64 `json:"operand_a"`
	OperandB  float64 `json:"operand_b"`
	Result    float64 `json:"result"`
	Formatted string  `json:"formatted"`
}

// CalculateTool applies one arithmetic operator to two operands.
type CalculateTool struct{}

func NewCalculateTool() *CalculateTool {
	return &CalculateTool{}
}

func (t *CalculateTool) Name() string { return "calculate" }

func (t *CalculateTool) Description() string {
	return "Perform arithmetic calculations with type-safe inputs and structured output"
}

func (t *CalculateTool) Schema() schema.Schema {
	return schema.Schema{
		Title: "Calculate",
		Fields: []schema.Field{
			{
				Name:        "operation",
				Type:        schema.TypeEnum,
				Description: "Arithmetic operation",
				Required:    true,
				Enum:        []string{OpAdd, OpSubtract, OpMultiply, OpDivide},
			},
			{Name: "a", Type: schema.TypeNumber, Description: "First number", Required: true},
			{Name: "b", Type: schema.TypeNumber, Description: "Second number", Required: true},
		},
	}
}

func (t *CalculateTool) OutputSchema() schema.Output {
	return schema.Output{
		Title: "Calculation",
		Fields: []schema.OutputField{
			{Name: "operation", Type: "string"},
			{Name: "operand_a", Type: "number"},
			{Name: "operand_b", Type: "number"},
			{Name: "result", Type: "number"},
			{Name: "formatted", Type: "string", Description: "a op b = result"},
		},
	}
}

func (t *CalculateTool) Execute(ctx context.Context, in schema.Values) (any, error) {
	op := in.String("operation")
	a, b := in.Number("a"), in.Number("b")

	result, err := Apply(op, a, b)
	if err != nil {
		return nil, err
	}
	return CalculateResult{
		Operation: op,
		OperandA:  a,
		OperandB:  b,
		Result:    result,
		Formatted: fmt.Sprintf("%s %s %s = %s", types.FormatNumber(a), op, types.FormatNumber(b), types.FormatNumber(result)),
	}, nil
}

// Apply evaluates a op b.
func Apply(op string, a, b float64) (float64, error) {
	var result float64
	switch op {
	case OpAdd:
		result = a + b
	case OpSubtract:
		result = a - b
	case OpMultiply:
		result = a * b
	case OpDivide:
		if b == 0 {
			return 0, types.NewFailure(types.KindDivisionByZero, "cannot divide by zero")
		}
		result = a / b
	default:
		return 0, types.Failuref(types.KindInvalidEnum, "operation must be one of [%s, %s, %s, %s]", OpAdd, OpSubtract, OpMultiply, OpDivide)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, types.Failuref(types.KindDomainViolation, "result of %s is not a finite number", op)
	}
	return result, nil
}
