package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

// Values is a validated, constraint-satisfying input bundle. Strings and
// enums are string, numbers float64, arrays []string.
type Values map[string]any

func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

func (v Values) Number(name string) float64 {
	n, _ := v[name].(float64)
	return n
}

func (v Values) Strings(name string) []string {
	items, _ := v[name].([]string)
	return items
}

// Has reports whether name was supplied or defaulted.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Violation is one broken constraint.
type Violation struct {
	Field   string
	Kind    types.Kind
	Message string
}

// Violations is the failing ValidationResult; it is returned as an error.
type Violations []Violation

func (v Violations) Error() string {
	messages := make([]string, 0, len(v))
	for _, violation := range v {
		messages = append(messages, violation.Message)
	}
	return strings.Join(messages, "; ")
}

// Failure folds the violations into a single taxonomy failure keyed by the
// first violation in declaration order.
func (v Violations) Failure() *types.Failure {
	if len(v) == 0 {
		return nil
	}
	return types.NewFailure(v[0].Kind, v.Error())
}

// Validate checks raw against every field in declaration order. Each field
// stops at its first violation; all fields are always visited.
func (s Schema) Validate(raw map[string]any) (Values, error) {
	values := make(Values, len(s.Fields))
	var violations Violations

	for _, field := range s.Fields {
		value, present := raw[field.Name]
		if !present || value == nil {
			if field.Required {
				violations = append(violations, Violation{
					Field:   field.Name,
					Kind:    types.KindMissingField,
					Message: fmt.Sprintf("%s: field is required", field.Name),
				})
				continue
			}
			if field.Default != nil {
				values[field.Name] = field.Default
			}
			continue
		}

		coerced, violation := field.check(value)
		if violation != nil {
			violations = append(violations, *violation)
			continue
		}
		values[field.Name] = coerced
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return values, nil
}

func (f Field) check(value any) (any, *Violation) {
	switch f.Type {
	case TypeString:
		return f.checkString(value)
	case TypeNumber:
		return f.checkNumber(value)
	case TypeEnum:
		return f.checkEnum(value)
	case TypeArray:
		return f.checkArray(value)
	default:
		return nil, f.violation(types.KindDomainViolation, "unsupported field type %q", f.Type)
	}
}

func (f Field) checkString(value any) (any, *Violation) {
	s, ok := value.(string)
	if !ok {
		return nil, f.violation(types.KindDomainViolation, "must be a string")
	}
	trimmed := strings.TrimSpace(s)
	length := utf8.RuneCountInString(trimmed)
	if length < f.MinLength {
		return nil, f.violation(types.KindLengthViolation, "must be at least %d characters", f.MinLength)
	}
	if f.MaxLength > 0 && length > f.MaxLength {
		return nil, f.violation(types.KindLengthViolation, "must be at most %d characters", f.MaxLength)
	}
	if f.Clean != nil {
		cleaned := f.Clean(trimmed)
		if cleaned == "" && f.MinLength > 0 {
			return nil, f.violation(types.KindLengthViolation, "must keep at least one character once unsupported characters are removed")
		}
		return cleaned, nil
	}
	if f.Trim {
		return trimmed, nil
	}
	return s, nil
}

func (f Field) checkNumber(value any) (any, *Violation) {
	n, ok := toFloat(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, f.violation(types.KindDomainViolation, "must be a finite number")
	}
	if f.Minimum != nil && n < *f.Minimum {
		if f.DomainMessage != "" {
			return nil, f.violation(types.KindDomainViolation, "%s", f.DomainMessage)
		}
		return nil, f.violation(types.KindDomainViolation, "must be at least %v", *f.Minimum)
	}
	return n, nil
}

func (f Field) checkEnum(value any) (any, *Violation) {
	s, ok := value.(string)
	if ok {
		s = strings.TrimSpace(s)
		if slices.Contains(f.Enum, s) {
			return s, nil
		}
	}
	return nil, f.violation(types.KindInvalidEnum, "must be one of [%s]", strings.Join(f.Enum, ", "))
}

func (f Field) checkArray(value any) (any, *Violation) {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []string:
		items = make([]any, 0, len(v))
		for _, s := range v {
			items = append(items, s)
		}
	default:
		return nil, f.violation(types.KindDomainViolation, "must be an array of strings")
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, f.violation(types.KindDomainViolation, "element %d must be a string", i)
		}
		s = strings.TrimSpace(s)
		if f.Clean != nil {
			s = f.Clean(s)
		}
		if s == "" {
			return nil, f.violation(types.KindLengthViolation, "element %d must not be empty", i)
		}
		out = append(out, s)
	}
	return out, nil
}

func (f Field) violation(kind types.Kind, format string, args ...any) *Violation {
	return &Violation{
		Field:   f.Name,
		Kind:    kind,
		Message: f.Name + ": " + fmt.Sprintf(format, args...),
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		return 0, false
	}
}
