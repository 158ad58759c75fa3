// Package schema holds declarative tool input contracts and the generic
// validator that enforces them before any tool logic runs.
package schema

import (
	"github.com/slighter12/toolbelt-mcp-go/mcp"
)

// Type is the semantic type of a field.
type Type string

const (
	TypeString Type = "string"
	TypeNumber Type = "number"
	TypeEnum   Type = "enum"
	TypeArray  Type = "array"
)

// Field describes one input field and its constraints.
type Field struct {
	Name        string
	Type        Type
	Description string
	Required    bool
	Default     any

	// Trim hands the whitespace-trimmed value to the handler. Length checks
	// always use the trimmed value.
	Trim      bool
	MinLength int
	MaxLength int // zero means unbounded
	// Clean rewrites a string, or each array element, after trimming and
	// length checks. A required string that cleans down to nothing is a
	// length violation.
	Clean func(string) string

	// Minimum is an inclusive lower bound for number fields.
	Minimum       *float64
	DomainMessage string

	Enum []string
}

// Schema is an ordered set of fields.
type Schema struct {
	Title  string
	Fields []Field
}

// Bound returns a pointer to v for use as Field.Minimum.
func Bound(v float64) *float64 {
	return &v
}

// JSONSchema renders the schema as a JSON-Schema object for discovery.
func (s Schema) JSONSchema() mcp.InputSchema {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		properties[field.Name] = field.jsonSchema()
		if field.Required {
			required = append(required, field.Name)
		}
	}
	return mcp.InputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
		Title:      s.Title,
	}
}

func (f Field) jsonSchema() map[string]any {
	prop := map[string]any{}
	if f.Description != "" {
		prop["description"] = f.Description
	}
	if f.Default != nil {
		prop["default"] = f.Default
	}

	switch f.Type {
	case TypeString:
		prop["type"] = "string"
		if f.MinLength > 0 {
			prop["minLength"] = f.MinLength
		}
		if f.MaxLength > 0 {
			prop["maxLength"] = f.MaxLength
		}
	case TypeNumber:
		prop["type"] = "number"
		if f.Minimum != nil {
			prop["minimum"] = *f.Minimum
		}
	case TypeEnum:
		prop["type"] = "string"
		prop["enum"] = append([]string(nil), f.Enum...)
	case TypeArray:
		prop["type"] = "array"
		prop["items"] = map[string]any{"type": "string", "minLength": 1}
	}
	return prop
}

// OutputField documents one field of a tool's success envelope.
type OutputField struct {
	Name        string
	Type        string
	Description string
}

// Output is the ordered success contract of a tool.
type Output struct {
	Title  string
	Fields []OutputField
}

// Names returns the declared field names in order.
func (o Output) Names() []string {
	names := make([]string, 0, len(o.Fields))
	for _, field := range o.Fields {
		names = append(names, field.Name)
	}
	return names
}

// JSONSchema renders the output contract as a JSON-Schema object.
func (o Output) JSONSchema() mcp.InputSchema {
	properties := make(map[string]any, len(o.Fields))
	required := make([]string, 0, len(o.Fields))
	for _, field := range o.Fields {
		prop := map[string]any{"type": field.Type}
		if field.Description != "" {
			prop["description"] = field.Description
		}
		properties[field.Name] = prop
		required = append(required, field.Name)
	}
	return mcp.InputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
		Title:      o.Title,
	}
}
