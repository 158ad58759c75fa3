// Package envelope builds the uniform JSON object every tool call returns.
package envelope

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/slighter12/toolbelt-mcp-go/tools/types"
)

const (
	KeySuccess      = "success"
	KeyTimestamp    = "timestamp"
	KeyErrorType    = "error_type"
	KeyErrorMessage = "error_message"
)

// Envelope is the response of one tool invocation.
type Envelope map[string]any

// Timestamp renders t as ISO-8601 UTC with second precision.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Success flattens result into the envelope and stamps it. result must
// encode as a JSON object; its own success or timestamp keys are overwritten.
func Success(result any, now time.Time) (Envelope, error) {
	fields, err := toFields(result)
	if err != nil {
		return nil, err
	}
	env := make(Envelope, len(fields)+2)
	for key, value := range fields {
		env[key] = value
	}
	env[KeySuccess] = true
	env[KeyTimestamp] = Timestamp(now)
	return env, nil
}

// Failure builds the failure variant.
func Failure(kind types.Kind, message string, now time.Time) Envelope {
	return Envelope{
		KeySuccess:      false,
		KeyErrorType:    string(kind),
		KeyErrorMessage: message,
		KeyTimestamp:    Timestamp(now),
	}
}

// FromError maps err onto the taxonomy. Anything that is not a
// *types.Failure is reported as io_error without leaking its text.
func FromError(err error, now time.Time) Envelope {
	if failure, ok := types.AsFailure(err); ok && failure.Kind.Valid() {
		return Failure(failure.Kind, failure.Error(), now)
	}
	return Failure(types.KindIOError, "internal error while executing tool", now)
}

func (e Envelope) OK() bool {
	ok, _ := e[KeySuccess].(bool)
	return ok
}

// ErrorType returns the failure kind, or "" for a success envelope.
func (e Envelope) ErrorType() types.Kind {
	kind, _ := e[KeyErrorType].(string)
	return types.Kind(kind)
}

func (e Envelope) ErrorMessage() string {
	message, _ := e[KeyErrorMessage].(string)
	return message
}

// JSON encodes the envelope. Keys come out sorted.
func (e Envelope) JSON() []byte {
	data, err := json.Marshal(map[string]any(e))
	if err != nil {
		fallback, _ := json.Marshal(Failure(types.KindIOError, "envelope could not be encoded", time.Now()))
		return fallback
	}
	return data
}

func toFields(result any) (map[string]any, error) {
	if result == nil {
		return map[string]any{}, nil
	}
	if fields, ok := result.(map[string]any); ok {
		return fields, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("result is not an object: %w", err)
	}
	return fields, nil
}
