package types

import (
	"errors"
	"fmt"
)

// Kind is one entry of the closed failure taxonomy reported as error_type.
type Kind string

const (
	KindMissingField    Kind = "missing_field"
	KindLengthViolation Kind = "length_violation"
	KindDomainViolation Kind = "domain_violation"
	KindInvalidEnum     Kind = "invalid_enum"
	KindDivisionByZero  Kind = "division_by_zero"
	KindPathTraversal   Kind = "path_traversal"
	KindNotFound        Kind = "not_found"
	KindIOError         Kind = "io_error"
	KindUnknownTool     Kind = "unknown_tool"
)

// Kinds lists every failure kind in taxonomy order.
func Kinds() []Kind {
	return []Kind{
		KindMissingField,
		KindLengthViolation,
		KindDomainViolation,
		KindInvalidEnum,
		KindDivisionByZero,
		KindPathTraversal,
		KindNotFound,
		KindIOError,
		KindUnknownTool,
	}
}

// Valid reports whether k belongs to the taxonomy.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Failure marks tool failures that are surfaced as failure envelopes.
// Message is caller-facing; Err keeps the underlying cause for logs only.
type Failure struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f == nil {
		return "tool failure"
	}
	if f.Message != "" {
		return f.Message
	}
	if f.Kind != "" {
		return fmt.Sprintf("tool failure: %s", f.Kind)
	}
	return "tool failure"
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

func NewFailure(kind Kind, message string) *Failure {
	return &Failure{Kind: kind, Message: message}
}

// Failuref builds a failure with a formatted message.
func Failuref(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapFailure attaches cause to a failure without exposing it in Message.
func WrapFailure(kind Kind, message string, cause error) *Failure {
	return &Failure{Kind: kind, Message: message, Err: cause}
}

func AsFailure(err error) (*Failure, bool) {
	if err == nil {
		return nil, false
	}
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
