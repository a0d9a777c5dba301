package qi

import (
	"errors"
	"fmt"
)

// ErrPlanDone is returned when a plan that already reached a terminal
// state is executed again.
var ErrPlanDone = errors.New("qi: plan already executed")

// ValidationError is returned when a descriptor is structurally invalid.
// It is always returned before any statement is sent to the database.
type ValidationError struct {
	Op      string // Operation (e.g., "createFunction", "addIndex")
	Message string // Failed precondition (e.g., "requires returnType")
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("qi: %s: %s", e.Op, e.Message)
	}
	return "qi: " + e.Message
}

// NewValidationError returns a new ValidationError for the given operation.
func NewValidationError(op, msg string) *ValidationError {
	return &ValidationError{Op: op, Message: msg}
}

// Validationf returns a new ValidationError with a formatted message.
func Validationf(op, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// UnsupportedError is returned when a dialect cannot express an operation
// or one of its options. Like ValidationError, it never reaches the database.
type UnsupportedError struct {
	Dialect string
	Feature string
}

// Error returns the error string.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("qi: %s is not supported by dialect %q", e.Feature, e.Dialect)
}

// NewUnsupportedError returns a new UnsupportedError.
func NewUnsupportedError(dialect, feature string) *UnsupportedError {
	return &UnsupportedError{Dialect: dialect, Feature: feature}
}

// IsUnsupported returns true if the error is an UnsupportedError.
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedError
	return errors.As(err, &e)
}

// Kind classifies a driver failure.
type Kind uint8

// Execution error kinds.
const (
	KindUnknown Kind = iota
	// KindNotFound is an operation on an object that does not exist.
	KindNotFound
	// KindAlreadyExists is the creation of a duplicate object without replace semantics.
	KindAlreadyExists
	// KindSyntax is a statement the database could not parse or accept.
	KindSyntax
	// KindPermission is a privilege failure.
	KindPermission
	// KindConstraint is a constraint violation (e.g., unique index over duplicate rows).
	KindConstraint
)

var kindNames = [...]string{
	KindUnknown:       "unknown",
	KindNotFound:      "not found",
	KindAlreadyExists: "already exists",
	KindSyntax:        "syntax",
	KindPermission:    "permission",
	KindConstraint:    "constraint",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Generic reports whether the kind is one of the generic failure kinds.
func (k Kind) Generic() bool {
	return k == KindSyntax || k == KindPermission || k == KindConstraint
}

// ExecutionError wraps a recognized driver failure. The driver message is
// kept verbatim in Error so callers can still match on it.
type ExecutionError struct {
	Op     string // Operation (e.g., "dropFunction")
	Object string // Target object name
	Kind   Kind
	Err    error // Underlying driver error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("qi: %s %s: %v", e.Op, e.Object, e.Err)
	}
	return fmt.Sprintf("qi: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError returns a new ExecutionError.
func NewExecutionError(op, object string, kind Kind, err error) *ExecutionError {
	return &ExecutionError{Op: op, Object: object, Kind: kind, Err: err}
}

// IsExecutionError returns true if the error is an ExecutionError.
func IsExecutionError(err error) bool {
	return kindOf(err) != nil
}

// IsNotFound returns true if the error reports a missing object.
func IsNotFound(err error) bool {
	e := kindOf(err)
	return e != nil && e.Kind == KindNotFound
}

// IsAlreadyExists returns true if the error reports a duplicate object.
func IsAlreadyExists(err error) bool {
	e := kindOf(err)
	return e != nil && e.Kind == KindAlreadyExists
}

// IsGeneric returns true if the error is a syntax, permission or constraint failure.
func IsGeneric(err error) bool {
	e := kindOf(err)
	return e != nil && e.Kind.Generic()
}

func kindOf(err error) *ExecutionError {
	if err == nil {
		return nil
	}
	var e *ExecutionError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IntrospectionError is returned when catalog rows of a single index
// disagree on a field that must be constant across them.
type IntrospectionError struct {
	Table string
	Index string
	Field string // Disagreeing field (e.g., "unique")
}

// Error returns the error string.
func (e *IntrospectionError) Error() string {
	return fmt.Sprintf("qi: introspecting %s: index %q has inconsistent %s flag across catalog rows", e.Table, e.Index, e.Field)
}

// IsIntrospectionError returns true if the error is an IntrospectionError.
func IsIntrospectionError(err error) bool {
	if err == nil {
		return false
	}
	var e *IntrospectionError
	return errors.As(err, &e)
}
