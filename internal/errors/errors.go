// Package errors provides centralized error definitions and error handling utilities
// for parawalk. It defines sentinel errors for the worker pool and graph
// subsystems, typed errors carrying context, and classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - PoolError: errors related to worker pool lifecycle and submission
//   - GraphError: errors related to loading or validating a graph
//
// Semantic errors represent common error conditions:
//   - ValidationError: invalid input or state
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewPoolError("submit rejected", errors.ErrShutdownRequested).WithWorkers(4)
//	err := errors.NewGraphError("bad edge", errors.ErrInvalidGraph).WithPath("g.in").WithLine(7)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrShutdownRequested) { ... }
//
//	var graphErr *errors.GraphError
//	if errors.As(err, &graphErr) { ... }
//
// # Fatal Conditions
//
// The concurrency core treats allocation and synchronization failures as
// unrecoverable. Those surface as panics and are never wrapped here. The
// errors in this package describe the recoverable edges: bad input, misuse
// of the pool lifecycle, and late submissions.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Pool-related sentinel errors
var (
	// ErrInvalidWorkerCount indicates a pool was requested with fewer than one worker.
	ErrInvalidWorkerCount = New("worker count must be at least 1")
	// ErrShutdownRequested indicates an external submission arrived after
	// shutdown was requested.
	ErrShutdownRequested = New("pool shutdown already requested")
	// ErrAlreadyJoined indicates the pool's workers were already joined.
	ErrAlreadyJoined = New("pool already joined")
	// ErrNotJoined indicates the pool was closed before its workers were joined.
	ErrNotJoined = New("pool workers not joined")
)

// Graph-related sentinel errors
var (
	// ErrInvalidGraph indicates a malformed graph description.
	ErrInvalidGraph = New("invalid graph")
	// ErrNodeOutOfRange indicates a node index outside the graph.
	ErrNodeOutOfRange = New("node index out of range")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// ParawalkError is the base interface for all parawalk errors.
type ParawalkError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// format renders "<kind> [k=v, ...]: message: cause".
func (e *baseError) format(kind string, parts []string) string {
	prefix := kind
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", kind, strings.Join(parts, ", "))
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// PoolError represents errors related to the worker pool.
//
// Example:
//
//	err := errors.NewPoolError("submit rejected", errors.ErrShutdownRequested).WithWorkers(4)
//	fmt.Println(err) // "pool error [workers=4]: submit rejected: pool shutdown already requested"
type PoolError struct {
	baseError
	Workers int
}

// NewPoolError creates a new PoolError.
func NewPoolError(message string, cause error) *PoolError {
	return &PoolError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithWorkers adds the pool's worker count to the error context.
func (e *PoolError) WithWorkers(n int) *PoolError {
	e.Workers = n
	return e
}

// Error returns the formatted error message.
func (e *PoolError) Error() string {
	var parts []string
	if e.Workers != 0 {
		parts = append(parts, fmt.Sprintf("workers=%d", e.Workers))
	}
	return e.format("pool error", parts)
}

// GraphError represents errors loading or validating a graph.
//
// Example:
//
//	err := errors.NewGraphError("neighbour out of range", errors.ErrNodeOutOfRange).
//		WithPath("graph.in").WithLine(12)
type GraphError struct {
	baseError
	Path string
	Line int
	Node int
	// hasNode distinguishes node 0 from "no node recorded".
	hasNode bool
}

// NewGraphError creates a new GraphError.
func NewGraphError(message string, cause error) *GraphError {
	return &GraphError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithPath adds the source path to the error context.
func (e *GraphError) WithPath(path string) *GraphError {
	e.Path = path
	return e
}

// WithLine adds the 1-based source line to the error context.
func (e *GraphError) WithLine(line int) *GraphError {
	e.Line = line
	return e
}

// WithNode adds the offending node index to the error context.
func (e *GraphError) WithNode(node int) *GraphError {
	e.Node = node
	e.hasNode = true
	return e
}

// Error returns the formatted error message.
func (e *GraphError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", e.Path))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line=%d", e.Line))
	}
	if e.hasNode {
		parts = append(parts, fmt.Sprintf("node=%d", e.Node))
	}
	return e.format("graph error", parts)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("workers must be positive").WithField("workers").WithValue(0)
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}
	return e.format("validation error", parts)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var pwErr ParawalkError
	if As(err, &pwErr) {
		return pwErr.IsUserFacing()
	}
	return false
}
