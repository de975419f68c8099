// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, mutually exclusive config
//   - Graph errors (200-299): Missing inputs, cycles, unresolved references
//   - Block registry errors (300-399): Block lookup and registration errors
//   - Position/trade errors (400-499): Position management and guard violations
//   - Data source errors (500-599): Bar series fetching and alignment errors
//   - Store errors (600-699): Persistence and schema compatibility errors
//   - Job/runner errors (700-799): Backtest jobs and strategy scheduling errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeDataNotFound, "no bars for symbol %s", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeStoreQuery, "failed to execute query", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeCyclicGraph) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// NodeError represents an error scoped to a single node in a strategy graph.
// It carries enough context to mark the affected block failed without
// aborting the surrounding evaluation pass.
type NodeError struct {
	NodeID  string // ID of the node the error applies to
	Port    string // Optional: input port involved
	Code    ErrorCode
	Message string
}

// NewNodeError creates a new NodeError.
func NewNodeError(code ErrorCode, nodeID, port, message string) *NodeError {
	return &NodeError{
		NodeID:  nodeID,
		Port:    port,
		Code:    code,
		Message: message,
	}
}

// NewNodeErrorf creates a new NodeError with a formatted message.
func NewNodeErrorf(code ErrorCode, nodeID, port, format string, args ...any) *NodeError {
	return &NodeError{
		NodeID:  nodeID,
		Port:    port,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("node %s port %s: %s", e.NodeID, e.Port, e.Message)
	}

	return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
}

// IsNodeError checks if an error is a NodeError.
// It uses errors.As to check the error chain.
func IsNodeError(err error) bool {
	var nodeErr *NodeError

	return errors.As(err, &nodeErr)
}
