package journeyerr

import (
	"errors"
	"fmt"
	"strings"
)

// Code standardizes failure semantics across the journey engine.
type Code string

const (
	CodeValidation     Code = "validation"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeUnauthorized   Code = "unauthorized"
	CodeInitialization Code = "initialization"
	CodePersistence    Code = "persistence_write"
	CodeGraphIntegrity Code = "graph_integrity"
	CodeUnknownBlock   Code = "unknown_block"
	CodeRetryable      Code = "retryable"
	CodeInternal       Code = "internal"
)

// Error is the canonical error wrapper for engine and service failures.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an error with explicit code + operation.
func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Wrap annotates an existing error without losing the cause chain.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(code, op, err.Error(), err)
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code Code) bool {
	var je *Error
	if !errors.As(err, &je) {
		return false
	}
	return je.Code == code
}

// CodeOf extracts the code when available, "" otherwise.
func CodeOf(err error) Code {
	var je *Error
	if !errors.As(err, &je) {
		return ""
	}
	return je.Code
}
