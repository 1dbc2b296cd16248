package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")

	// ErrDecode marks a document whose PDF source could not be read or parsed.
	ErrDecode = errors.New("pdf decode failure")
	// ErrNoContent marks a document that decoded but yielded no text at all.
	ErrNoContent = errors.New("no text content")
)

// Error codes carried by AppError.Code.
const (
	CodeDecodeFailure = "DECODE_FAILURE"
	CodeNoContent     = "NO_CONTENT"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// DecodeError builds the terminal per-document error for an unreadable source.
func DecodeError(fileName string, cause error) error {
	return NewAppError(CodeDecodeFailure, fileName, fmt.Errorf("%w: %v", ErrDecode, cause))
}

// NoContentError builds the terminal per-document error for an empty fragment stream.
func NoContentError(fileName string) error {
	return NewAppError(CodeNoContent, fileName, ErrNoContent)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
