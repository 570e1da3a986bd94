// Package errors provides structured error types for psd-extractor.
//
// Every failure the tree and export layers report carries a machine-readable
// [Code] so callers can tell a rejected document from a corrupt one, and a
// skipped layer from one that failed to write:
//
//	tree, err := psdtree.New(doc)
//	if errors.Is(err, errors.ErrCodeUnsupportedColorMode) {
//	    // refuse the document
//	}
//
// Wrap keeps the underlying cause reachable through the standard errors.Is/As.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the document, tree and export layers.
const (
	// Document errors
	ErrCodeUnsupportedColorMode Code = "UNSUPPORTED_COLOR_MODE"
	ErrCodeInvalidManifest      Code = "INVALID_MANIFEST"

	// Tree errors
	ErrCodeCorruptTree Code = "CORRUPT_TREE"
	ErrCodeNotALayer   Code = "NOT_A_LAYER"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Export errors
	ErrCodeCropFailed Code = "CROP_FAILED"
	ErrCodeIO         Code = "IO"
	ErrCodeEncode     Code = "ENCODE"
	ErrCodePixels     Code = "PIXELS"
	ErrCodeCollision  Code = "OUTPUT_COLLISION"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error values,
// and the plain error string otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
