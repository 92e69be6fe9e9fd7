// Package errors provides the unified error type and factory functions for
// phimark.  The markup engine, the application service and both outer
// surfaces (HTTP, CLI) use AppError as the single carrier for structured error
// information, enabling consistent HTTP responses, logging, and metrics.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stack capture
// ─────────────────────────────────────────────────────────────────────────────

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout phimark.
// It satisfies the standard error interface and supports error wrapping so
// that errors.Is / errors.As / errors.Unwrap work across layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeMalformedTag, "tag has no separating whitespace")
//	return errors.TagNotFound("tag not found in annotated text").WithDetail("tag=<NAME Jan>")
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (offending input, offsets).
	Detail string

	// Cause is the underlying error that triggered this AppError.
	Cause error

	// Stack contains the call-stack captured at the point of creation.  It is
	// not part of Error() output.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set.  It is
// safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline.
//
// When err is already an *AppError and code is CodeUnknown the original code
// is preserved.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// As finds the first *AppError in err's chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// MessageOf returns err's message without its detail segment when err
// carries an *AppError, and err.Error() otherwise.  Details may quote input
// text, so logs use MessageOf.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if ae, ok := As(err); ok {
		return ae.Message
	}
	return err.Error()
}

// GetCode extracts the ErrorCode from the first *AppError found in err's
// chain.  If no *AppError is present, CodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// IsMalformedMarkup reports whether err's chain carries ErrCodeMalformedMarkup.
func IsMalformedMarkup(err error) bool { return IsCode(err, ErrCodeMalformedMarkup) }

// IsMalformedTag reports whether err's chain carries ErrCodeMalformedTag.
func IsMalformedTag(err error) bool { return IsCode(err, ErrCodeMalformedTag) }

// IsTagNotFound reports whether err's chain carries ErrCodeTagNotFound.
func IsTagNotFound(err error) bool { return IsCode(err, ErrCodeTagNotFound) }

// IsEmptyOrWhitespaceOnly reports whether err's chain carries
// ErrCodeEmptyOrWhitespaceOnly.
func IsEmptyOrWhitespaceOnly(err error) bool { return IsCode(err, ErrCodeEmptyOrWhitespaceOnly) }

// IsMarkupError reports whether err's chain carries any MARKUP_* code.
func IsMarkupError(err error) bool {
	return ModuleForCode(GetCode(err)) == "MARKUP"
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions
// ─────────────────────────────────────────────────────────────────────────────

// MalformedMarkup constructs an ErrCodeMalformedMarkup AppError.
func MalformedMarkup(message string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedMarkup,
		Message: message,
		Stack:   captureStack(1),
	}
}

// MalformedTag constructs an ErrCodeMalformedTag AppError.
func MalformedTag(message string) *AppError {
	return &AppError{
		Code:    ErrCodeMalformedTag,
		Message: message,
		Stack:   captureStack(1),
	}
}

// TagNotFound constructs an ErrCodeTagNotFound AppError.
func TagNotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeTagNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// EmptyOrWhitespaceOnly constructs an ErrCodeEmptyOrWhitespaceOnly AppError.
func EmptyOrWhitespaceOnly(message string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptyOrWhitespaceOnly,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
// Use this for unexpected failures where no more specific code applies.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}
