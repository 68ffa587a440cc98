// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// ErrorType represents different kinds of failures of external tools
type ErrorType int

const (
	ErrorTypeUnknown      ErrorType = iota
	ErrorTypeTransient              // Resource pressure, interrupted processes
	ErrorTypePermanent              // Failures that repeat identically
	ErrorTypeTimeout                // Per-page deadline hit
	ErrorTypeToolMissing            // pdftoppm or tesseract not installed
	ErrorTypeInvalidInput           // Unreadable or damaged input file
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypePermanent:
		return "Permanent"
	case ErrorTypeTimeout:
		return "Timeout"
	case ErrorTypeToolMissing:
		return "ToolMissing"
	case ErrorTypeInvalidInput:
		return "InvalidInput"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Original == nil {
		return e.Type.String()
	}
	return e.Original.Error()
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// transientMarkers are stderr/message fragments of failures that usually
// clear up on a second attempt
var transientMarkers = []string{
	"resource temporarily unavailable",
	"too many open files",
	"cannot allocate memory",
	"out of memory",
	"interrupted system call",
	"text file busy",
}

// invalidInputMarkers are fragments poppler and tesseract print for
// damaged or unsupported input
var invalidInputMarkers = []string{
	"may not be a pdf",
	"couldn't read xref",
	"syntax error",
	"incorrect password",
	"unsupported image format",
	"image file cannot be read",
	"malformed",
}

// ClassifyError categorizes an error for retry decisions
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, os.ErrNotExist) && isExecLookup(err):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeToolMissing,
			Message:   fmt.Sprintf("tool not installed: %v", err),
			Retryable: false,
		}
	case errors.Is(err, context.Canceled):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypePermanent,
			Message:   fmt.Sprintf("canceled: %v", err),
			Retryable: false,
		}
	case isTimeoutError(err):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTimeout,
			Message:   fmt.Sprintf("timeout: %v", err),
			Retryable: true,
		}
	case errors.Is(err, syscall.EAGAIN), errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENOMEM), errors.Is(err, syscall.EINTR):
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTransient,
			Message:   fmt.Sprintf("transient failure: %v", err),
			Retryable: true,
		}
	}

	errStr := strings.ToLower(err.Error())
	if containsAny(errStr, transientMarkers) || wasSignaled(err) {
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeTransient,
			Message:   fmt.Sprintf("transient failure: %v", err),
			Retryable: true,
		}
	}
	if containsAny(errStr, invalidInputMarkers) {
		return &ClassifiedError{
			Original:  err,
			Type:      ErrorTypeInvalidInput,
			Message:   fmt.Sprintf("invalid input: %v", err),
			Retryable: false,
		}
	}

	// Default to unknown, non-retryable
	return &ClassifiedError{
		Original:  err,
		Type:      ErrorTypeUnknown,
		Message:   fmt.Sprintf("unknown error: %v", err),
		Retryable: false,
	}
}

// isExecLookup reports whether a not-exist error came from resolving a binary
func isExecLookup(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}

// wasSignaled reports whether an external process was killed by a signal
// other than our own deadline handling
func wasSignaled(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// NewTransientError creates a new transient error
func NewTransientError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypeTransient,
		Message:   message,
		Retryable: true,
	}
}

// NewPermanentError creates a new permanent error
func NewPermanentError(message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      ErrorTypePermanent,
		Message:   message,
		Retryable: false,
	}
}
