// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrToolNotFound is the sentinel error wrapped by ToolNotFoundError.
	ErrToolNotFound = errors.New("tool not found")

	// ErrExecutionFailed is the sentinel error wrapped by ExecutionFailedError.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrExecutionTimedOut is the sentinel error wrapped by TimedOutError.
	ErrExecutionTimedOut = errors.New("execution timed out")
)

type (
	// ToolNotFoundError is returned when the executable of an invocation
	// cannot be found on PATH.
	ToolNotFoundError struct {
		Tool  string
		Cause error
	}

	// ExecutionFailedError is returned when a command exits nonzero, or when
	// starting or waiting on it fails for any reason other than a missing
	// executable, a timeout or caller cancellation.
	ExecutionFailedError struct {
		Operation string
		Package   string
		ExitCode  ExitCode
		Stdout    string
		Stderr    string
		// Cause is set when the process could not be run to completion.
		Cause error
	}

	// TimedOutError is returned when a command outlives the runner's timeout.
	TimedOutError struct {
		Operation string
		Package   string
		Timeout   time.Duration
	}
)

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s command not found. Is %s installed?", e.Tool, e.Tool)
}

// Unwrap returns ErrToolNotFound for errors.Is() compatibility.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// Error implements the error interface.
func (e *ExecutionFailedError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "%s of %s failed", e.Operation, e.Package)
	if e.Cause != nil {
		fmt.Fprintf(&msg, ": %v", e.Cause)
		return msg.String()
	}
	fmt.Fprintf(&msg, " with exit code %s", e.ExitCode)
	if detail := e.Detail(); detail != "" {
		msg.WriteString(": ")
		msg.WriteString(detail)
	}
	return msg.String()
}

// Detail returns the most useful captured output: stderr when present,
// stdout otherwise, trimmed.
func (e *ExecutionFailedError) Detail() string {
	if s := strings.TrimSpace(e.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Stdout)
}

// Unwrap returns both the sentinel and the cause, so errors.Is() matches
// ErrExecutionFailed and errors.As() can reach the underlying error.
func (e *ExecutionFailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExecutionFailed}
	}
	return []error{ErrExecutionFailed, e.Cause}
}

// Error implements the error interface.
func (e *TimedOutError) Error() string {
	return fmt.Sprintf("%s of %s timed out after %s", e.Operation, e.Package, e.Timeout)
}

// Unwrap returns ErrExecutionTimedOut for errors.Is() compatibility.
func (e *TimedOutError) Unwrap() error { return ErrExecutionTimedOut }
