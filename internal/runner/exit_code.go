// SPDX-License-Identifier: MPL-2.0

package runner

import "strconv"

// Exit codes with a meaning of their own. Anything else nonzero is a plain failure.
const (
	ExitSuccess          ExitCode = 0
	ExitFailure          ExitCode = 1
	ExitTimedOut         ExitCode = 124
	ExitPermissionDenied ExitCode = 126
	ExitNotFound         ExitCode = 127
)

// ExitCode represents a process exit status code.
// The zero value (0) means success.
type ExitCode int

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
