// SPDX-License-Identifier: MPL-2.0

// Package runner executes the external package-manager tools.
//
// Every backend goes through Runner, which spawns exactly one process per call
// and classifies the outcome into ToolNotFoundError, TimedOutError or
// ExecutionFailedError. A nonzero exit is only returned as a plain Result when
// the Invocation sets AllowFailure. Nothing is retried.
package runner
