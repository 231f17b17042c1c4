// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing error: what failed, on what, why, and
	// what the user can do about it. The CLI builds one per failed command
	// with an ErrorContext:
	//
	//	err := issue.NewErrorContext().
	//		WithOperation("install").
	//		WithResource("pip:requests").
	//		WithSuggestion("Add the package to allowed_packages").
	//		WithIssue(issue.PackageNotAllowedId).
	//		Wrap(cause).
	//		Build()
	ActionableError struct {
		// Operation is a verb phrase, e.g. "install" or "check status of".
		// Error() prefixes it with "failed to".
		Operation string
		// Resource is usually a "type:package" reference (optional).
		Resource string
		// Suggestions are printed as a bulleted list under the message, in
		// the order they were added.
		Suggestions []string
		// Issue is the catalog entry explaining the failure; zero for none.
		// The CLI renders its page in verbose mode.
		Issue Id
		// Cause is the underlying error, reachable through errors.Is and
		// errors.As.
		Cause error
	}

	// ErrorContext accumulates the parts of an ActionableError. The With
	// methods modify the receiver and return it for chaining, so a context
	// should not be shared between goroutines.
	ErrorContext struct {
		err ActionableError
	}
)

// NewErrorContext creates an empty ErrorContext. Build returns nil until
// WithOperation has been called.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error implements the error interface. The message reads
// "failed to <operation> <resource>: <cause>", leaving out the parts that are
// not set.
func (e *ActionableError) Error() string {
	msg := "failed to " + e.Operation
	if e.Resource != "" {
		msg += " " + e.Resource
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the cause, so that errors.Is(err, runner.ErrToolNotFound)
// and friends see through the wrapper.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders the message and a bulleted list of suggestions. Verbose
// output also numbers every error of the cause chain, starting with the
// direct cause and following errors.Unwrap until it returns nil.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			fmt.Fprintf(&b, "\n  • %s", s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for i, err := 1, e.Cause; err != nil; i, err = i+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %v", i, err)
		}
	}
	return b.String()
}

// WithOperation sets the operation. It is the only required part.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.err.Operation = op
	return c
}

// WithResource sets the resource the operation failed on.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.err.Resource = res
	return c
}

// WithSuggestion appends a suggestion unless it is empty.
func (c *ErrorContext) WithSuggestion(sug string) *ErrorContext {
	return c.WithSuggestions(sug)
}

// WithSuggestions appends the non-empty suggestions in order.
func (c *ErrorContext) WithSuggestions(sugs ...string) *ErrorContext {
	for _, s := range sugs {
		if s != "" {
			c.err.Suggestions = append(c.err.Suggestions, s)
		}
	}
	return c
}

// WithIssue links the catalog entry. Ids without an entry render nothing.
func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.err.Issue = id
	return c
}

// Wrap sets the cause, replacing any earlier one.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.err.Cause = err
	return c
}

// Build returns the ActionableError, or nil when no operation was set. The
// result is a copy; further With calls on c do not change it.
func (c *ErrorContext) Build() *ActionableError {
	if c.err.Operation == "" {
		return nil
	}
	ae := c.err
	return &ae
}
