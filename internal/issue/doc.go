// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. Each error may point at an Issue of the catalog, a
// Markdown page rendered with glamour when the user asks for details.
package issue
