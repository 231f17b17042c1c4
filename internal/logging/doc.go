// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger. Records are written through a
// charmbracelet/log handler behind the standard log/slog API, so the rest of
// the code base only depends on *slog.Logger.
package logging
