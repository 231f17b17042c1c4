// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pkgwarden/pkgwarden/internal/config"
)

// Prefix is attached to every record.
const Prefix = "pkgwarden"

const (
	// FormatText is the human-readable, optionally colored format.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per record.
	FormatJSON Format = "json"
	// FormatLogfmt writes key=value records.
	FormatLogfmt Format = "logfmt"
)

var (
	// ErrInvalidLevel is the sentinel error wrapped by InvalidLevelError.
	ErrInvalidLevel = errors.New("invalid log level")
	// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
	ErrInvalidFormat = errors.New("invalid log format")
)

type (
	// Format selects the record encoding.
	Format string

	// InvalidLevelError is returned when a level name is not recognized.
	InvalidLevelError struct {
		Value string
	}

	// InvalidFormatError is returned when a format name is not recognized.
	InvalidFormatError struct {
		Value Format
	}
)

// Error implements the error interface.
func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error, fatal)", e.Value)
}

// Unwrap returns ErrInvalidLevel for errors.Is() compatibility.
func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

// Unwrap returns ErrInvalidFormat for errors.Is() compatibility.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// Validate returns nil for the known formats. The empty format means text.
func (f Format) Validate() error {
	switch f {
	case "", FormatText, FormatJSON, FormatLogfmt:
		return nil
	default:
		return &InvalidFormatError{Value: f}
	}
}

func (f Format) formatter() log.Formatter {
	switch f {
	case FormatJSON:
		return log.JSONFormatter
	case FormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ParseLevel maps a level name to its slog level. Names are case-insensitive
// and "warning" is accepted as an alias of "warn". The empty name means info.
func ParseLevel(name string) (slog.Level, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch normalized {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		normalized = "warn"
	}
	lvl, err := log.ParseLevel(normalized)
	if err != nil {
		return 0, &InvalidLevelError{Value: name}
	}
	return slog.Level(lvl), nil
}

// New returns a logger writing to w with the given options.
func New(w io.Writer, cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format := Format(strings.ToLower(cfg.Format))
	if err := format.Validate(); err != nil {
		return nil, err
	}

	handler := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           log.Level(level),
		ReportTimestamp: cfg.Timestamps,
		Formatter:       format.formatter(),
	})
	return slog.New(handler), nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
