// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

const (
	// TypePip selects the Python package backend.
	TypePip Type = "pip"
	// TypeBrew selects the Homebrew backend.
	TypeBrew Type = "brew"
	// TypeDocker selects the container backend.
	TypeDocker Type = "docker"
)

var (
	// ErrUnknownInstallerType is the sentinel error wrapped by UnknownInstallerTypeError.
	ErrUnknownInstallerType = errors.New("unknown installer type")
	// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
	ErrInvalidPackageName = errors.New("invalid package name")
)

type (
	// Type is the closed set of backend types.
	Type string

	// Request is one (type, package, version) operation request.
	// It is a value type; nothing mutates it after NewRequest.
	Request struct {
		Type    Type
		Package string
		Version string
	}

	// Installer performs the operations of one backend for one package.
	Installer interface {
		// Name is the human-readable backend name.
		Name() string
		Install(ctx context.Context) error
		Uninstall(ctx context.Context) error
		// Status reports whether the package is installed (or, for the
		// container backend, running).
		Status(ctx context.Context) (bool, error)
	}

	// Runner is the subset of runner.Runner the backends use.
	Runner interface {
		Run(ctx context.Context, inv runner.Invocation) (runner.Result, error)
		Stream(ctx context.Context, inv runner.Invocation, onLine func(string)) (runner.Result, error)
	}

	// UnknownInstallerTypeError is returned when a type is not registered.
	UnknownInstallerTypeError struct {
		Value Type
		Known []Type
	}

	// InvalidPackageNameError is returned for names that cannot be passed
	// to a package manager.
	InvalidPackageNameError struct {
		Value  string
		Reason string
	}
)

// Types returns the built-in backend types.
func Types() []Type {
	return []Type{TypePip, TypeBrew, TypeDocker}
}

// String returns the string representation of the Type.
func (t Type) String() string { return string(t) }

// Validate returns nil if t is a built-in backend type.
func (t Type) Validate() error {
	switch t {
	case TypePip, TypeBrew, TypeDocker:
		return nil
	default:
		return &UnknownInstallerTypeError{Value: t, Known: Types()}
	}
}

// Error implements the error interface.
func (e *UnknownInstallerTypeError) Error() string {
	known := make([]string, len(e.Known))
	for i, k := range e.Known {
		known[i] = k.String()
	}
	return fmt.Sprintf("unknown installer type %q (valid: %s)", e.Value, strings.Join(known, ", "))
}

// Unwrap returns ErrUnknownInstallerType for errors.Is() compatibility.
func (e *UnknownInstallerTypeError) Unwrap() error { return ErrUnknownInstallerType }

// Error implements the error interface.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }

// NewRequest creates a Request. An empty version means allowlist.LatestVersion.
func NewRequest(t Type, pkg, version string) Request {
	if version == "" {
		version = allowlist.LatestVersion
	}
	return Request{Type: t, Package: pkg, Version: version}
}

// IsLatest reports whether the request carries the "latest" sentinel.
func (r Request) IsLatest() bool {
	return r.Version == allowlist.LatestVersion
}

// String returns "type:package" or "type:package@version".
func (r Request) String() string {
	if r.IsLatest() {
		return fmt.Sprintf("%s:%s", r.Type, r.Package)
	}
	return fmt.Sprintf("%s:%s@%s", r.Type, r.Package, r.Version)
}

// validatePackageName rejects names that a tool would read as something
// other than a package.
func validatePackageName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidPackageNameError{Value: name, Reason: "must not be empty"}
	case strings.HasPrefix(name, "-"):
		return &InvalidPackageNameError{Value: name, Reason: "must not start with '-'"}
	case strings.ContainsAny(name, " \t\r\n"):
		return &InvalidPackageNameError{Value: name, Reason: "must not contain whitespace"}
	}
	return nil
}
