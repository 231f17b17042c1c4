// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/container"
)

const (
	// SeverityWarning indicates a recoverable configuration problem.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal configuration error diagnostic.
	SeverityError Severity = "error"
)

var (
	// ErrConfigNotFound is the sentinel error wrapped by NotFoundError.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrConfigInvalid is the sentinel error wrapped by InvalidError.
	ErrConfigInvalid = errors.New("invalid configuration")
)

type (
	// Document is the decoded configuration file.
	Document struct {
		Logging LoggingConfig `yaml:"logging"`
		Pip     Backend       `yaml:"pip"`
		Brew    Backend       `yaml:"brew"`
		Docker  Backend       `yaml:"docker"`
	}

	// Backend is the configuration block of one backend type.
	Backend struct {
		// Command overrides the tool executable (e.g. pip3).
		Command string `yaml:"command,omitempty"`
		// Engine selects a docker-compatible CLI for the container backend.
		Engine container.EngineType `yaml:"engine,omitempty"`
		// AllowedPackages maps package names to their allowed versions.
		AllowedPackages allowlist.List `yaml:"allowed_packages"`
		// Configurations holds per-package container settings.
		Configurations map[string]container.Spec `yaml:"configurations,omitempty"`

		declared     bool
		hasAllowlist bool
	}

	// LoggingConfig is the optional logging block of the document.
	LoggingConfig struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		Timestamps bool   `yaml:"timestamps"`
	}

	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a non-fatal problem found while loading.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "config_empty").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file the diagnostic refers to.
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}

	// NotFoundError is returned when the configuration file does not exist.
	NotFoundError struct {
		Path string
	}

	// InvalidError is returned when the document violates the schema or
	// cannot be decoded.
	InvalidError struct {
		Path string
		// Problems lists one message per violation, prefixed by its location.
		Problems []string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration file %q not found", e.Path)
}

// Unwrap returns ErrConfigNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrConfigNotFound }

// Error implements the error interface.
func (e *InvalidError) Error() string {
	if len(e.Problems) == 1 {
		return fmt.Sprintf("%s: %s", e.Path, e.Problems[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.Path, strings.Join(e.Problems, "\n  "))
}

// Unwrap returns ErrConfigInvalid for errors.Is() compatibility.
func (e *InvalidError) Unwrap() error { return ErrConfigInvalid }

// Backend returns the block for a backend type name. Unknown names and
// absent blocks yield an undeclared Backend.
func (d *Document) Backend(name string) Backend {
	if d == nil {
		return Backend{}
	}
	switch name {
	case "pip":
		return d.Pip
	case "brew":
		return d.Brew
	case "docker":
		return d.Docker
	default:
		return Backend{}
	}
}

// UnmarshalYAML decodes a backend block and records which keys it declares.
func (b *Backend) UnmarshalYAML(node *yaml.Node) error {
	type plain Backend
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*b = Backend(p)
	b.declared = node.Kind == yaml.MappingNode
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "allowed_packages" {
			b.hasAllowlist = true
		}
	}
	return nil
}

// Declared reports whether the document has a block for this backend.
func (b Backend) Declared() bool {
	return b.declared
}

// Allowlist returns the allow-list and whether it is enforced. A declared
// block that omits allowed_packages opts out of enforcement; an absent
// block enforces an empty list.
func (b Backend) Allowlist() (list allowlist.List, enforced bool) {
	if b.declared && !b.hasAllowlist {
		return allowlist.List{}, false
	}
	return b.AllowedPackages, true
}

// ContainerSpec returns the container configuration of pkg, falling back to
// container.DefaultSpec for a missing or empty entry. An entry without an
// image runs the package name.
func (b Backend) ContainerSpec(pkg string) container.Spec {
	spec, ok := b.Configurations[pkg]
	if !ok || spec.IsZero() {
		return container.DefaultSpec(pkg)
	}
	if spec.Image == "" {
		spec.Image = pkg
	}
	return spec
}

// WithAllowlist returns a copy of b, declared, enforcing l. It is used to
// build configurations in code.
func (b Backend) WithAllowlist(l allowlist.List) Backend {
	b.declared = true
	b.hasAllowlist = true
	b.AllowedPackages = l
	return b
}

// WithoutAllowlist returns a copy of b, declared, with enforcement off.
func (b Backend) WithoutAllowlist() Backend {
	b.declared = true
	b.hasAllowlist = false
	b.AllowedPackages = allowlist.List{}
	return b
}
