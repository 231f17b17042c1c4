// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
)

const (
	// EngineTypeDocker is the docker CLI.
	EngineTypeDocker EngineType = "docker"
	// EngineTypePodman is the podman CLI, which accepts the same arguments.
	EngineTypePodman EngineType = "podman"
)

// ErrInvalidEngineType is the sentinel error wrapped by InvalidEngineTypeError.
var ErrInvalidEngineType = errors.New("invalid container engine type")

type (
	// EngineType identifies the container CLI binary.
	// The zero value ("") is valid and means docker.
	EngineType string

	// InvalidEngineTypeError is returned when an EngineType is not recognized.
	InvalidEngineTypeError struct {
		Value EngineType
	}
)

// Error implements the error interface.
func (e *InvalidEngineTypeError) Error() string {
	return fmt.Sprintf("invalid container engine %q (valid: docker, podman)", e.Value)
}

// Unwrap returns ErrInvalidEngineType for errors.Is() compatibility.
func (e *InvalidEngineTypeError) Unwrap() error { return ErrInvalidEngineType }

// Validate returns nil if the EngineType is empty or a known engine.
func (e EngineType) Validate() error {
	switch e {
	case "", EngineTypeDocker, EngineTypePodman:
		return nil
	default:
		return &InvalidEngineTypeError{Value: e}
	}
}

// Binary returns the executable name, defaulting to docker.
func (e EngineType) Binary() string {
	if e == "" {
		return string(EngineTypeDocker)
	}
	return string(e)
}

// String returns the string representation of the EngineType.
func (e EngineType) String() string { return string(e) }
