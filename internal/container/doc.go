// SPDX-License-Identifier: MPL-2.0

// Package container drives a docker-compatible CLI for the container backend.
//
// Argument vectors are built by the *Args functions and reproduce the flag
// formats the docker CLI expects exactly (e.g. "-p8080:80", "--restart=always").
// CLI executes them through a runner.Runner, so every failure is classified
// the same way as for the other backends.
package container
