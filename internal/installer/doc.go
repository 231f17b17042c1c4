// SPDX-License-Identifier: MPL-2.0

// Package installer implements the package backends and the factory that
// binds a requested backend type to one of them.
//
// Every backend delegates its work to an external tool through a Runner:
// pip for Python packages, brew for system packages and a docker-compatible
// CLI for container images. Mutating operations check the backend's
// allow-list first and never run a command for a rejected request.
package installer
