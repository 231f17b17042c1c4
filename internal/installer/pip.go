// SPDX-License-Identifier: MPL-2.0

package installer

import "github.com/pkgwarden/pkgwarden/internal/config"

// DefaultPipCommand is the pip executable used when the configuration does
// not override it.
const DefaultPipCommand = "pip"

var pipCommands = commands{
	install: func(tool string, req Request) []string {
		spec := req.Package
		if !req.IsLatest() {
			spec += "==" + req.Version
		}
		return []string{tool, "install", spec}
	},
	uninstall: func(tool, pkg string) []string {
		return []string{tool, "uninstall", "-y", pkg}
	},
	status: func(tool, pkg string) []string {
		return []string{tool, "show", pkg}
	},
}

// NewPip creates the Python package backend.
func NewPip(req Request, cfg config.Backend, deps Deps) *PackageInstaller {
	tool := cfg.Command
	if tool == "" {
		tool = DefaultPipCommand
	}
	return &PackageInstaller{
		backend:  newBackend(req, cfg, deps),
		name:     TypePip.String(),
		tool:     tool,
		commands: pipCommands,
	}
}
