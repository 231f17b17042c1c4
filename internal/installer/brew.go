// SPDX-License-Identifier: MPL-2.0

package installer

import "github.com/pkgwarden/pkgwarden/internal/config"

// DefaultBrewCommand is the brew executable used when the configuration
// does not override it.
const DefaultBrewCommand = "brew"

// brew installs the current formula; the requested version is only checked
// against the allow-list.
var brewCommands = commands{
	install: func(tool string, req Request) []string {
		return []string{tool, "install", req.Package}
	},
	uninstall: func(tool, pkg string) []string {
		return []string{tool, "uninstall", pkg}
	},
	status: func(tool, pkg string) []string {
		return []string{tool, "list", pkg}
	},
}

// NewBrew creates the Homebrew backend.
func NewBrew(req Request, cfg config.Backend, deps Deps) *PackageInstaller {
	tool := cfg.Command
	if tool == "" {
		tool = DefaultBrewCommand
	}
	b := &PackageInstaller{
		backend:  newBackend(req, cfg, deps),
		name:     TypeBrew.String(),
		tool:     tool,
		commands: brewCommands,
	}
	if !req.IsLatest() {
		b.logger.Debug("brew does not pin versions; the current formula is installed", "version", req.Version)
	}
	return b
}
