// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkgwarden/pkgwarden/internal/runner"
)

type (
	// PackageInstaller is the backend of a package manager CLI that takes
	// install, uninstall and query subcommands (pip, brew).
	PackageInstaller struct {
		backend
		name     string
		tool     string
		commands commands
	}

	// commands builds the argument vectors of a package manager. Each
	// vector includes the tool as its first element.
	commands struct {
		install   func(tool string, req Request) []string
		uninstall func(tool, pkg string) []string
		status    func(tool, pkg string) []string
	}
)

// Name returns the backend name.
func (p *PackageInstaller) Name() string {
	return p.name
}

// Tool returns the executable the backend invokes.
func (p *PackageInstaller) Tool() string {
	return p.tool
}

// Install validates the request and installs the package.
func (p *PackageInstaller) Install(ctx context.Context) error {
	if err := p.validate(); err != nil {
		return err
	}
	p.logger.Info("Installing package", "version", p.req.Version)

	if _, err := p.run(ctx, "install", p.commands.install(p.tool, p.req), false); err != nil {
		return err
	}
	p.logger.Info(fmt.Sprintf("%s install completed successfully", p.name))
	return nil
}

// Uninstall validates the package name and removes the package.
func (p *PackageInstaller) Uninstall(ctx context.Context) error {
	if err := p.validatePackage(); err != nil {
		return err
	}
	p.logger.Info("Uninstalling package")

	if _, err := p.run(ctx, "uninstall", p.commands.uninstall(p.tool, p.req.Package), false); err != nil {
		return err
	}
	p.logger.Info(fmt.Sprintf("%s uninstall completed successfully", p.name))
	return nil
}

// Status reports whether the package manager knows the package. A query
// that exits nonzero, or otherwise fails to run to completion, means
// "not installed"; a missing tool, a timeout or cancellation is an error.
func (p *PackageInstaller) Status(ctx context.Context) (bool, error) {
	if err := validatePackageName(p.req.Package); err != nil {
		return false, err
	}

	res, err := p.run(ctx, "status", p.commands.status(p.tool, p.req.Package), true)
	if errors.Is(err, runner.ErrExecutionFailed) {
		p.logger.Warn("Status check failed", "error", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !res.ExitCode.IsSuccess() {
		p.logger.Info(fmt.Sprintf("Package %s is not installed via %s", p.req.Package, p.name))
		return false, nil
	}
	p.logger.Info(fmt.Sprintf("Package %s is installed via %s", p.req.Package, p.name))
	if details := strings.TrimSpace(res.Stdout); details != "" {
		p.logger.Debug("Package details", "details", details)
	}
	return true, nil
}

func (p *PackageInstaller) run(ctx context.Context, op string, args []string, allowFailure bool) (runner.Result, error) {
	return p.runner.Run(ctx, runner.Invocation{
		Args:         args,
		Operation:    op,
		Package:      p.req.Package,
		AllowFailure: allowFailure,
	})
}
