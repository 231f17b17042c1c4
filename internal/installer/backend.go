// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"log/slog"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

type (
	// Deps are the collaborators shared by every backend a Factory creates.
	// Nil fields are replaced with defaults.
	Deps struct {
		Runner Runner
		Logger *slog.Logger
	}

	// backend holds what all backends share: the request, the allow-list
	// slice of the configuration and the collaborators.
	backend struct {
		req      Request
		allowed  allowlist.List
		enforced bool
		runner   Runner
		logger   *slog.Logger
	}
)

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Runner == nil {
		d.Runner = runner.New(runner.WithLogger(d.Logger))
	}
	return d
}

func newBackend(req Request, cfg config.Backend, deps Deps) backend {
	deps = deps.withDefaults()
	allowed, enforced := cfg.Allowlist()
	return backend{
		req:      req,
		allowed:  allowed,
		enforced: enforced,
		runner:   deps.Runner,
		logger:   deps.Logger.With("installer", req.Type.String(), "package", req.Package),
	}
}

// Request returns the request the backend was created for.
func (b *backend) Request() Request {
	return b.req
}

// validate checks the package and version against the allow-list. It runs
// at the top of Install, before any command.
func (b *backend) validate() error {
	if err := validatePackageName(b.req.Package); err != nil {
		return err
	}
	if !b.enforced {
		return nil
	}
	return b.allowed.Validate(b.req.Package, b.req.Version)
}

// validatePackage checks only the package name. It runs at the top of
// Uninstall, since removal does not depend on the version.
func (b *backend) validatePackage() error {
	if err := validatePackageName(b.req.Package); err != nil {
		return err
	}
	if !b.enforced {
		return nil
	}
	return b.allowed.ValidatePackage(b.req.Package)
}
