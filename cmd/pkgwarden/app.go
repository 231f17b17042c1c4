// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/installer"
	"github.com/pkgwarden/pkgwarden/internal/logging"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and builds a session from it; nothing is loaded until a
	// command actually runs, so help and completion work without a config file.
	App struct {
		Config config.Provider
		runner installer.Runner
		viper  *viper.Viper
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		// Runner replaces the command runner built from the settings.
		Runner installer.Runner
		Viper  *viper.Viper
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is the per-command state: the loaded document and what is
	// built from it.
	session struct {
		document *config.Document
		logger   *slog.Logger
		factory  *installer.Factory
	}
)

// NewApp creates an App, replacing nil dependencies with defaults.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Viper == nil {
		deps.Viper = config.NewViper()
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		runner: deps.Runner,
		viper:  deps.Viper,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// verbose reports the --verbose setting. It is safe to call before any
// session exists, e.g. when rendering a flag parsing error.
func (a *App) verbose() bool {
	return a.viper.GetBool(config.KeyVerbose)
}

// prepare resolves settings, loads the document and builds the factory.
func (a *App) prepare(ctx context.Context) (*session, error) {
	settings, err := config.ReadSettings(a.viper)
	if err != nil {
		return nil, err
	}

	res, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: settings.ConfigPath})
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(a.stderr, settings.Logging(res.Document))
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		logger.Warn(d.Message, "code", d.Code, "path", d.Path)
	}

	r := a.runner
	if r == nil {
		opts := []runner.Option{runner.WithLogger(logger), runner.WithTimeout(settings.Timeout)}
		if settings.DryRun {
			opts = append(opts, runner.WithDryRun(a.stdout))
		}
		r = runner.New(opts...)
	}

	logger.Debug("Loaded configuration", "path", res.Path, "timeout", settings.Timeout, "dry_run", settings.DryRun)
	return &session{
		document: res.Document,
		logger:   logger,
		factory:  installer.NewFactory(res.Document, installer.WithRunner(r), installer.WithLogger(logger)),
	}, nil
}

// backend validates the type argument, then prepares a session and creates
// the backend for the request. The type is checked first so that a typo is
// reported even when the config file is missing.
func (a *App) backend(cmd *cobra.Command, typeArg, pkg, version string) (installer.Installer, installer.Request, error) {
	t := installer.Type(typeArg)
	if err := t.Validate(); err != nil {
		return nil, installer.Request{}, err
	}

	s, err := a.prepare(cmd.Context())
	if err != nil {
		return nil, installer.Request{}, err
	}

	req := installer.NewRequest(t, pkg, version)
	inst, err := s.factory.Create(req)
	if err != nil {
		return nil, req, err
	}
	return inst, req, nil
}
