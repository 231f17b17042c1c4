// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/pkgwarden/pkgwarden/internal/config"
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the pkgwarden command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "pkgwarden",
		Short: "Install packages through pip, brew and docker, restricted to an allow-list",
		Long: TitleStyle.Render("pkgwarden") + SubtitleStyle.Render(" - Install packages from an allow-list") + `

pkgwarden installs, uninstalls and checks packages through pip, Homebrew
or a docker-compatible container engine. Every install is checked against
the allowed packages and versions declared in the configuration file.

` + SubtitleStyle.Render("Examples:") + `
  pkgwarden install pip requests -v 2.31.0
  pkgwarden status brew wget
  pkgwarden install docker nginx
  pkgwarden list --format yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.stdout)
	root.SetErr(app.stderr)

	flags := root.PersistentFlags()
	flags.StringP(config.KeyConfig, "c", config.DefaultConfigPath, "configuration file")
	flags.Bool(config.KeyVerbose, false, "enable debug logging and detailed error output")
	flags.String(config.KeyLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "", "log format (text, json, logfmt)")
	flags.String(config.KeyTimeout, "", "timeout for each external command (e.g. 90s, 5m, or seconds)")
	flags.Bool(config.KeyDryRun, false, "print the commands instead of running them")
	for _, key := range []string{
		config.KeyConfig, config.KeyVerbose, config.KeyLogLevel,
		config.KeyLogFormat, config.KeyTimeout, config.KeyDryRun,
	} {
		// BindPFlag only fails for a nil flag.
		_ = app.viper.BindPFlag(key, flags.Lookup(key))
	}

	root.AddCommand(
		newInstallCommand(app),
		newUninstallCommand(app),
		newStatusCommand(app),
		newListCommand(app),
	)
	return root
}

// Run executes the CLI with args (os.Args[1:] when none are given) and
// returns the process exit code.
func Run(ctx context.Context, deps Dependencies, args ...string) int {
	app := NewApp(deps)
	root := NewRootCommand(app)
	if len(args) > 0 {
		root.SetArgs(args)
	}

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithCommit(Commit),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.renderError),
	)
	return exitCode(err)
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case isInterrupt(err):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

func isInterrupt(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Run(context.Background(), Dependencies{}))
}
