// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/fang"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/container"
	"github.com/pkgwarden/pkgwarden/internal/installer"
	"github.com/pkgwarden/pkgwarden/internal/issue"
	"github.com/pkgwarden/pkgwarden/internal/logging"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

// maxDidYouMean caps the fuzzy package suggestions.
const maxDidYouMean = 3

// issueStyle is the glamour style used for catalog pages; "auto" falls back
// to plain text when stdout is not a terminal.
const issueStyle = "auto"

// renderError is the fang error handler. It prints err once, with
// suggestions, and in verbose mode the error chain and the catalog page.
func (a *App) renderError(w io.Writer, _ fang.Styles, err error) {
	verbose := a.verbose()

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		// Cobra argument and flag errors never reach a RunE.
		ae = issue.NewErrorContext().
			WithOperation("parse command line").
			WithSuggestion("Run 'pkgwarden --help' for usage").
			Wrap(err).
			Build()
	}

	header := ErrorStyle.Render("Error:")
	if isInterrupt(err) {
		header = WarningStyle.Render("Interrupted:")
	}
	fmt.Fprintln(w, header+" "+ae.Format(verbose))

	if !verbose || ae.Issue == 0 {
		return
	}
	writeIssuePage(w, ae.Issue, issueStyle)
}

// writeIssuePage prints the catalog page of id to w. A page that fails to
// render is replaced by a note on w.
func writeIssuePage(w io.Writer, id issue.Id, style string) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		fmt.Fprintf(w, "%s help page %d could not be rendered: %v\n", WarningStyle.Render("Note:"), id, err)
		return
	}
	fmt.Fprint(w, rendered)
}

// describe wraps err with the operation and resource it failed on, and with
// the suggestions and catalog entry matching its type.
func describe(op, resource string, err error) *issue.ActionableError {
	ctx := issue.NewErrorContext().WithOperation(op).WithResource(resource).Wrap(err)

	var (
		notFound     *config.NotFoundError
		invalid      *config.InvalidError
		badSetting   *config.InvalidSettingError
		badLevel     *logging.InvalidLevelError
		badFormat    *logging.InvalidFormatError
		unknownType  *installer.UnknownInstallerTypeError
		badName      *installer.InvalidPackageNameError
		notAllowed   *allowlist.PackageNotAllowedError
		badVersion   *allowlist.VersionNotAllowedError
		badEngine    *container.InvalidEngineTypeError
		badRestart   *container.InvalidRestartPolicyError
		toolNotFound *runner.ToolNotFoundError
		timedOut     *runner.TimedOutError
	)

	switch {
	case isInterrupt(err):
		ctx.WithIssue(issue.OperationInterruptedId).
			WithSuggestion("Run the status command to see what state the package was left in")
	case errors.As(err, &notFound):
		ctx.WithIssue(issue.ConfigNotFoundId).WithSuggestions(
			fmt.Sprintf("Create %s with an allowed_packages block for each backend", notFound.Path),
			"Use --config or PKGWARDEN_CONFIG to point at another file",
		)
	case errors.As(err, &invalid):
		ctx.WithIssue(issue.ConfigInvalidId).
			WithSuggestion(fmt.Sprintf("Fix the problems listed above in %s", invalid.Path))
	case errors.As(err, &badSetting):
		ctx.WithIssue(issue.InvalidSettingId).
			WithSuggestion("Use a duration such as 90s or 5m, or a whole number of seconds")
	case errors.As(err, &badLevel):
		ctx.WithIssue(issue.InvalidSettingId).
			WithSuggestion("Valid log levels: debug, info, warn, error")
	case errors.As(err, &badFormat):
		ctx.WithIssue(issue.InvalidSettingId).
			WithSuggestion("Valid log formats: text, json, logfmt")
	case errors.As(err, &unknownType):
		ctx.WithIssue(issue.UnknownInstallerTypeId).
			WithSuggestion("Use one of: " + joinTypes(unknownType.Known))
	case errors.As(err, &badName):
		ctx.WithSuggestion("Pass the bare package name, without flags or spaces")
	case errors.As(err, &notAllowed):
		ctx.WithIssue(issue.PackageNotAllowedId)
		if matches := notAllowed.Suggest(); len(matches) > 0 {
			ctx.WithSuggestion("Did you mean " + strings.Join(matches[:min(len(matches), maxDidYouMean)], ", ") + "?")
		}
		ctx.WithSuggestions(
			fmt.Sprintf("Add %q to allowed_packages in the configuration file", notAllowed.Package),
			"Run 'pkgwarden list' to see the allowed packages",
		)
	case errors.As(err, &badVersion):
		ctx.WithIssue(issue.VersionNotAllowedId).
			WithSuggestion("Pass one of the allowed versions with --version")
	case errors.As(err, &badEngine):
		ctx.WithIssue(issue.ConfigInvalidId).
			WithSuggestion("Set docker.engine to docker or podman")
	case errors.As(err, &badRestart):
		ctx.WithIssue(issue.ConfigInvalidId).
			WithSuggestion("Use a restart policy of no, always, unless-stopped or on-failure")
	case errors.As(err, &toolNotFound):
		ctx.WithIssue(issue.ToolNotFoundId).WithSuggestions(
			fmt.Sprintf("Install %s and make sure it is on PATH", toolNotFound.Tool),
			"Or set command: in the backend block of the configuration file",
		)
	case errors.As(err, &timedOut):
		ctx.WithIssue(issue.ExecutionTimedOutId).
			WithSuggestion(fmt.Sprintf("Raise --timeout (currently %s)", timedOut.Timeout))
	case errors.Is(err, runner.ErrExecutionFailed):
		ctx.WithIssue(issue.ExecutionFailedId).
			WithSuggestion("Re-run with --verbose to see the command and its output")
	case errors.Is(err, ErrInvalidListFormat):
		ctx.WithSuggestion("Use --format table, yaml, json or toml")
	}

	return ctx.Build()
}

func joinTypes(types []installer.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
