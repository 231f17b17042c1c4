// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/installer"
	"github.com/pkgwarden/pkgwarden/internal/issue"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

type (
	// staticProvider serves a fixed document, or a fixed error.
	staticProvider struct {
		result *config.Result
		err    error
	}

	// fakeRunner answers every invocation with the same result and records
	// the argument vectors.
	fakeRunner struct {
		mu     sync.Mutex
		result runner.Result
		err    error
		calls  [][]string
	}
)

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Result, error) {
	return p.result, p.err
}

func (r *fakeRunner) Run(_ context.Context, inv runner.Invocation) (runner.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv.Args)
	return r.result, r.err
}

func (r *fakeRunner) Stream(ctx context.Context, inv runner.Invocation, _ func(string)) (runner.Result, error) {
	return r.Run(ctx, inv)
}

func providerFor(t *testing.T, doc string) staticProvider {
	t.Helper()
	res, err := config.Parse("config.yaml", []byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return staticProvider{result: res}
}

func runCLI(t *testing.T, deps Dependencies, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	deps.Stdout, deps.Stderr = &out, &errOut
	code = Run(t.Context(), deps, args...)
	return code, out.String(), errOut.String()
}

const pipDocument = `
pip:
  allowed_packages:
    requests: ["2.31.0", latest]
`

func TestRun_Install(t *testing.T) {
	t.Parallel()

	r := &fakeRunner{}
	code, stdout, _ := runCLI(t, Dependencies{Config: providerFor(t, pipDocument), Runner: r},
		"install", "pip", "requests", "--version", "2.31.0")
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d", code, ExitOK)
	}
	if !strings.Contains(stdout, "Installed requests 2.31.0 using pip") {
		t.Errorf("stdout = %q", stdout)
	}
	want := []string{"pip", "install", "requests==2.31.0"}
	if len(r.calls) != 1 || strings.Join(r.calls[0], " ") != strings.Join(want, " ") {
		t.Errorf("calls = %q, want [%q]", r.calls, want)
	}
}

func TestRun_ExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		runErr    error
		args      []string
		wantCode  int
		wantInErr string
	}{
		{"status not installed", &runner.ExecutionFailedError{Operation: "status", Package: "requests", ExitCode: 1},
			[]string{"status", "pip", "requests"}, ExitOK, ""},
		{"not allowed", nil, []string{"install", "pip", "reqests"}, ExitFailure, "Did you mean requests?"},
		{"unknown type", nil, []string{"install", "rpm", "x"}, ExitFailure, "Use one of: pip, brew, docker"},
		{"tool missing", &runner.ToolNotFoundError{Tool: "pip"}, []string{"install", "pip", "requests"},
			ExitFailure, "Install pip and make sure it is on PATH"},
		{"interrupted", context.Canceled, []string{"install", "pip", "requests"}, ExitInterrupted, "Interrupted:"},
		{"usage", nil, []string{"install", "pip"}, ExitFailure, "pkgwarden --help"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRunner{err: tt.runErr}
			code, _, stderr := runCLI(t, Dependencies{Config: providerFor(t, pipDocument), Runner: r}, tt.args...)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tt.wantCode, stderr)
			}
			if tt.wantInErr != "" && !strings.Contains(stderr, tt.wantInErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr, tt.wantInErr)
			}
		})
	}
}

func TestRun_ConfigErrorIsRenderedOnce(t *testing.T) {
	t.Parallel()

	provider := staticProvider{err: &config.NotFoundError{Path: "config.yaml"}}
	code, stdout, stderr := runCLI(t, Dependencies{Config: provider}, "list")
	if code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if n := strings.Count(stderr, `configuration file "config.yaml" not found`); n != 1 {
		t.Errorf("error printed %d times, want once:\n%s", n, stderr)
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"canceled", fmt.Errorf("pull: %w", context.Canceled), ExitInterrupted},
		{"described cancel", describe("install", "pip:x", context.Canceled), ExitInterrupted},
		{"timeout", &runner.TimedOutError{}, ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	notAllowed := allowlist.New(allowlist.Entry{Package: "requests", Versions: []string{"latest"}}).
		Validate("reqests", "latest")

	tests := []struct {
		name      string
		err       error
		wantIssue issue.Id
		wantSug   string
	}{
		{"config not found", &config.NotFoundError{Path: "c.yaml"}, issue.ConfigNotFoundId, "Create c.yaml"},
		{"config invalid", &config.InvalidError{Path: "c.yaml"}, issue.ConfigInvalidId, "c.yaml"},
		{"bad setting", &config.InvalidSettingError{Key: "timeout"}, issue.InvalidSettingId, "duration"},
		{"unknown type", installer.Type("rpm").Validate(), issue.UnknownInstallerTypeId, "pip, brew, docker"},
		{"not allowed", notAllowed, issue.PackageNotAllowedId, "Did you mean requests?"},
		{"version", &allowlist.VersionNotAllowedError{Package: "a", Version: "1"}, issue.VersionNotAllowedId, "--version"},
		{"tool", &runner.ToolNotFoundError{Tool: "brew"}, issue.ToolNotFoundId, "Install brew"},
		{"failed", &runner.ExecutionFailedError{}, issue.ExecutionFailedId, "--verbose"},
		{"timed out", &runner.TimedOutError{Timeout: 90e9}, issue.ExecutionTimedOutId, "currently 1m30s"},
		{"canceled", context.Canceled, issue.OperationInterruptedId, "status"},
		{"list format", ErrInvalidListFormat, 0, "--format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ae := describe("install", "pip:requests", tt.err)
			if ae.Issue != tt.wantIssue {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.wantIssue)
			}
			if !strings.Contains(strings.Join(ae.Suggestions, "\n"), tt.wantSug) {
				t.Errorf("Suggestions = %q, want one containing %q", ae.Suggestions, tt.wantSug)
			}
			if !errors.Is(ae, tt.err) {
				t.Errorf("describe() does not wrap %v", tt.err)
			}
			if !strings.HasPrefix(ae.Error(), "failed to install pip:requests: ") {
				t.Errorf("Error() = %q", ae.Error())
			}
		})
	}
}

func TestWriteIssuePage(t *testing.T) {
	t.Parallel()

	t.Run("rendered", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		writeIssuePage(&out, issue.ConfigNotFoundId, "notty")
		if !strings.Contains(out.String(), "Configuration file not found") {
			t.Errorf("output = %q, want the catalog page", out.String())
		}
	})

	t.Run("render failure goes to the same writer", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		writeIssuePage(&out, issue.ConfigNotFoundId, "/nonexistent/glamour-style.json")
		got := out.String()
		if !strings.Contains(got, "Note:") || !strings.Contains(got, "could not be rendered") {
			t.Errorf("output = %q, want a note about the failed page", got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		writeIssuePage(&out, issue.Id(9999), "notty")
		if out.Len() != 0 {
			t.Errorf("output = %q, want nothing", out.String())
		}
	})
}
