// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps reading output after the command has
// exited or been killed. A detached grandchild may hold the pipes open.
const waitDelay = 2 * time.Second

var errTimeoutBudget = errors.New("runner timeout budget elapsed")

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// LookPathFunc resolves an executable name the way exec.LookPath does.
	LookPathFunc func(file string) (string, error)

	// Option configures a Runner.
	Option func(*Runner)

	// Invocation describes one external command.
	Invocation struct {
		// Args is the full argument vector; Args[0] is the tool.
		Args []string
		// Operation labels the command in logs and errors (e.g. "install").
		Operation string
		// Package is the package the command operates on.
		Package string
		// AllowFailure returns a nonzero exit as a plain Result instead of
		// an ExecutionFailedError. Status queries set it.
		AllowFailure bool
	}

	// Result is the outcome of a command that ran to completion.
	Result struct {
		ExitCode ExitCode
		Stdout   string
		Stderr   string
	}

	// Runner spawns external commands and classifies their outcome.
	Runner struct {
		execCommand ExecCommandFunc
		lookPath    LookPathFunc
		timeout     time.Duration
		logger      *slog.Logger
		dryRun      io.Writer
	}
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(r *Runner) {
		r.execCommand = fn
	}
}

// WithLookPath sets the function used to resolve tools on PATH.
func WithLookPath(fn LookPathFunc) Option {
	return func(r *Runner) {
		r.lookPath = fn
	}
}

// WithTimeout bounds every command. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithDryRun makes the runner print each command to w instead of running it.
// Printed commands are reported as successful with empty output.
func WithDryRun(w io.Writer) Option {
	return func(r *Runner) {
		r.dryRun = w
	}
}

// New creates a Runner that executes real processes unless overridden.
func New(opts ...Option) *Runner {
	r := &Runner{
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the configured per-command budget.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes inv to completion, capturing stdout and stderr separately.
func (r *Runner) Run(ctx context.Context, inv Invocation) (Result, error) {
	path, err := r.resolve(inv)
	if err != nil || path == "" {
		return Result{}, err
	}
	runCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.command(runCtx, path, inv.Args[1:])
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	return r.classify(runCtx, inv, res, runErr)
}

// Stream executes inv with stdout and stderr merged into a single pipe and
// calls onLine for every non-empty line while the process runs. The merged
// output is also returned in Result.Stdout.
func (r *Runner) Stream(ctx context.Context, inv Invocation, onLine func(line string)) (Result, error) {
	path, err := r.resolve(inv)
	if err != nil || path == "" {
		return Result{}, err
	}
	runCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := r.command(runCtx, path, inv.Args[1:])
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return r.classify(runCtx, inv, Result{}, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	// Lines have no length limit; the reader runs until the pipe closes.
	var combined strings.Builder
	br := bufio.NewReader(pr)
	for {
		raw, readErr := br.ReadString('\n')
		if line := strings.TrimSpace(raw); line != "" {
			combined.WriteString(line)
			combined.WriteByte('\n')
			if onLine != nil {
				onLine(line)
			}
		}
		if readErr != nil {
			break
		}
	}

	return r.classify(runCtx, inv, Result{Stdout: combined.String()}, <-waitErr)
}

// command builds the process for path in its own process group. Cancelling
// ctx kills the whole group, and Wait stops waiting on the output pipes
// waitDelay after the process is gone.
func (r *Runner) command(ctx context.Context, path string, args []string) *exec.Cmd {
	cmd := r.execCommand(ctx, path, args...)
	setProcGroup(cmd)
	if cmd.Cancel != nil {
		cmd.Cancel = func() error { return killProcGroup(cmd) }
	}
	cmd.WaitDelay = waitDelay
	return cmd
}

// resolve logs the invocation and finds its tool on PATH. An empty path with
// a nil error means the command was printed by a dry run.
func (r *Runner) resolve(inv Invocation) (string, error) {
	if len(inv.Args) == 0 {
		return "", &ExecutionFailedError{
			Operation: inv.Operation,
			Package:   inv.Package,
			ExitCode:  ExitFailure,
			Cause:     errors.New("empty command"),
		}
	}

	r.logger.Info(fmt.Sprintf("Running %s command", inv.Operation), "package", inv.Package)
	r.logger.Debug("command line", "cmd", Render(inv.Args))

	if r.dryRun != nil {
		_, _ = fmt.Fprintln(r.dryRun, Render(inv.Args))
		return "", nil
	}

	path, err := r.lookPath(inv.Args[0])
	if err != nil {
		return "", &ToolNotFoundError{Tool: inv.Args[0], Cause: err}
	}
	return path, nil
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeoutCause(ctx, r.timeout, errTimeoutBudget)
}

func (r *Runner) classify(ctx context.Context, inv Invocation, res Result, err error) (Result, error) {
	if errors.Is(err, exec.ErrWaitDelay) && ctx.Err() == nil {
		// The command exited 0; something it left behind kept the output open.
		r.logger.Debug("output still open after exit", "package", inv.Package)
		err = nil
	}
	if err == nil {
		res.ExitCode = ExitSuccess
		r.logger.Info(fmt.Sprintf("%s command completed", inv.Operation), "package", inv.Package)
		r.logOutput(res)
		return res, nil
	}

	if ctx.Err() != nil {
		if errors.Is(context.Cause(ctx), errTimeoutBudget) {
			res.ExitCode = ExitTimedOut
			return res, &TimedOutError{Operation: inv.Operation, Package: inv.Package, Timeout: r.timeout}
		}
		// Cancellation by the caller is passed through untouched.
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res.ExitCode = ExitCode(exitErr.ExitCode())
		if res.ExitCode < 0 {
			res.ExitCode = ExitFailure
		}
		r.logger.Debug(fmt.Sprintf("%s command exited", inv.Operation), "package", inv.Package, "exit_code", res.ExitCode)
		r.logOutput(res)
		if inv.AllowFailure {
			return res, nil
		}
		return res, &ExecutionFailedError{
			Operation: inv.Operation,
			Package:   inv.Package,
			ExitCode:  res.ExitCode,
			Stdout:    res.Stdout,
			Stderr:    res.Stderr,
		}
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		res.ExitCode = ExitNotFound
		return res, &ToolNotFoundError{Tool: inv.Args[0], Cause: err}
	case errors.Is(err, fs.ErrPermission):
		res.ExitCode = ExitPermissionDenied
	default:
		res.ExitCode = ExitFailure
	}

	return res, &ExecutionFailedError{
		Operation: inv.Operation,
		Package:   inv.Package,
		ExitCode:  res.ExitCode,
		Stdout:    res.Stdout,
		Stderr:    res.Stderr,
		Cause:     err,
	}
}

func (r *Runner) logOutput(res Result) {
	if s := strings.TrimSpace(res.Stdout); s != "" {
		r.logger.Debug("stdout", "output", s)
	}
	if s := strings.TrimSpace(res.Stderr); s != "" {
		r.logger.Debug("stderr", "output", s)
	}
}
