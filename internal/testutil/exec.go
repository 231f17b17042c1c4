// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	helperProcessEnv = "GO_WANT_HELPER_PROCESS"
	helperExitEnv    = "GO_HELPER_EXIT_CODE"
	helperStdoutEnv  = "GO_HELPER_STDOUT"
	helperStderrEnv  = "GO_HELPER_STDERR"
	helperDelayEnv   = "GO_HELPER_DELAY"

	// DockerStateEnv names the JSON file backing the stateful fake docker.
	DockerStateEnv = "PKGWARDEN_FAKE_DOCKER_STATE"
	// PackageStateEnv names the file backing the fake pip and brew.
	PackageStateEnv = "PKGWARDEN_FAKE_PACKAGE_STATE"
)

type (
	// CommandRecorder captures the commands a runner creates and replaces
	// them with a re-exec of the test binary (the TestHelperProcess pattern).
	// Each test package that uses it must declare:
	//
	//	func TestHelperProcess(t *testing.T) { testutil.HelperProcess() }
	CommandRecorder struct {
		mu sync.Mutex
		// Invocations records each created command in order.
		Invocations []Invocation
		// Default is the response for commands without a specific one.
		Default Response
		// responses are keyed by "<tool> <subcommand>", e.g. "pip show".
		responses map[string]Response
		// dockerState, when set, routes docker commands to the stateful fake.
		dockerState string
	}

	// Invocation is one recorded command.
	Invocation struct {
		Name string
		Args []string
	}

	// Response is what the helper process prints and exits with.
	Response struct {
		ExitCode int
		Stdout   string
		Stderr   string
		// Delay is slept before responding, to exercise timeouts.
		Delay time.Duration
	}
)

// NewCommandRecorder creates a recorder whose commands succeed with no output.
func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{responses: make(map[string]Response)}
}

// Respond sets the response for commands whose tool and first argument
// match key, e.g. "pip show".
func (m *CommandRecorder) Respond(key string, resp Response) *CommandRecorder {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[key] = resp
	return m
}

// WithDocker backs docker commands with a stateful fake daemon whose state
// lives in a file under t.TempDir().
func (m *CommandRecorder) WithDocker(t testing.TB) *CommandRecorder {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dockerState = filepath.Join(t.TempDir(), "docker-state.json")
	return m
}

// DockerState loads the current state of the fake daemon.
func (m *CommandRecorder) DockerState(t testing.TB) DockerState {
	t.Helper()
	m.mu.Lock()
	path := m.dockerState
	m.mu.Unlock()
	if path == "" {
		t.Fatal("DockerState() called on a recorder without WithDocker()")
	}
	st, err := loadDockerState(path)
	if err != nil {
		t.Fatalf("load fake docker state: %v", err)
	}
	return st
}

// SeedDocker replaces the state of the fake daemon.
func (m *CommandRecorder) SeedDocker(t testing.TB, st DockerState) {
	t.Helper()
	m.mu.Lock()
	path := m.dockerState
	m.mu.Unlock()
	if err := saveDockerState(path, st); err != nil {
		t.Fatalf("seed fake docker state: %v", err)
	}
}

// CommandFunc returns a function matching runner.ExecCommandFunc.
func (m *CommandRecorder) CommandFunc() func(ctx context.Context, name string, args ...string) *exec.Cmd {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		m.mu.Lock()
		m.Invocations = append(m.Invocations, Invocation{Name: name, Args: slices.Clone(args)})
		resp := m.response(name, args)
		state := m.dockerState
		m.mu.Unlock()

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			helperProcessEnv + "=1",
			fmt.Sprintf("%s=%d", helperExitEnv, resp.ExitCode),
			helperStdoutEnv + "=" + resp.Stdout,
			helperStderrEnv + "=" + resp.Stderr,
			helperDelayEnv + "=" + resp.Delay.String(),
		}
		if state != "" {
			cmd.Env = append(cmd.Env, DockerStateEnv+"="+state)
		}
		return cmd
	}
}

func (m *CommandRecorder) response(name string, args []string) Response {
	key := filepath.Base(name)
	if len(args) > 0 {
		key += " " + args[0]
	}
	if resp, ok := m.responses[key]; ok {
		return resp
	}
	return m.Default
}

// LookPath returns a runner.LookPathFunc that resolves every tool to its own
// name, except the missing ones, which fail like exec.LookPath does.
func LookPath(missing ...string) func(string) (string, error) {
	return func(file string) (string, error) {
		if slices.Contains(missing, file) {
			return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
		}
		return file, nil
	}
}

// Calls returns a copy of the recorded invocations.
func (m *CommandRecorder) Calls() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.Invocations)
}

// Commands returns each recorded invocation as "name arg1 arg2 ...".
func (m *CommandRecorder) Commands() []string {
	calls := m.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = strings.Join(append([]string{c.Name}, c.Args...), " ")
	}
	return out
}

// LastArgs returns the arguments from the most recent invocation.
func (m *CommandRecorder) LastArgs() []string {
	calls := m.Calls()
	if len(calls) == 0 {
		return nil
	}
	return calls[len(calls)-1].Args
}

// AssertInvocationCount verifies the number of command invocations.
func (m *CommandRecorder) AssertInvocationCount(t testing.TB, expected int) {
	t.Helper()
	if got := len(m.Calls()); got != expected {
		t.Errorf("expected %d invocations, got %d: %v", expected, got, m.Commands())
	}
}

// AssertCommands verifies the exact sequence of commands.
func (m *CommandRecorder) AssertCommands(t testing.TB, expected ...[]string) {
	t.Helper()
	calls := m.Calls()
	if len(calls) != len(expected) {
		t.Fatalf("expected %d commands, got %d: %v", len(expected), len(calls), m.Commands())
	}
	for i, want := range expected {
		got := append([]string{calls[i].Name}, calls[i].Args...)
		if !slices.Equal(got, want) {
			t.Errorf("command %d = %q, want %q", i, got, want)
		}
	}
}

// Reset clears all recorded invocations.
func (m *CommandRecorder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invocations = m.Invocations[:0]
}
