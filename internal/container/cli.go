// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"strings"

	"github.com/pkgwarden/pkgwarden/internal/runner"
)

// ShortIDLength is the length of the container id reported after a run.
const ShortIDLength = 12

type (
	// Runner is the subset of runner.Runner used by CLI.
	Runner interface {
		Run(ctx context.Context, inv runner.Invocation) (runner.Result, error)
		Stream(ctx context.Context, inv runner.Invocation, onLine func(string)) (runner.Result, error)
	}

	// CLI executes container commands for one package.
	CLI struct {
		engine EngineType
		binary string
		runner Runner
	}
)

// NewCLI creates a CLI for the given engine ("" means docker).
func NewCLI(engine EngineType, r Runner) *CLI {
	return &CLI{engine: engine, runner: r}
}

// WithBinary overrides the executable of the engine, e.g. a full path.
// An empty binary restores the engine default.
func (c *CLI) WithBinary(binary string) *CLI {
	c.binary = binary
	return c
}

// Binary returns the name of the container CLI executable.
func (c *CLI) Binary() string {
	if c.binary != "" {
		return c.binary
	}
	return c.engine.Binary()
}

// ImageExists reports whether ref is present locally. A failing query
// counts as absent.
func (c *CLI) ImageExists(ctx context.Context, pkg, ref string) (bool, error) {
	res, err := c.runner.Run(ctx, c.invocation("image check", pkg, ImagesArgs(ref)))
	if errors.Is(err, runner.ErrExecutionFailed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// Pull pulls ref, passing every output line to onLine as it arrives.
func (c *CLI) Pull(ctx context.Context, pkg, ref string, onLine func(string)) error {
	_, err := c.runner.Stream(ctx, c.invocation("pull", pkg, PullArgs(ref)), onLine)
	return err
}

// ContainerExists reports whether a container named name exists in any
// state. A failing query counts as absent.
func (c *CLI) ContainerExists(ctx context.Context, name string) (bool, error) {
	res, err := c.runner.Run(ctx, c.invocation("container check", name, ExistsArgs(name)))
	if errors.Is(err, runner.ErrExecutionFailed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(res.Stdout) != "", nil
}

// Run starts a detached container and returns its short id.
func (c *CLI) Run(ctx context.Context, name string, spec Spec, ref string) (string, error) {
	res, err := c.runner.Run(ctx, c.invocation("run", name, RunArgs(name, spec, ref)))
	if err != nil {
		return "", err
	}
	return ShortID(res.Stdout), nil
}

// Stop stops the named container.
func (c *CLI) Stop(ctx context.Context, name string) error {
	_, err := c.runner.Run(ctx, c.invocation("stop", name, StopArgs(name)))
	return err
}

// Remove removes the named container.
func (c *CLI) Remove(ctx context.Context, name string) error {
	_, err := c.runner.Run(ctx, c.invocation("remove", name, RemoveArgs(name)))
	return err
}

// Running returns the status table of the named container when running.
func (c *CLI) Running(ctx context.Context, name string) (string, error) {
	res, err := c.runner.Run(ctx, c.invocation("status", name, RunningArgs(name)))
	return res.Stdout, err
}

// Any returns the status table of the named container in any state.
// A nonzero exit is not an error here.
func (c *CLI) Any(ctx context.Context, name string) (string, error) {
	inv := c.invocation("status", name, AnyArgs(name))
	inv.AllowFailure = true
	res, err := c.runner.Run(ctx, inv)
	return res.Stdout, err
}

func (c *CLI) invocation(op, pkg string, args []string) runner.Invocation {
	return runner.Invocation{
		Args:      append([]string{c.Binary()}, args...),
		Operation: op,
		Package:   pkg,
	}
}

// ShortID returns the first ShortIDLength characters of a run's output.
func ShortID(out string) string {
	id := strings.TrimSpace(out)
	if len(id) > ShortIDLength {
		id = id[:ShortIDLength]
	}
	return id
}

// ListsName reports whether a ps status table has a row for name. The first
// line is the table header and is skipped; rows match on the exact name
// column.
func ListsName(table, name string) bool {
	lines := strings.Split(strings.TrimSpace(table), "\n")
	if len(lines) < 2 {
		return false
	}
	for _, row := range lines[1:] {
		fields := strings.Fields(row)
		if len(fields) > 0 && fields[0] == name {
			return true
		}
	}
	return false
}
