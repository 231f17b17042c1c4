// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/container"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

// DockerInstaller runs a package as a long-lived container named after it.
// The requested version is the image tag.
type DockerInstaller struct {
	backend
	engine container.EngineType
	spec   container.Spec
	cli    *container.CLI
}

// NewDocker creates the container backend. The container configuration of
// the package is resolved from cfg, or defaulted.
func NewDocker(req Request, cfg config.Backend, deps Deps) *DockerInstaller {
	b := newBackend(req, cfg, deps)
	return &DockerInstaller{
		backend: b,
		engine:  cfg.Engine,
		spec:    cfg.ContainerSpec(req.Package),
		cli:     container.NewCLI(cfg.Engine, b.runner).WithBinary(cfg.Command),
	}
}

// Name returns the backend name.
func (d *DockerInstaller) Name() string {
	return TypeDocker.String()
}

// Spec returns the resolved container configuration.
func (d *DockerInstaller) Spec() container.Spec {
	return d.spec
}

// ContainerName returns the name of the managed container.
func (d *DockerInstaller) ContainerName() string {
	return d.req.Package
}

// ImageRef returns the image reference to run.
func (d *DockerInstaller) ImageRef() string {
	return d.spec.ImageRef(d.req.Version)
}

// Install pulls the image when it is not present locally, replaces any
// container of the same name and starts a new one. Cancellation during the
// pull is returned as is, without cleanup.
func (d *DockerInstaller) Install(ctx context.Context) error {
	if err := d.validate(); err != nil {
		return err
	}
	if err := d.engine.Validate(); err != nil {
		return err
	}
	if err := d.spec.Validate(); err != nil {
		return err
	}

	name := d.ContainerName()
	ref := d.ImageRef()

	if err := d.ensureImage(ctx, ref); err != nil {
		return err
	}

	exists, err := d.cli.ContainerExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		d.logger.Info("Removing existing container", "container", name)
		if err := d.cli.Stop(ctx, name); err != nil {
			d.logger.Debug("stop of existing container failed", "error", err)
		}
		if err := d.cli.Remove(ctx, name); err != nil {
			d.logger.Debug("removal of existing container failed", "error", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	d.logger.Info("Starting container", "container", name, "image", ref)
	id, err := d.cli.Run(ctx, name, d.spec, ref)
	if err != nil {
		return err
	}
	d.logger.Info("Container started successfully", "id", id)
	d.logAccessURL()
	return nil
}

func (d *DockerInstaller) ensureImage(ctx context.Context, ref string) error {
	present, err := d.cli.ImageExists(ctx, d.req.Package, ref)
	if err != nil {
		return err
	}
	if present {
		d.logger.Info("Image already exists locally", "image", ref)
		return nil
	}

	d.logger.Info("Pulling image", "image", ref)
	d.logger.Info("This may take a few minutes...")
	err = d.cli.Pull(ctx, d.req.Package, ref, d.logPullLine)
	if ctxErr := ctx.Err(); ctxErr != nil {
		d.logger.Warn("Image pull interrupted", "image", ref)
		return ctxErr
	}
	if err != nil {
		return err
	}
	d.logger.Info("Successfully pulled image", "image", ref)
	return nil
}

func (d *DockerInstaller) logPullLine(line string) {
	if strings.Contains(line, "Pulling from") || strings.Contains(line, "Status:") {
		d.logger.Info(line)
		return
	}
	d.logger.Debug(line)
}

// Uninstall stops and removes the container. A container that does not
// exist is not an error.
func (d *DockerInstaller) Uninstall(ctx context.Context) error {
	if err := d.validatePackage(); err != nil {
		return err
	}

	name := d.ContainerName()
	d.logger.Info("Uninstalling container", "container", name)

	if err := d.cli.Stop(ctx, name); err != nil {
		return d.absent(err)
	}
	d.logger.Info("Stopped container", "container", name)

	if err := d.cli.Remove(ctx, name); err != nil {
		return d.absent(err)
	}
	d.logger.Info("Removed container", "container", name)
	return nil
}

// absent turns an execution failure of stop or rm into the benign
// "already gone" outcome.
func (d *DockerInstaller) absent(err error) error {
	if !errors.Is(err, runner.ErrExecutionFailed) {
		return err
	}
	d.logger.Warn(fmt.Sprintf("Container '%s' not found or already removed", d.ContainerName()))
	return nil
}

// Status reports whether the container is running. A stopped container and
// a missing one both report false.
func (d *DockerInstaller) Status(ctx context.Context) (bool, error) {
	if err := validatePackageName(d.req.Package); err != nil {
		return false, err
	}

	name := d.ContainerName()
	d.logger.Info("Checking status of container", "container", name)

	out, err := d.cli.Running(ctx, name)
	if errors.Is(err, runner.ErrExecutionFailed) {
		d.logger.Warn("Failed to check container status", "error", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if container.ListsName(out, name) {
		d.logger.Info(fmt.Sprintf("Container '%s' is running", name))
		d.logger.Info("Details", "details", strings.TrimSpace(out))
		d.logAccessURL()
		return true, nil
	}

	all, err := d.cli.Any(ctx, name)
	if err != nil && !errors.Is(err, runner.ErrExecutionFailed) {
		return false, err
	}
	if container.ListsName(all, name) {
		d.logger.Warn(fmt.Sprintf("Container '%s' exists but is not running", name))
		d.logger.Info("Details", "details", strings.TrimSpace(all))
	} else {
		d.logger.Warn(fmt.Sprintf("Container '%s' does not exist", name))
	}
	return false, nil
}

func (d *DockerInstaller) logAccessURL() {
	if d.spec.AccessURL != "" {
		d.logger.Info("Access URL", "url", d.spec.AccessURL)
	}
}
