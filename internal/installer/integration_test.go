// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/testcontainers/testcontainers-go"

	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/container"
	"github.com/pkgwarden/pkgwarden/internal/runner"
)

// checkTestcontainersAvailable safely checks if a docker daemon is reachable.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestDocker_Integration runs the container backend against a real daemon.
func TestDocker_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("skipping docker integration test: docker CLI not on PATH")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping docker integration test: docker daemon not available")
	}

	name := "pkgwarden-it-" + strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))
	cfg := config.Backend{}.WithoutAllowlist()
	cfg.Configurations = map[string]container.Spec{
		name: {Image: "alpine", Restart: "no"},
	}
	deps := Deps{Runner: runner.New()}

	d := NewDocker(NewRequest(TypeDocker, name, "3.20"), cfg, deps)
	t.Cleanup(func() { _ = d.Uninstall(context.Background()) })

	if err := d.Install(t.Context()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if err := d.Uninstall(t.Context()); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	running, err := d.Status(t.Context())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if running {
		t.Error("Status() = true after Uninstall(), want false")
	}
}
