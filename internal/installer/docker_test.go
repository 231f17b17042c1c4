// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/config"
	"github.com/pkgwarden/pkgwarden/internal/container"
	"github.com/pkgwarden/pkgwarden/internal/runner"
	"github.com/pkgwarden/pkgwarden/internal/testutil"
)

func dockerConfig() config.Backend {
	cfg := allowing(entry("nginx", "latest", "1.25"), entry("redis", "7"))
	cfg.Configurations = map[string]container.Spec{
		"nginx": {
			Image:       "nginx",
			Restart:     "always",
			Ports:       container.Pairs{{Key: "8080", Value: "80"}},
			Environment: container.Pairs{{Key: "TZ", Value: "UTC"}},
			Volumes:     container.Pairs{{Key: "/srv/www", Value: "/usr/share/nginx/html"}},
			AccessURL:   "http://localhost:8080",
		},
	}
	return cfg
}

func newDockerTest(t *testing.T, version string) (*DockerInstaller, *testutil.CommandRecorder, *syncBuffer) {
	t.Helper()
	rec := testutil.NewCommandRecorder().WithDocker(t)
	deps, logs := testDeps(rec)
	return NewDocker(NewRequest(TypeDocker, "nginx", version), dockerConfig(), deps), rec, logs
}

func TestDocker_InstallFresh(t *testing.T) {
	t.Parallel()

	d, rec, logs := newDockerTest(t, "1.25")
	if err := d.Install(t.Context()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	rec.AssertCommands(t,
		[]string{"docker", "images", "-q", "nginx:1.25"},
		[]string{"docker", "pull", "nginx:1.25"},
		[]string{"docker", "ps", "-aq", "--filter", "name=^nginx$"},
		[]string{"docker", "run", "-d", "--name", "nginx",
			"-p8080:80", "-eTZ=UTC", "-v/srv/www:/usr/share/nginx/html", "--restart=always", "nginx:1.25"},
	)

	out := logs.String()
	for _, want := range []string{
		"1.25: Pulling from library/nginx",
		"Status: Downloaded newer image for nginx:1.25",
		"Container started successfully",
		"id=000000000000",
		"http://localhost:8080",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("logs missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "level=DEBUG msg=\"Digest:") {
		t.Errorf("pull lines without a marker should be logged at debug:\n%s", out)
	}
}

func TestDocker_InstallIsIdempotent(t *testing.T) {
	t.Parallel()

	d, rec, _ := newDockerTest(t, "latest")
	for i := range 2 {
		if err := d.Install(t.Context()); err != nil {
			t.Fatalf("Install() #%d error = %v", i+1, err)
		}
	}

	st := rec.DockerState(t)
	if len(st.Containers) != 1 {
		t.Fatalf("containers = %+v, want exactly one", st.Containers)
	}
	if running := st.Running("nginx"); len(running) != 1 {
		t.Errorf("running nginx containers = %d, want 1", len(running))
	}

	cmds := rec.Commands()
	var pulls, stops, removes int
	for _, c := range cmds {
		switch {
		case strings.HasPrefix(c, "docker pull"):
			pulls++
		case strings.HasPrefix(c, "docker stop"):
			stops++
		case strings.HasPrefix(c, "docker rm"):
			removes++
		}
	}
	if pulls != 1 || stops != 1 || removes != 1 {
		t.Errorf("pulls, stops, removes = %d, %d, %d, want 1, 1, 1 (%v)", pulls, stops, removes, cmds)
	}
}

func TestDocker_InstallDefaultSpec(t *testing.T) {
	t.Parallel()

	rec := testutil.NewCommandRecorder().WithDocker(t)
	rec.SeedDocker(t, testutil.DockerState{Images: []string{"redis:7"}})
	deps, _ := testDeps(rec)
	d := NewDocker(NewRequest(TypeDocker, "redis", "7"), dockerConfig(), deps)

	if err := d.Install(t.Context()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	rec.AssertCommands(t,
		[]string{"docker", "images", "-q", "redis:7"},
		[]string{"docker", "ps", "-aq", "--filter", "name=^redis$"},
		[]string{"docker", "run", "-d", "--name", "redis", "--restart=unless-stopped", "redis:7"},
	)
}

func TestDocker_InstallPullFailure(t *testing.T) {
	t.Parallel()

	cfg := config.Backend{}.WithoutAllowlist()
	cfg.Configurations = map[string]container.Spec{"app": {Image: "missing/app"}}

	rec := testutil.NewCommandRecorder().WithDocker(t)
	deps, _ := testDeps(rec)
	d := NewDocker(NewRequest(TypeDocker, "app", ""), cfg, deps)

	err := d.Install(t.Context())
	var failed *runner.ExecutionFailedError
	if !errors.As(err, &failed) || failed.Operation != "pull" {
		t.Fatalf("Install() error = %v, want a failed pull", err)
	}
	if !strings.Contains(failed.Stdout, "pull access denied") {
		t.Errorf("Stdout = %q, want the pull output", failed.Stdout)
	}
	if len(rec.DockerState(t).Containers) != 0 {
		t.Error("no container should be started after a failed pull")
	}
}

func TestDocker_InstallInterruptedPull(t *testing.T) {
	t.Parallel()

	rec := testutil.NewCommandRecorder().Respond("docker pull", testutil.Response{Delay: 10 * time.Second})
	deps, logs := testDeps(rec)
	d := NewDocker(NewRequest(TypeDocker, "nginx", ""), dockerConfig(), deps)

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(300*time.Millisecond, cancel)

	err := d.Install(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Install() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, runner.ErrExecutionFailed) {
		t.Error("interruption must not be reported as an execution failure")
	}
	if !strings.Contains(logs.String(), "Image pull interrupted") {
		t.Errorf("logs = %q, want an interruption warning", logs.String())
	}
	if got := rec.Commands(); len(got) != 2 {
		t.Errorf("commands = %v, want only the image check and the pull", got)
	}
}

func TestDocker_InstallValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pkg     string
		version string
		mutate  func(*config.Backend)
		wantErr error
	}{
		{"package not allowed", "postgres", "latest", nil, allowlist.ErrPackageNotAllowed},
		{"tag not allowed", "nginx", "1.24", nil, allowlist.ErrVersionNotAllowed},
		{"bad engine", "nginx", "latest", func(b *config.Backend) { b.Engine = "rkt" }, container.ErrInvalidEngineType},
		{
			"bad restart policy", "nginx", "latest",
			func(b *config.Backend) {
				spec := b.Configurations["nginx"]
				spec.Restart = "sometimes"
				b.Configurations["nginx"] = spec
			},
			container.ErrInvalidRestartPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := dockerConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			rec := testutil.NewCommandRecorder()
			deps, _ := testDeps(rec)
			d := NewDocker(NewRequest(TypeDocker, tt.pkg, tt.version), cfg, deps)

			if err := d.Install(t.Context()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Install() error = %v, want %v", err, tt.wantErr)
			}
			rec.AssertInvocationCount(t, 0)
		})
	}
}

func TestDocker_Uninstall(t *testing.T) {
	t.Parallel()

	t.Run("running container", func(t *testing.T) {
		t.Parallel()
		d, rec, _ := newDockerTest(t, "")
		rec.SeedDocker(t, testutil.DockerState{
			Containers: []testutil.FakeContainer{{ID: strings.Repeat("a", 64), Name: "nginx", Running: true}},
		})

		if err := d.Uninstall(t.Context()); err != nil {
			t.Fatalf("Uninstall() error = %v", err)
		}
		rec.AssertCommands(t,
			[]string{"docker", "stop", "nginx"},
			[]string{"docker", "rm", "nginx"},
		)
		if n := len(rec.DockerState(t).Containers); n != 0 {
			t.Errorf("containers left = %d, want 0", n)
		}
	})

	t.Run("missing container", func(t *testing.T) {
		t.Parallel()
		d, rec, logs := newDockerTest(t, "")

		if err := d.Uninstall(t.Context()); err != nil {
			t.Fatalf("Uninstall() error = %v, want nil for a missing container", err)
		}
		rec.AssertCommands(t, []string{"docker", "stop", "nginx"})
		if !strings.Contains(logs.String(), "not found or already removed") {
			t.Errorf("logs = %q, want a warning", logs.String())
		}
	})

	t.Run("not allowed", func(t *testing.T) {
		t.Parallel()
		rec := testutil.NewCommandRecorder()
		deps, _ := testDeps(rec)
		d := NewDocker(NewRequest(TypeDocker, "postgres", ""), dockerConfig(), deps)

		if err := d.Uninstall(t.Context()); !errors.Is(err, allowlist.ErrPackageNotAllowed) {
			t.Errorf("Uninstall() error = %v, want ErrPackageNotAllowed", err)
		}
		rec.AssertInvocationCount(t, 0)
	})

	t.Run("tool not found", func(t *testing.T) {
		t.Parallel()
		deps := Deps{Runner: runner.New(runner.WithLookPath(testutil.LookPath("docker")))}
		d := NewDocker(NewRequest(TypeDocker, "nginx", ""), dockerConfig(), deps)

		if err := d.Uninstall(t.Context()); !errors.Is(err, runner.ErrToolNotFound) {
			t.Errorf("Uninstall() error = %v, want ErrToolNotFound", err)
		}
	})
}

func TestDocker_Status(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		containers []testutil.FakeContainer
		want       bool
		wantLog    string
		wantCmds   int
	}{
		{
			name:       "running",
			containers: []testutil.FakeContainer{{ID: strings.Repeat("b", 64), Name: "nginx", Running: true, RunArgs: []string{"-p8080:80"}}},
			want:       true,
			wantLog:    "Container 'nginx' is running",
			wantCmds:   1,
		},
		{
			name:       "stopped",
			containers: []testutil.FakeContainer{{ID: strings.Repeat("c", 64), Name: "nginx"}},
			want:       false,
			wantLog:    "Container 'nginx' exists but is not running",
			wantCmds:   2,
		},
		{
			name:     "missing",
			want:     false,
			wantLog:  "Container 'nginx' does not exist",
			wantCmds: 2,
		},
		{
			name:       "other container only",
			containers: []testutil.FakeContainer{{ID: strings.Repeat("d", 64), Name: "redis", Running: true}},
			want:       false,
			wantLog:    "Container 'nginx' does not exist",
			wantCmds:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, rec, logs := newDockerTest(t, "")
			rec.SeedDocker(t, testutil.DockerState{Containers: tt.containers})

			got, err := d.Status(t.Context())
			if err != nil {
				t.Fatalf("Status() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Status() = %v, want %v", got, tt.want)
			}
			if !strings.Contains(logs.String(), tt.wantLog) {
				t.Errorf("logs = %q, want %q", logs.String(), tt.wantLog)
			}
			rec.AssertInvocationCount(t, tt.wantCmds)
		})
	}
}

func TestDocker_StatusRunningShowsAccessURL(t *testing.T) {
	t.Parallel()

	d, rec, logs := newDockerTest(t, "")
	rec.SeedDocker(t, testutil.DockerState{
		Containers: []testutil.FakeContainer{{ID: strings.Repeat("e", 64), Name: "nginx", Running: true, RunArgs: []string{"-p8080:80"}}},
	})

	if ok, err := d.Status(t.Context()); err != nil || !ok {
		t.Fatalf("Status() = %v, %v, want true, nil", ok, err)
	}
	out := logs.String()
	if !strings.Contains(out, "0.0.0.0:8080->80/tcp") || !strings.Contains(out, "http://localhost:8080") {
		t.Errorf("logs = %q, want details and access URL", out)
	}
}

func TestDocker_StatusHeaderWordAsName(t *testing.T) {
	t.Parallel()

	for _, pkg := range []string{"NAMES", "STATUS", "PORTS"} {
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()
			rec := testutil.NewCommandRecorder().WithDocker(t)
			rec.SeedDocker(t, testutil.DockerState{})
			deps, logs := testDeps(rec)
			d := NewDocker(NewRequest(TypeDocker, pkg, ""), dockerConfig(), deps)

			got, err := d.Status(t.Context())
			if err != nil || got {
				t.Fatalf("Status() = %v, %v, want false, nil", got, err)
			}
			if want := "Container '" + pkg + "' does not exist"; !strings.Contains(logs.String(), want) {
				t.Errorf("logs = %q, want %q", logs.String(), want)
			}
		})
	}
}

func TestDocker_StatusQueryFailure(t *testing.T) {
	t.Parallel()

	rec := testutil.NewCommandRecorder().Respond("docker ps", testutil.Response{
		ExitCode: 1,
		Stderr:   "Cannot connect to the Docker daemon",
	})
	deps, _ := testDeps(rec)
	d := NewDocker(NewRequest(TypeDocker, "nginx", ""), dockerConfig(), deps)

	got, err := d.Status(t.Context())
	if err != nil || got {
		t.Errorf("Status() = %v, %v, want false, nil", got, err)
	}
}

func TestDocker_Podman(t *testing.T) {
	t.Parallel()

	cfg := dockerConfig()
	cfg.Engine = container.EngineTypePodman
	rec := testutil.NewCommandRecorder()
	deps, _ := testDeps(rec)
	d := NewDocker(NewRequest(TypeDocker, "nginx", ""), cfg, deps)

	if err := d.Uninstall(t.Context()); err != nil {
		t.Fatalf("Uninstall() error = %v", err)
	}
	rec.AssertCommands(t,
		[]string{"podman", "stop", "nginx"},
		[]string{"podman", "rm", "nginx"},
	)
}

func TestDocker_Accessors(t *testing.T) {
	t.Parallel()

	d := NewDocker(NewRequest(TypeDocker, "nginx", "1.25"), dockerConfig(), Deps{})
	if d.Name() != "docker" {
		t.Errorf("Name() = %q, want docker", d.Name())
	}
	if d.ContainerName() != "nginx" {
		t.Errorf("ContainerName() = %q, want nginx", d.ContainerName())
	}
	if d.ImageRef() != "nginx:1.25" {
		t.Errorf("ImageRef() = %q, want nginx:1.25", d.ImageRef())
	}
	if d.Spec().AccessURL != "http://localhost:8080" {
		t.Errorf("Spec().AccessURL = %q", d.Spec().AccessURL)
	}
}
