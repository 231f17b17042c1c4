// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
)

type (
	// DockerState is the persisted state of the fake docker daemon.
	DockerState struct {
		Images     []string        `json:"images"`
		Containers []FakeContainer `json:"containers"`
		NextID     int             `json:"next_id"`
	}

	// FakeContainer is one container known to the fake daemon.
	FakeContainer struct {
		ID      string   `json:"id"`
		Name    string   `json:"name"`
		Image   string   `json:"image"`
		Running bool     `json:"running"`
		RunArgs []string `json:"run_args"`
	}
)

// Running returns the running containers named name.
func (s DockerState) Running(name string) []FakeContainer {
	var out []FakeContainer
	for _, c := range s.Containers {
		if c.Name == name && c.Running {
			out = append(out, c)
		}
	}
	return out
}

func (s *DockerState) find(name string) int {
	return slices.IndexFunc(s.Containers, func(c FakeContainer) bool { return c.Name == name })
}

// FakeDocker emulates the subset of the docker CLI the container backend
// uses, persisting state in statePath. It returns the exit code.
func FakeDocker(statePath string, args []string, stdout, stderr io.Writer) int {
	st, err := loadDockerState(statePath)
	if err != nil {
		fmt.Fprintf(stderr, "fake docker: %v\n", err)
		return 2
	}
	if len(args) == 0 {
		fmt.Fprintln(stderr, "fake docker: no subcommand")
		return 2
	}

	code := dispatchDocker(&st, args[0], args[1:], stdout, stderr)
	if err := saveDockerState(statePath, st); err != nil {
		fmt.Fprintf(stderr, "fake docker: %v\n", err)
		return 2
	}
	return code
}

func dispatchDocker(st *DockerState, sub string, args []string, stdout, stderr io.Writer) int {
	switch sub {
	case "images":
		ref := lastArg(args)
		if slices.Contains(st.Images, ref) {
			fmt.Fprintln(stdout, "0123456789ab")
		}
		return 0
	case "pull":
		ref := lastArg(args)
		if strings.HasPrefix(ref, "missing/") {
			fmt.Fprintf(stdout, "Error response from daemon: pull access denied for %s\n", ref)
			return 1
		}
		tag := ref[strings.LastIndex(ref, ":")+1:]
		fmt.Fprintf(stdout, "%s: Pulling from library/%s\n", tag, strings.TrimSuffix(ref, ":"+tag))
		fmt.Fprintln(stdout, "Digest: sha256:0000000000000000000000000000000000000000000000000000000000000000")
		fmt.Fprintf(stdout, "Status: Downloaded newer image for %s\n", ref)
		if !slices.Contains(st.Images, ref) {
			st.Images = append(st.Images, ref)
		}
		return 0
	case "ps":
		return dockerPs(st, args, stdout)
	case "run":
		return dockerRun(st, args, stdout, stderr)
	case "stop":
		i := st.find(lastArg(args))
		if i < 0 {
			fmt.Fprintf(stderr, "Error response from daemon: No such container: %s\n", lastArg(args))
			return 1
		}
		st.Containers[i].Running = false
		fmt.Fprintln(stdout, st.Containers[i].Name)
		return 0
	case "rm":
		name := lastArg(args)
		i := st.find(name)
		switch {
		case i < 0:
			fmt.Fprintf(stderr, "Error response from daemon: No such container: %s\n", name)
			return 1
		case st.Containers[i].Running:
			fmt.Fprintf(stderr, "Error response from daemon: cannot remove container %q: container is running\n", name)
			return 1
		}
		st.Containers = slices.Delete(st.Containers, i, i+1)
		fmt.Fprintln(stdout, name)
		return 0
	default:
		fmt.Fprintf(stderr, "fake docker: unsupported command %q\n", sub)
		return 125
	}
}

func dockerPs(st *DockerState, args []string, stdout io.Writer) int {
	var all, quiet bool
	var name, format string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-a":
			all = true
		case "-q":
			quiet = true
		case "-aq", "-qa":
			all, quiet = true, true
		case "--filter":
			if i++; i >= len(args) {
				return 1
			}
			name = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(args[i], "name="), "^"), "$")
		case "--format":
			if i++; i >= len(args) {
				return 1
			}
			format = args[i]
		}
	}

	withPorts := strings.Contains(format, "{{.Ports}}")
	if !quiet && format != "" {
		if withPorts {
			fmt.Fprintln(stdout, "NAMES\tSTATUS\tPORTS")
		} else {
			fmt.Fprintln(stdout, "NAMES\tSTATUS")
		}
	}
	for _, c := range st.Containers {
		if (name != "" && c.Name != name) || (!all && !c.Running) {
			continue
		}
		if quiet {
			fmt.Fprintln(stdout, c.ID[:min(12, len(c.ID))])
			continue
		}
		status := "Exited (0) 1 second ago"
		if c.Running {
			status = "Up 1 second"
		}
		if withPorts {
			fmt.Fprintf(stdout, "%s\t%s\t%s\n", c.Name, status, publishedPorts(c.RunArgs))
		} else {
			fmt.Fprintf(stdout, "%s\t%s\n", c.Name, status)
		}
	}
	return 0
}

func dockerRun(st *DockerState, args []string, stdout, stderr io.Writer) int {
	var name string
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "--name" {
			name = args[i+1]
		}
	}
	if st.find(name) >= 0 {
		fmt.Fprintf(stderr, "docker: Error response from daemon: Conflict. The container name \"/%s\" is already in use.\n", name)
		return 125
	}
	st.NextID++
	c := FakeContainer{
		ID:      fmt.Sprintf("%064x", st.NextID),
		Name:    name,
		Image:   lastArg(args),
		Running: true,
		RunArgs: slices.Clone(args),
	}
	st.Containers = append(st.Containers, c)
	fmt.Fprintln(stdout, c.ID)
	return 0
}

func publishedPorts(runArgs []string) string {
	var ports []string
	for _, a := range runArgs {
		if mapping, ok := strings.CutPrefix(a, "-p"); ok {
			host, cont, _ := strings.Cut(mapping, ":")
			ports = append(ports, fmt.Sprintf("0.0.0.0:%s->%s/tcp", host, cont))
		}
	}
	return strings.Join(ports, ", ")
}

func lastArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}

func loadDockerState(path string) (DockerState, error) {
	var st DockerState
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("decode %s: %w", path, err)
	}
	return st, nil
}

func saveDockerState(path string, st DockerState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
