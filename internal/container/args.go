// SPDX-License-Identifier: MPL-2.0

package container

// Formats passed to ps when querying status.
const (
	RunningStatusFormat = "table {{.Names}}\t{{.Status}}\t{{.Ports}}"
	AnyStatusFormat     = "table {{.Names}}\t{{.Status}}"
)

// NameFilter returns the ps filter matching exactly one container name.
func NameFilter(name string) string {
	return "name=^" + name + "$"
}

// ImagesArgs lists the local image id of ref, if any.
//
// Generated command: <binary> images -q <image>:<tag>
func ImagesArgs(ref string) []string {
	return []string{"images", "-q", ref}
}

// PullArgs pulls ref.
func PullArgs(ref string) []string {
	return []string{"pull", ref}
}

// ExistsArgs lists the ids of all containers, running or not, named name.
//
// Generated command: <binary> ps -aq --filter name=^<name>$
func ExistsArgs(name string) []string {
	return []string{"ps", "-aq", "--filter", NameFilter(name)}
}

// RunArgs starts a detached container from spec. Flags follow a fixed
// order: ports, environment, volumes, restart policy, then the image.
//
// Generated command: <binary> run -d --name <name> [-pH:C]... [-eK=V]... [-vS:D]... [--restart=P] <image>
func RunArgs(name string, spec Spec, ref string) []string {
	args := []string{"run", "-d", "--name", name}

	for _, p := range spec.Ports {
		args = append(args, "-p"+p.Key+":"+p.Value)
	}

	for _, e := range spec.Environment {
		args = append(args, "-e"+e.Key+"="+e.Value)
	}

	for _, v := range spec.Volumes {
		args = append(args, "-v"+v.Key+":"+v.Value)
	}

	if spec.Restart != "" {
		args = append(args, "--restart="+string(spec.Restart))
	}

	return append(args, ref)
}

// StopArgs stops the named container.
func StopArgs(name string) []string {
	return []string{"stop", name}
}

// RemoveArgs removes the named container.
func RemoveArgs(name string) []string {
	return []string{"rm", name}
}

// RunningArgs lists the named container if it is running.
//
// Generated command: <binary> ps --filter name=^<name>$ --format <RunningStatusFormat>
func RunningArgs(name string) []string {
	return []string{"ps", "--filter", NameFilter(name), "--format", RunningStatusFormat}
}

// AnyArgs lists the named container whatever its state.
//
// Generated command: <binary> ps -a --filter name=^<name>$ --format <AnyStatusFormat>
func AnyArgs(name string) []string {
	return []string{"ps", "-a", "--filter", NameFilter(name), "--format", AnyStatusFormat}
}
