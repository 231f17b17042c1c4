// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"
)

// HelperProcess is the body of every package's TestHelperProcess. It does
// nothing unless the process was started by a CommandRecorder; then it acts
// as the recorded tool and exits.
func HelperProcess() {
	if os.Getenv(helperProcessEnv) != "1" {
		return
	}

	args := os.Args
	sep := slices.Index(args, "--")
	if sep < 0 || sep+1 >= len(args) {
		fmt.Fprintln(os.Stderr, "helper process: no command")
		os.Exit(2)
	}
	name, rest := args[sep+1], args[sep+2:]

	if d, err := time.ParseDuration(os.Getenv(helperDelayEnv)); err == nil && d > 0 {
		time.Sleep(d)
	}

	if state := os.Getenv(DockerStateEnv); state != "" && filepath.Base(name) == "docker" {
		os.Exit(FakeDocker(state, rest, os.Stdout, os.Stderr))
	}

	fmt.Fprint(os.Stdout, os.Getenv(helperStdoutEnv))
	fmt.Fprint(os.Stderr, os.Getenv(helperStderrEnv))

	code, _ := strconv.Atoi(os.Getenv(helperExitEnv))
	os.Exit(code)
}
