// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
)

// FakePackageManager emulates pip or brew for CLI scripts. Installed
// packages are kept one per line in statePath. It returns the exit code.
func FakePackageManager(tool, statePath string, args []string, stdout, stderr io.Writer) int {
	installed, err := readLines(statePath)
	if err != nil {
		fmt.Fprintf(stderr, "fake %s: %v\n", tool, err)
		return 2
	}

	positional := slices.DeleteFunc(slices.Clone(args), func(a string) bool { return strings.HasPrefix(a, "-") })
	if len(positional) < 2 {
		fmt.Fprintf(stderr, "fake %s: usage: %s <command> <package>\n", tool, tool)
		return 2
	}
	sub, pkg := positional[0], positional[1]
	name, _, _ := strings.Cut(pkg, "==")

	switch sub {
	case "install":
		if strings.HasPrefix(name, "broken") {
			fmt.Fprintf(stderr, "ERROR: No matching distribution found for %s\n", pkg)
			return 1
		}
		if !slices.Contains(installed, name) {
			installed = append(installed, name)
		}
		fmt.Fprintf(stdout, "Successfully installed %s\n", pkg)
	case "uninstall":
		i := slices.Index(installed, name)
		if i < 0 {
			fmt.Fprintf(stderr, "WARNING: Skipping %s as it is not installed.\n", name)
			return 1
		}
		installed = slices.Delete(installed, i, i+1)
		fmt.Fprintf(stdout, "Successfully uninstalled %s\n", name)
	case "show", "list":
		if !slices.Contains(installed, name) {
			fmt.Fprintf(stderr, "WARNING: Package(s) not found: %s\n", name)
			return 1
		}
		fmt.Fprintf(stdout, "Name: %s\n", name)
		return 0
	default:
		fmt.Fprintf(stderr, "fake %s: unknown command %q\n", tool, sub)
		return 2
	}

	if err := os.WriteFile(statePath, []byte(strings.Join(installed, "\n")+"\n"), 0o600); err != nil {
		fmt.Fprintf(stderr, "fake %s: %v\n", tool, err)
		return 2
	}
	return 0
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}
