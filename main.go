// SPDX-License-Identifier: MPL-2.0

// Command pkgwarden installs packages through pip, brew and docker,
// restricted to the allow-list of its configuration file.
package main

import cmd "github.com/pkgwarden/pkgwarden/cmd/pkgwarden"

func main() {
	cmd.Execute()
}
