// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkgwarden/pkgwarden/internal/allowlist"
	"github.com/pkgwarden/pkgwarden/internal/installer"
)

func newInstallCommand(app *App) *cobra.Command {
	var version string
	cmd := &cobra.Command{
		Use:   "install <type> <package>",
		Short: "Install an allowed package",
		Long: `Install a package with the given backend (pip, brew or docker).

The package, and the version when one is given, must be allowed by the
backend's allowed_packages in the configuration file.`,
		Example: `  pkgwarden install pip requests -v 2.31.0
  pkgwarden install brew wget
  pkgwarden install docker nginx`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := requestResource(args, version)
			inst, req, err := app.backend(cmd, args[0], args[1], version)
			if err != nil {
				return describe("install", resource, err)
			}
			if err := inst.Install(cmd.Context()); err != nil {
				return describe("install", resource, err)
			}
			fmt.Fprintf(app.stdout, "%s Installed %s using %s\n",
				SuccessStyle.Render("✓"), PackageStyle.Render(describeRequest(req)), req.Type)
			return nil
		},
	}
	cmd.Flags().StringVarP(&version, "version", "v", allowlist.LatestVersion, "package version to install")
	return cmd
}

// describeRequest renders the package and, for pinned versions, its version.
func describeRequest(req installer.Request) string {
	if req.IsLatest() {
		return req.Package
	}
	return req.Package + " " + req.Version
}

// requestResource names the <type> <package> arguments as "type:package",
// with "@version" for pinned installs.
func requestResource(args []string, version string) string {
	return installer.NewRequest(installer.Type(args[0]), args[1], version).String()
}

// completeTypes completes the backend type argument.
func completeTypes(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	types := installer.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
