// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUninstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:               "uninstall <type> <package>",
		Short:             "Uninstall an allowed package",
		Example:           `  pkgwarden uninstall pip requests`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := requestResource(args, "")
			inst, req, err := app.backend(cmd, args[0], args[1], "")
			if err != nil {
				return describe("uninstall", resource, err)
			}
			if err := inst.Uninstall(cmd.Context()); err != nil {
				return describe("uninstall", resource, err)
			}
			fmt.Fprintf(app.stdout, "%s Uninstalled %s using %s\n",
				SuccessStyle.Render("✓"), PackageStyle.Render(req.Package), req.Type)
			return nil
		},
	}
}
