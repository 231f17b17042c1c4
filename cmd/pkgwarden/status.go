// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <type> <package>",
		Short: "Check whether a package is installed",
		Long: `Check whether a package is installed with the given backend.

A package that is not installed is a normal outcome and exits with 0;
only a failure to determine the status exits non-zero.`,
		Example:           `  pkgwarden status docker nginx`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			resource := requestResource(args, "")
			inst, req, err := app.backend(cmd, args[0], args[1], "")
			if err != nil {
				return describe("check status of", resource, err)
			}
			installed, err := inst.Status(cmd.Context())
			if err != nil {
				return describe("check status of", resource, err)
			}
			if installed {
				fmt.Fprintf(app.stdout, "%s %s is installed using %s\n",
					SuccessStyle.Render("✓"), PackageStyle.Render(req.Package), req.Type)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s is not installed using %s\n",
				WarningStyle.Render("✗"), PackageStyle.Render(req.Package), req.Type)
			return nil
		},
	}
}
