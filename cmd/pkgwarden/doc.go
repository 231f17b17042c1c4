// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands of pkgwarden.
//
// The root command is a Cobra command executed through fang. Settings come
// from flags and PKGWARDEN_* environment variables via Viper; the allow-list
// document is loaded per command, and every operation is delegated to the
// installer package.
package cmd
