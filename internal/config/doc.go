// SPDX-License-Identifier: MPL-2.0

// Package config loads the installer configuration document and the
// process settings.
//
// The document (config.yaml by default) is keyed by backend type: pip, brew
// and docker, each carrying an allowed_packages allow-list, plus an optional
// logging block. It is checked against an embedded CUE schema
// (config_schema.cue) before being decoded with yaml.v3. A missing file is
// fatal; an empty or unparsable file is reported as a warning Diagnostic and
// loads as an empty document.
//
// Settings (config path, log level and format, timeout, verbosity, dry run)
// come from Viper, bound to the CLI flags and PKGWARDEN_* environment variables.
package config
