// SPDX-License-Identifier: MPL-2.0

// Package testutil provides test doubles for the external tools pkgwarden
// drives: a CommandRecorder that replaces exec.Cmd creation with re-execs of
// the test binary, a stateful fake docker daemon and a fake pip/brew.
package testutil
