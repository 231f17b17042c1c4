// SPDX-License-Identifier: MPL-2.0

// Package allowlist decides which package/version pairs may be operated on.
//
// A List is declared per backend in the configuration document under
// allowed_packages. Versions are plain strings; "latest" has no special
// meaning here and must be listed like any other version.
package allowlist
