// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Render formats an argument vector as a bash command line, quoting only
// the arguments that need it.
func Render(args []string) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			quoted = strconv.Quote(arg)
		}
		parts[i] = quoted
	}
	return strings.Join(parts, " ")
}
