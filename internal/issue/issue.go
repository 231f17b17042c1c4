// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ConfigNotFoundId Id = iota + 1
	ConfigInvalidId
	InvalidSettingId
	UnknownInstallerTypeId
	PackageNotAllowedId
	VersionNotAllowedId
	ToolNotFoundId
	ExecutionFailedId
	ExecutionTimedOutId
	OperationInterruptedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		extLinks []HttpLink  // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Markdown returns the message with a trailing "See also" section when the
// issue has links.
func (i *Issue) Markdown() string {
	if len(i.extLinks) == 0 {
		return string(i.mdMsg)
	}
	var b strings.Builder
	b.WriteString(string(i.mdMsg))
	b.WriteString("\n\n## See also\n")
	for _, link := range i.extLinks {
		b.WriteString("\n- <" + string(link) + ">")
	}
	return b.String()
}

// Render renders the issue with the given glamour style ("dark", "light",
// "notty", a JSON style file...).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# Configuration file not found!

pkgwarden reads its allow-lists from a YAML file, ` + "`config.yaml`" + ` in the
working directory unless told otherwise.

## Things you can try:
- Create the file:
~~~yaml
pip:
  allowed_packages:
    requests: [latest]
~~~

- Point at another file:
~~~
$ pkgwarden --config /etc/pkgwarden/config.yaml install pip requests
$ PKGWARDEN_CONFIG=/etc/pkgwarden/config.yaml pkgwarden install pip requests
~~~`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Configuration file is invalid!

The file parsed as YAML but does not match the expected layout.

## Expected layout:
~~~yaml
logging:
  level: info          # debug, info, warn, error
  format: text         # text, json, logfmt
pip:
  command: pip3        # optional executable override
  allowed_packages:
    requests: ["2.31.0", latest]
brew:
  allowed_packages:
    wget: [latest]
docker:
  engine: docker       # or podman
  allowed_packages:
    nginx: [latest, "1.25"]
  configurations:
    nginx:
      image: nginx
      restart: unless-stopped
      ports: {"8080": "80"}
~~~

## Things you can try:
- Fix the fields listed in the error message
- Make sure version lists are sequences of scalars`,
	}

	invalidSettingIssue = &Issue{
		id: InvalidSettingId,
		mdMsg: `
# Invalid setting!

A flag or ` + "`PKGWARDEN_*`" + ` environment variable has a value that cannot be used.

## Things you can try:
- ` + "`--timeout`" + ` takes seconds (` + "`30`" + `) or a duration (` + "`1m30s`" + `)
- ` + "`--log-level`" + ` takes debug, info, warn or error
- ` + "`--log-format`" + ` takes text, json or logfmt`,
	}

	unknownInstallerTypeIssue = &Issue{
		id: UnknownInstallerTypeId,
		mdMsg: `
# Unknown installer type!

The first argument selects the backend.

## Supported types:
- ` + "`pip`" + `: Python packages
- ` + "`brew`" + `: Homebrew formulae
- ` + "`docker`" + `: container images run as long-lived containers`,
	}

	packageNotAllowedIssue = &Issue{
		id: PackageNotAllowedId,
		mdMsg: `
# Package not allowed!

Only packages listed under ` + "`allowed_packages`" + ` of the backend can be
installed or uninstalled.

## Things you can try:
- Check the spelling of the package name
- List what is allowed:
~~~
$ pkgwarden list
~~~

- Ask an administrator to add the package to the configuration`,
	}

	versionNotAllowedIssue = &Issue{
		id: VersionNotAllowedId,
		mdMsg: `
# Version not allowed!

The package is allowed but not in the requested version.

## Things you can try:
- Pick one of the versions shown in the error message
- Omit ` + "`--version`" + ` to request ` + "`latest`" + `, if allowed`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Package manager not found!

The command-line tool of the selected backend is not on your PATH.

## Things you can try:
- Install the tool
- Set ` + "`command`" + ` in the backend block to the executable to use
- For containers, try ` + "`engine: podman`" + ``,
		extLinks: []HttpLink{
			"https://pip.pypa.io/en/stable/installation/",
			"https://brew.sh/",
			"https://docs.docker.com/engine/install/",
		},
	}

	executionFailedIssue = &Issue{
		id: ExecutionFailedId,
		mdMsg: `
# Package manager command failed!

The tool ran but exited with an error. Its output is shown above.

## Things you can try:
- Run again with ` + "`--verbose`" + ` to see the exact command
- Preview the command without running it:
~~~
$ pkgwarden --dry-run install pip requests
~~~

- Check network access and permissions of the tool`,
	}

	executionTimedOutIssue = &Issue{
		id: ExecutionTimedOutId,
		mdMsg: `
# Command timed out!

The package manager did not finish within the configured time budget and was
stopped.

## Things you can try:
- Raise the limit: ` + "`--timeout 10m`" + ` or ` + "`PKGWARDEN_TIMEOUT=600`" + `
- Use ` + "`--timeout 0`" + ` to disable it`,
	}

	operationInterruptedIssue = &Issue{
		id: OperationInterruptedId,
		mdMsg: `
# Operation interrupted!

The operation was canceled before it finished. The package or container may be
left in an intermediate state.

## Things you can try:
- Check the state:
~~~
$ pkgwarden status docker nginx
~~~

- Run the same command again; installs are idempotent`,
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():       configNotFoundIssue,
		configInvalidIssue.Id():        configInvalidIssue,
		invalidSettingIssue.Id():       invalidSettingIssue,
		unknownInstallerTypeIssue.Id(): unknownInstallerTypeIssue,
		packageNotAllowedIssue.Id():    packageNotAllowedIssue,
		versionNotAllowedIssue.Id():    versionNotAllowedIssue,
		toolNotFoundIssue.Id():         toolNotFoundIssue,
		executionFailedIssue.Id():      executionFailedIssue,
		executionTimedOutIssue.Id():    executionTimedOutIssue,
		operationInterruptedIssue.Id(): operationInterruptedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
