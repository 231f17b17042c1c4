// SPDX-License-Identifier: MPL-2.0

package allowlist

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// LatestVersion is the version requested when none is given. It is compared
// literally and is only admissible when a package lists it.
const LatestVersion = "latest"

var (
	// ErrPackageNotAllowed is the sentinel for PackageNotAllowedError.
	ErrPackageNotAllowed = errors.New("package not allowed")

	// ErrVersionNotAllowed is the sentinel for VersionNotAllowedError.
	ErrVersionNotAllowed = errors.New("version not allowed")
)

type (
	// List maps package names to their allowed versions. Both the packages and
	// each version sequence keep the order they were declared in.
	List struct {
		names    []string
		versions map[string][]string
	}

	// PackageNotAllowedError is returned when a package is not a key of the list.
	PackageNotAllowedError struct {
		Package string
		// Allowed holds the packages that are allowed, in declaration order.
		Allowed []string
	}

	// VersionNotAllowedError is returned when a package is allowed but the
	// requested version is not among its allowed versions.
	VersionNotAllowedError struct {
		Package string
		Version string
		Allowed []string
	}
)

// Error implements the error interface.
func (e *PackageNotAllowedError) Error() string {
	return fmt.Sprintf("package %q is not in the allowed packages list", e.Package)
}

// Unwrap returns ErrPackageNotAllowed for errors.Is() compatibility.
func (e *PackageNotAllowedError) Unwrap() error { return ErrPackageNotAllowed }

// Error implements the error interface.
func (e *VersionNotAllowedError) Error() string {
	return fmt.Sprintf("version %q of package %q is not allowed (allowed: %s)",
		e.Version, e.Package, strings.Join(e.Allowed, ", "))
}

// Unwrap returns ErrVersionNotAllowed for errors.Is() compatibility.
func (e *VersionNotAllowedError) Unwrap() error { return ErrVersionNotAllowed }

// New builds a List from package/versions pairs given in order. A package
// repeated later replaces the earlier versions but keeps its first position.
func New(entries ...Entry) List {
	var l List
	for _, e := range entries {
		l.set(e.Package, e.Versions)
	}
	return l
}

// Entry is one package of a List.
type Entry struct {
	Package  string   `json:"package" yaml:"package" toml:"package"`
	Versions []string `json:"versions" yaml:"versions" toml:"versions"`
}

func (l *List) set(pkg string, versions []string) {
	if l.versions == nil {
		l.versions = make(map[string][]string)
	}
	if _, ok := l.versions[pkg]; !ok {
		l.names = append(l.names, pkg)
	}
	l.versions[pkg] = slices.Clone(versions)
}

// Validate reports whether version of pkg may be operated on.
func (l List) Validate(pkg, version string) error {
	if err := l.ValidatePackage(pkg); err != nil {
		return err
	}
	allowed := l.versions[pkg]
	if !slices.Contains(allowed, version) {
		return &VersionNotAllowedError{Package: pkg, Version: version, Allowed: slices.Clone(allowed)}
	}
	return nil
}

// ValidatePackage checks package membership only.
func (l List) ValidatePackage(pkg string) error {
	if _, ok := l.versions[pkg]; !ok {
		return &PackageNotAllowedError{Package: pkg, Allowed: l.Packages()}
	}
	return nil
}

// Packages returns the allowed package names in declaration order.
func (l List) Packages() []string {
	return slices.Clone(l.names)
}

// Versions returns the allowed versions of pkg, or nil when it is not listed.
func (l List) Versions(pkg string) []string {
	return slices.Clone(l.versions[pkg])
}

// Len returns the number of allowed packages.
func (l List) Len() int {
	return len(l.names)
}

// Entries returns the list as ordered entries, for serialization.
func (l List) Entries() []Entry {
	entries := make([]Entry, 0, len(l.names))
	for _, name := range l.names {
		versions := l.versions[name]
		if versions == nil {
			versions = []string{}
		}
		entries = append(entries, Entry{Package: name, Versions: slices.Clone(versions)})
	}
	return entries
}

// Suggest returns allowed package names that fuzzily match pkg, best first.
func (l List) Suggest(pkg string) []string {
	return suggest(pkg, l.names)
}

// Suggest returns the allowed packages that fuzzily match the rejected one.
func (e *PackageNotAllowedError) Suggest() []string {
	return suggest(e.Package, e.Allowed)
}

func suggest(pkg string, names []string) []string {
	if pkg == "" || len(names) == 0 {
		return nil
	}
	matches := fuzzy.Find(pkg, names)
	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}

// UnmarshalYAML decodes a mapping of package name to version sequence.
// Versions are taken from the scalar text so that 2.0 stays "2.0".
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	node = resolve(node)
	*l = List{}
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: allowed packages must be a mapping of package to versions", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolve(node.Content[i]), resolve(node.Content[i+1])
		versions, err := decodeVersions(key.Value, value)
		if err != nil {
			return err
		}
		l.set(key.Value, versions)
	}
	return nil
}

// MarshalYAML encodes the list as an ordered mapping.
func (l List) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range l.Entries() {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range e.Versions {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: v, Tag: "!!str"})
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: e.Package}, seq)
	}
	return node, nil
}

func decodeVersions(pkg string, node *yaml.Node) ([]string, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: versions of %q must be a sequence", node.Line, pkg)
	}
	versions := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		item = resolve(item)
		if item.Kind != yaml.ScalarNode || isNull(item) {
			return nil, fmt.Errorf("line %d: versions of %q must be plain values", item.Line, pkg)
		}
		versions = append(versions, item.Value)
	}
	return versions, nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}
