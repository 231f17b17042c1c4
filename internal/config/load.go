// SPDX-License-Identifier: MPL-2.0

package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the document read when no path is given.
const DefaultConfigPath = "config.yaml"

//go:embed config_schema.cue
var configSchema string

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath is the document to read; DefaultConfigPath when empty.
		ConfigFilePath string
	}

	// Result is a loaded document with the diagnostics produced on the way.
	Result struct {
		Document    *Document
		Path        string
		Diagnostics []Diagnostic
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Result, error)
	}

	fileProvider struct{}
)

// NewProvider creates a configuration provider reading from the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads configuration from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Result, error) {
	path := opts.ConfigFilePath
	if path == "" {
		path = DefaultConfigPath
	}
	return Load(ctx, path)
}

// Load reads, validates and decodes the document at path.
func Load(ctx context.Context, path string) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes a document read from path.
func Parse(path string, data []byte) (*Result, error) {
	res := &Result{Document: &Document{}, Path: path}

	if len(bytes.TrimSpace(data)) == 0 {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     "config_empty",
			Message:  "configuration file is empty; no packages are allowed",
			Path:     path,
		})
		return res, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     "config_malformed",
			Message:  "configuration file is not valid YAML and was ignored",
			Path:     path,
			Cause:    err,
		})
		return res, nil
	}
	if len(root.Content) == 0 || isNullDocument(&root) {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     "config_empty",
			Message:  "configuration file has no content; no packages are allowed",
			Path:     path,
		})
		return res, nil
	}

	if err := validateSchema(path, data); err != nil {
		return nil, err
	}

	if err := root.Decode(res.Document); err != nil {
		return nil, &InvalidError{Path: path, Problems: yamlProblems(err)}
	}
	return res, nil
}

func isNullDocument(root *yaml.Node) bool {
	doc := root.Content[0]
	return doc.Kind == yaml.ScalarNode && doc.ShortTag() == "!!null"
}

// validateSchema checks the document against the #Config definition.
func validateSchema(path string, data []byte) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return &InvalidError{Path: path, Problems: cueProblems(err)}
	}
	userValue := ctx.BuildFile(file)
	if userValue.Err() != nil {
		return &InvalidError{Path: path, Problems: cueProblems(userValue.Err())}
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	if err := schema.Unify(userValue).Validate(cue.Concrete(true)); err != nil {
		return &InvalidError{Path: path, Problems: cueProblems(err)}
	}
	return nil
}

type cueProblem struct {
	path    []string
	msg     string
	summary bool
}

// cueProblems renders each CUE error as "<json-path>: <message>", one per
// offending field. Errors raised on an ancestor of another failing field are
// dropped, and the "empty disjunction" summaries give way to the conflict
// they summarize.
func cueProblems(err error) []string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return []string{err.Error()}
	}

	all := make([]cueProblem, 0, len(errs))
	for _, e := range errs {
		format, args := e.Msg()
		all = append(all, cueProblem{
			path:    trimDefinitions(cueerrors.Path(e)),
			msg:     fmt.Sprintf(format, args...),
			summary: strings.Contains(format, "empty disjunction"),
		})
	}

	var order []string
	byPath := make(map[string]cueProblem, len(all))
	for _, p := range all {
		if hasDescendant(p.path, all) {
			continue
		}
		key := formatPath(p.path)
		prev, seen := byPath[key]
		if !seen {
			order = append(order, key)
			byPath[key] = p
			continue
		}
		if prev.summary && !p.summary {
			byPath[key] = p
		}
	}

	problems := make([]string, 0, len(order))
	for _, key := range order {
		msg := byPath[key].msg
		if key == "" {
			problems = append(problems, msg)
			continue
		}
		problems = append(problems, key+": "+msg)
	}
	return problems
}

// trimDefinitions drops leading definition labels such as #Config.
func trimDefinitions(path []string) []string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	return path
}

// hasDescendant reports whether another problem sits below path.
func hasDescendant(path []string, all []cueProblem) bool {
	for _, other := range all {
		if len(other.path) > len(path) && slices.Equal(other.path[:len(path)], path) {
			return true
		}
	}
	return false
}

// formatPath converts a CUE error path to JSON-path notation, so that
// ["docker", "configurations", "web", "ports", "0"] reads
// docker.configurations.web.ports[0].
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func yamlProblems(err error) []string {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return typeErr.Errors
	}
	return []string{err.Error()}
}
