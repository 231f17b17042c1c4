// SPDX-License-Identifier: MPL-2.0

package container

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultRestartPolicy is applied to packages without a configuration entry.
const DefaultRestartPolicy RestartPolicy = "unless-stopped"

// ErrInvalidRestartPolicy is the sentinel error wrapped by InvalidRestartPolicyError.
var ErrInvalidRestartPolicy = errors.New("invalid restart policy")

type (
	// RestartPolicy is a docker --restart value.
	// The zero value ("") means no --restart flag is passed.
	RestartPolicy string

	// InvalidRestartPolicyError is returned when a RestartPolicy is not one
	// of no, always, unless-stopped or on-failure[:N].
	InvalidRestartPolicyError struct {
		Value RestartPolicy
	}

	// Pair is one key/value entry of a Pairs list.
	Pair struct {
		Key   string
		Value string
	}

	// Pairs is an ordered mapping decoded from YAML. Port, environment and
	// volume flags are emitted in the order they were declared.
	Pairs []Pair

	// Spec is the container configuration of one package.
	Spec struct {
		Image       string        `yaml:"image"`
		Restart     RestartPolicy `yaml:"restart"`
		Ports       Pairs         `yaml:"ports"`
		Environment Pairs         `yaml:"environment"`
		Volumes     Pairs         `yaml:"volumes"`
		AccessURL   string        `yaml:"access_url"`
	}
)

// Error implements the error interface.
func (e *InvalidRestartPolicyError) Error() string {
	return fmt.Sprintf("invalid restart policy %q (valid: no, always, unless-stopped, on-failure[:N])", e.Value)
}

// Unwrap returns ErrInvalidRestartPolicy for errors.Is() compatibility.
func (e *InvalidRestartPolicyError) Unwrap() error { return ErrInvalidRestartPolicy }

// Validate returns nil if the RestartPolicy is empty or accepted by docker.
func (p RestartPolicy) Validate() error {
	switch p {
	case "", "no", "always", "unless-stopped", "on-failure":
		return nil
	}
	if n, ok := strings.CutPrefix(string(p), "on-failure:"); ok {
		if retries, err := strconv.Atoi(n); err == nil && retries >= 0 {
			return nil
		}
	}
	return &InvalidRestartPolicyError{Value: p}
}

// String returns the string representation of the RestartPolicy.
func (p RestartPolicy) String() string { return string(p) }

// DefaultSpec is the configuration used for a package without an entry.
func DefaultSpec(pkg string) Spec {
	return Spec{Image: pkg, Restart: DefaultRestartPolicy}
}

// IsZero reports whether no field of s is set, as for an entry with a null
// body.
func (s Spec) IsZero() bool {
	return s.Image == "" && s.Restart == "" && s.AccessURL == "" &&
		len(s.Ports) == 0 && len(s.Environment) == 0 && len(s.Volumes) == 0
}

// ImageRef returns the image reference for the given tag.
func (s Spec) ImageRef(tag string) string {
	return s.Image + ":" + tag
}

// Validate checks the restart policy and that an image is named.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Image) == "" {
		return errors.New("container image must not be empty")
	}
	return s.Restart.Validate()
}

// Get returns the value of key and whether it is present.
func (p Pairs) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// UnmarshalYAML decodes a mapping, keeping document order. Values are taken
// from the scalar text, so 80 and "80" decode alike.
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	*p = nil
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind == yaml.AliasNode && value.Alias != nil {
			value = value.Alias
		}
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %q must be a plain value", value.Line, key.Value)
		}
		*p = append(*p, Pair{Key: key.Value, Value: value.Value})
	}
	return nil
}

// MarshalYAML encodes the pairs as an ordered mapping.
func (p Pairs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, kv := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv.Key, Tag: "!!str"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: kv.Value, Tag: "!!str"},
		)
	}
	return node, nil
}
