// SPDX-License-Identifier: MPL-2.0

package installer

import (
	"log/slog"
	"slices"

	"github.com/pkgwarden/pkgwarden/internal/config"
)

type (
	// ConfigSource yields the configuration block of a backend type.
	// *config.Document implements it.
	ConfigSource interface {
		Backend(name string) config.Backend
	}

	// Constructor builds a backend from a request and its configuration.
	Constructor func(req Request, cfg config.Backend, deps Deps) (Installer, error)

	// FactoryOption configures a Factory.
	FactoryOption func(*Factory)

	// Factory maps backend types to constructors. It reads the
	// configuration once per Create and keeps no backend instances.
	Factory struct {
		source       ConfigSource
		constructors map[Type]Constructor
		deps         Deps
	}
)

// WithRunner sets the runner handed to every backend.
func WithRunner(r Runner) FactoryOption {
	return func(f *Factory) {
		f.deps.Runner = r
	}
}

// WithLogger sets the logger handed to every backend.
func WithLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) {
		f.deps.Logger = l
	}
}

// NewFactory creates a Factory with the pip, brew and docker backends
// registered. A nil source behaves as an empty configuration document.
func NewFactory(source ConfigSource, opts ...FactoryOption) *Factory {
	if source == nil {
		source = (*config.Document)(nil)
	}
	f := &Factory{
		source:       source,
		constructors: make(map[Type]Constructor),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.deps = f.deps.withDefaults()

	f.Register(TypePip, func(req Request, cfg config.Backend, deps Deps) (Installer, error) {
		return NewPip(req, cfg, deps), nil
	})
	f.Register(TypeBrew, func(req Request, cfg config.Backend, deps Deps) (Installer, error) {
		return NewBrew(req, cfg, deps), nil
	})
	f.Register(TypeDocker, func(req Request, cfg config.Backend, deps Deps) (Installer, error) {
		return NewDocker(req, cfg, deps), nil
	})
	return f
}

// Register binds t to c, replacing any previous constructor.
func (f *Factory) Register(t Type, c Constructor) {
	f.constructors[t] = c
}

// Types returns the registered types, sorted.
func (f *Factory) Types() []Type {
	types := make([]Type, 0, len(f.constructors))
	for t := range f.constructors {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Create builds the backend for req. An unregistered type fails with
// UnknownInstallerTypeError before the configuration is consulted.
func (f *Factory) Create(req Request) (Installer, error) {
	construct, ok := f.constructors[req.Type]
	if !ok {
		return nil, &UnknownInstallerTypeError{Value: req.Type, Known: f.Types()}
	}
	cfg := f.source.Backend(req.Type.String())
	return construct(req, cfg, f.deps)
}
