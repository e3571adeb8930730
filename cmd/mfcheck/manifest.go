package main

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/manufactory/manufactory"
	"github.com/sghaida/manufactory/typeindex"
)

// Manifest describes a component by type names instead of Go types.
type Manifest struct {
	Name            string     `yaml:"name"`
	Types           []TypeSpec `yaml:"types"`
	Exports         []string   `yaml:"exports,omitempty"`
	Imports         []string   `yaml:"imports,omitempty"`
	OptionalImports []string   `yaml:"optionalImports,omitempty"`
}

// TypeSpec is one producible type.
type TypeSpec struct {
	Name      string                `yaml:"name"`
	Lifecycle manufactory.Lifecycle `yaml:"lifecycle"`
	Deps      []DepSpec             `yaml:"deps,omitempty"`

	// Fail makes every production of this type fail with the given message,
	// to rehearse how a failure propagates.
	Fail string `yaml:"fail,omitempty"`
}

type DepSpec struct {
	Type     string `json:"type" yaml:"type"`
	Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// Node is the value a manifest type produces.
type Node struct {
	ID   string  `json:"id" yaml:"id"`
	Type string  `json:"type" yaml:"type"`
	Deps []*Node `json:"deps,omitempty" yaml:"deps,omitempty"`
}

type manifestError struct{ msg string }

func (e *manifestError) Error() string { return "manifest: " + e.msg }

func loadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseManifest(raw)
}

func parseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// validate checks what the manufactory cannot: names and lifecycles.
// Graph problems are left to the component and the manufactory.
func (m *Manifest) validate() error {
	if len(m.Types) == 0 {
		return &manifestError{msg: "types must be non-empty"}
	}

	var errs []error
	seen := map[string]bool{}
	for i, ts := range m.Types {
		name := strings.TrimSpace(ts.Name)
		switch {
		case name == "":
			errs = append(errs, &manifestError{msg: "type #" + strconv.Itoa(i+1) + " has no name"})
			continue
		case seen[name]:
			errs = append(errs, &manifestError{msg: "type " + strconv.Quote(name) + " declared twice"})
		}
		seen[name] = true

		switch ts.Lifecycle {
		case 0:
			errs = append(errs, &manifestError{msg: "type " + strconv.Quote(name) + " has no lifecycle"})
		case manufactory.LifecycleInstance:
			errs = append(errs, &manifestError{msg: "type " + strconv.Quote(name) + ": instance lifecycle needs a Go value"})
		}
		for _, d := range ts.Deps {
			if strings.TrimSpace(d.Type) == "" {
				errs = append(errs, &manifestError{msg: "type " + strconv.Quote(name) + " has a dependency with no type"})
			}
		}
	}
	return errors.Join(errs...)
}

// component registers every type as a named producer and seals the
// declarations. Without exports, everything produced is exported.
func (m *Manifest) component(opts ...manufactory.Option) (*manufactory.Component, error) {
	acc := manufactory.NewComponentAccumulator(opts...)
	for _, ts := range m.Types {
		acc.AddProducer(typeindex.Named(ts.Name), ts.Lifecycle, ts.dependencies(), ts.producer())
	}

	var decls []manufactory.Declaration
	if len(m.Exports) > 0 {
		decls = append(decls, manufactory.Export(named(m.Exports)...))
	}
	if len(m.Imports) > 0 {
		decls = append(decls, manufactory.Import(named(m.Imports)...))
	}
	if len(m.OptionalImports) > 0 {
		decls = append(decls, manufactory.OptionalImport(named(m.OptionalImports)...))
	}
	return manufactory.NewComponent(acc, decls...)
}

func (ts TypeSpec) dependencies() []manufactory.Dependency {
	deps := make([]manufactory.Dependency, len(ts.Deps))
	for i, d := range ts.Deps {
		deps[i] = manufactory.Dependency{Type: typeindex.Named(d.Type), Optional: d.Optional}
	}
	return deps
}

func (ts TypeSpec) producer() manufactory.ProducerFunc {
	name, fail := ts.Name, ts.Fail
	return func(deps []any) (any, error) {
		if fail != "" {
			return nil, errors.New(fail)
		}
		n := &Node{ID: uuid.NewString(), Type: name}
		for _, d := range deps {
			if dep, ok := d.(*Node); ok {
				n.Deps = append(n.Deps, dep)
			}
		}
		return n, nil
	}
}

func named(names []string) []typeindex.Index {
	out := make([]typeindex.Index, len(names))
	for i, n := range names {
		out[i] = typeindex.Named(n)
	}
	return out
}
