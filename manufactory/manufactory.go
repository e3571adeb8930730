package manufactory

import (
	"errors"
	"reflect"

	"github.com/sghaida/manufactory/typeindex"
)

// Manufactory is the public facade over a RuntimeManufactory, limited to a
// set of exported types.
//
// Typed access goes through the package-level Get, TryGet and MustGet:
//
//	m, err := manufactory.Create(component)
//	if err != nil {
//	    return err
//	}
//	player := manufactory.MustGet[*AudioPlayer](m)
type Manufactory struct {
	rt      *RuntimeManufactory
	exports map[typeindex.Index]struct{}
}

// Create validates component and builds a Manufactory over it.
//
// It fails when the component still has required imports, when the
// requested exports (WithExports, default: all of the component's exports)
// are not all exported by the component, when the CookBook is incomplete,
// or when an eager production fails.
func Create(component *Component, opts ...Option) (*Manufactory, error) {
	if component == nil {
		return nil, ErrNilComponent
	}
	o := buildOptions(opts)

	if len(component.imports) > 0 {
		return nil, &UnresolvedImportError{Types: component.Imports()}
	}

	available := component.exportSet()
	exports := available
	if len(o.exports) > 0 {
		var errs []error
		exports = make(map[typeindex.Index]struct{}, len(o.exports))
		for _, idx := range o.exports {
			if _, ok := available[idx]; !ok {
				errs = append(errs, &NotExportedError{Type: idx})
				continue
			}
			exports[idx] = struct{}{}
		}
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
	}

	cb := component.cb.Clone()
	cb.log = o.log
	if !cb.CheckCompleteness() {
		return nil, cb.Err()
	}

	rt, err := NewRuntimeManufactory(cb, opts...)
	if err != nil {
		return nil, err
	}
	return &Manufactory{rt: rt, exports: exports}, nil
}

// Subset returns a facade restricted to idx that shares this one's
// RuntimeManufactory, so cached values are the same instances.
func (m *Manufactory) Subset(idx ...typeindex.Index) (*Manufactory, error) {
	exports := make(map[typeindex.Index]struct{}, len(idx))
	var errs []error
	for _, i := range idx {
		if !m.Exports(i) {
			errs = append(errs, &NotExportedError{Type: i})
			continue
		}
		exports[i] = struct{}{}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &Manufactory{rt: m.rt, exports: exports}, nil
}

// Exports reports whether idx may be requested from m.
func (m *Manufactory) Exports(idx typeindex.Index) bool {
	_, ok := m.exports[idx]
	return ok
}

// ExportedTypes returns the export set, sorted.
func (m *Manufactory) ExportedTypes() []typeindex.Index {
	out := make([]typeindex.Index, 0, len(m.exports))
	for idx := range m.exports {
		out = append(out, idx)
	}
	typeindex.Sort(out)
	return out
}

// Runtime returns the underlying RuntimeManufactory.
func (m *Manufactory) Runtime() *RuntimeManufactory { return m.rt }

// Resolve returns the untyped value for an exported type. It is the entry
// point for callers that only know types by Index, such as manifests.
func (m *Manufactory) Resolve(idx typeindex.Index) (any, error) {
	if !m.Exports(idx) {
		return nil, &NotExportedError{Type: idx}
	}
	return m.rt.Get(idx)
}

// Get returns the value of type T and whether it could be produced.
func Get[T any](m *Manufactory) (T, bool) {
	v, err := TryGet[T](m)
	return v, err == nil
}

// TryGet returns the value of type T or the reason it could not be produced.
//
// Errors:
//   - *NotExportedError: T is not in m's export set
//   - *MissingRecipeError: nothing produces T
//   - *ProductionError: T or one of its dependencies failed
//   - *WrongTypeError: the produced value is not a T
func TryGet[T any](m *Manufactory) (T, error) {
	var zero T
	idx := typeindex.Of[T]()
	raw, err := m.Resolve(idx)
	if err != nil {
		return zero, err
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &WrongTypeError{Type: idx, GotType: reflect.TypeOf(raw).String()}
	}
	return v, nil
}

// MustGet returns the value of type T or panics with the TryGet error.
// Useful in bootstrap code and tests where a missing value is fatal.
func MustGet[T any](m *Manufactory) T {
	v, err := TryGet[T](m)
	if err != nil {
		panic(err)
	}
	return v
}

// TypeInfo describes one registered type.
type TypeInfo struct {
	Type         typeindex.Index `json:"type" yaml:"type"`
	Lifecycle    Lifecycle       `json:"lifecycle" yaml:"lifecycle"`
	Kind         RecipeKind      `json:"kind" yaml:"kind"`
	Dependencies []Dependency    `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Exported     bool            `json:"exported" yaml:"exported"`
	Cached       bool            `json:"cached" yaml:"cached"`
}

// Describe lists every type the underlying CookBook knows, sorted by type.
func (m *Manufactory) Describe() []TypeInfo {
	types := m.rt.cb.Types()
	typeindex.Sort(types)

	out := make([]TypeInfo, 0, len(types))
	for _, idx := range types {
		r := m.rt.cb.recipes[idx]
		out = append(out, TypeInfo{
			Type:         idx,
			Lifecycle:    r.lifecycle,
			Kind:         r.kind,
			Dependencies: r.dependencies(),
			Exported:     m.Exports(idx),
			Cached:       r.lifecycle == LifecycleInstance || m.rt.cached(idx),
		})
	}
	return out
}
