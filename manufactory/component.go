package manufactory

import (
	"errors"
	"slices"

	"github.com/sghaida/manufactory/typeindex"
)

// ComponentAccumulator collects factories and finished components before
// they are sealed into a Component.
//
// Exports, imports and optional imports are derived from what has been
// accumulated: a type registered directly or exported by an added
// component is an export, and a dependency no export satisfies is an
// import. Types an added component keeps internal are built for it but
// never leave it.
type ComponentAccumulator struct {
	// cb holds every recipe, internal ones of added components included
	cb *CookBook
	// own holds only the recipes registered directly
	own *CookBook

	exported []typeindex.Index

	// imports declared by accumulated components that nothing depends on yet
	carried         []typeindex.Index
	carriedOptional []typeindex.Index
}

// NewComponentAccumulator returns an empty accumulator. Only WithLogger applies.
func NewComponentAccumulator(opts ...Option) *ComponentAccumulator {
	return &ComponentAccumulator{cb: NewCookBook(opts...), own: NewCookBook()}
}

// AddUniqueFactory forwards to CookBook.AddUniqueFactory.
func (a *ComponentAccumulator) AddUniqueFactory(fn any) *ComponentAccumulator {
	a.cb.AddUniqueFactory(fn)
	a.own.AddUniqueFactory(fn)
	return a
}

// AddPrimaryFactory forwards to CookBook.AddPrimaryFactory.
func (a *ComponentAccumulator) AddPrimaryFactory(fn any) *ComponentAccumulator {
	a.cb.AddPrimaryFactory(fn)
	a.own.AddPrimaryFactory(fn)
	return a
}

// AddRequiredFactory forwards to CookBook.AddRequiredFactory.
func (a *ComponentAccumulator) AddRequiredFactory(fn any) *ComponentAccumulator {
	a.cb.AddRequiredFactory(fn)
	a.own.AddRequiredFactory(fn)
	return a
}

// AddRetainedFactory forwards to CookBook.AddRetainedFactory.
func (a *ComponentAccumulator) AddRetainedFactory(fn any) *ComponentAccumulator {
	a.cb.AddRetainedFactory(fn)
	a.own.AddRetainedFactory(fn)
	return a
}

// AddUnloadableFactory forwards to CookBook.AddUnloadableFactory.
func (a *ComponentAccumulator) AddUnloadableFactory(fn any) *ComponentAccumulator {
	a.cb.AddUnloadableFactory(fn)
	a.own.AddUnloadableFactory(fn)
	return a
}

// AddInstance forwards to CookBook.AddInstance.
func (a *ComponentAccumulator) AddInstance(v any) *ComponentAccumulator {
	a.cb.AddInstance(v)
	a.own.AddInstance(v)
	return a
}

// AddProducer forwards to CookBook.AddProducer.
func (a *ComponentAccumulator) AddProducer(idx typeindex.Index, lc Lifecycle, deps []Dependency, fn ProducerFunc) *ComponentAccumulator {
	a.cb.AddProducer(idx, lc, deps, fn)
	a.own.AddProducer(idx, lc, deps, fn)
	return a
}

// AddComponent merges a sealed component: all of its recipes, but only its
// declared exports and the imports it still declares.
func (a *ComponentAccumulator) AddComponent(c *Component) *ComponentAccumulator {
	if c == nil {
		a.cb.fail(ErrNilComponent)
		return a
	}
	a.cb.AddCookBook(c.cb)
	a.exported = appendUnique(a.exported, c.exports...)
	a.carried = appendUnique(a.carried, c.imports...)
	a.carriedOptional = appendUnique(a.carriedOptional, c.optional...)
	return a
}

func (a *ComponentAccumulator) addInstanceAs(idx typeindex.Index, v any) {
	a.cb.addInstanceAs(idx, v)
	a.own.addInstanceAs(idx, v)
}

// Err returns the error that invalidated the accumulated CookBook, or nil.
func (a *ComponentAccumulator) Err() error { return a.cb.Err() }

// Exports returns the directly registered types and the exports of added
// components, sorted.
func (a *ComponentAccumulator) Exports() []typeindex.Index {
	out := appendUnique(a.own.Types(), a.exported...)
	typeindex.Sort(out)
	return out
}

// Imports returns the required dependencies no export satisfies, sorted.
func (a *ComponentAccumulator) Imports() []typeindex.Index {
	imports, _ := a.unresolved()
	return imports
}

// OptionalImports returns the optional dependencies no export satisfies
// and that are not also required imports, sorted.
func (a *ComponentAccumulator) OptionalImports() []typeindex.Index {
	_, optional := a.unresolved()
	return optional
}

func (a *ComponentAccumulator) exportSet() map[typeindex.Index]struct{} {
	set := make(map[typeindex.Index]struct{}, len(a.own.order)+len(a.exported))
	for _, idx := range a.own.order {
		set[idx] = struct{}{}
	}
	for _, idx := range a.exported {
		set[idx] = struct{}{}
	}
	return set
}

// unresolved only looks at directly registered recipes: dependencies of an
// added component's recipes are either satisfied inside it or carried.
func (a *ComponentAccumulator) unresolved() (imports, optional []typeindex.Index) {
	exported := a.exportSet()
	satisfied := func(idx typeindex.Index) bool {
		_, ok := exported[idx]
		return ok
	}

	required := map[typeindex.Index]bool{}
	maybe := map[typeindex.Index]bool{}
	for _, idx := range a.own.order {
		for _, d := range a.own.recipes[idx].deps {
			if satisfied(d.Type) {
				continue
			}
			if d.Optional {
				maybe[d.Type] = true
			} else {
				required[d.Type] = true
			}
		}
	}
	for _, idx := range a.carried {
		if !satisfied(idx) {
			required[idx] = true
		}
	}
	for _, idx := range a.carriedOptional {
		if !satisfied(idx) {
			maybe[idx] = true
		}
	}

	for idx := range required {
		imports = append(imports, idx)
	}
	for idx := range maybe {
		if !required[idx] {
			optional = append(optional, idx)
		}
	}
	typeindex.Sort(imports)
	typeindex.Sort(optional)
	return imports, optional
}

type declKind uint8

const (
	declExport declKind = iota + 1
	declImport
	declOptionalImport
)

// Declaration is one part of a component's public contract; see Export,
// Import and OptionalImport.
type Declaration struct {
	kind  declKind
	types []typeindex.Index
}

// Export declares types the component makes available.
func Export(idx ...typeindex.Index) Declaration { return Declaration{kind: declExport, types: idx} }

// Import declares types the component needs from elsewhere.
func Import(idx ...typeindex.Index) Declaration { return Declaration{kind: declImport, types: idx} }

// OptionalImport declares types the component can use when available.
func OptionalImport(idx ...typeindex.Index) Declaration {
	return Declaration{kind: declOptionalImport, types: idx}
}

// Component is a sealed, validated CookBook together with its declared
// exports and the imports it still needs.
type Component struct {
	cb       *CookBook
	exports  []typeindex.Index
	imports  []typeindex.Index
	optional []typeindex.Index
}

// NewComponent seals the accumulator after checking the declarations
// against it:
//
//   - every declared export is registered directly or exported by an
//     added component
//   - every import the accumulator still has is declared with Import
//   - every optional import is declared with Import or OptionalImport
//
// All violations are reported together. Without any Export declaration
// the component exports everything the accumulator does.
func NewComponent(acc *ComponentAccumulator, decls ...Declaration) (*Component, error) {
	if acc == nil {
		return nil, ErrNilComponent
	}
	if err := acc.Err(); err != nil {
		return nil, err
	}

	var exports, imports, optional []typeindex.Index
	exportsDeclared := false
	for _, d := range decls {
		switch d.kind {
		case declExport:
			exportsDeclared = true
			exports = appendUnique(exports, d.types...)
		case declImport:
			imports = appendUnique(imports, d.types...)
		case declOptionalImport:
			optional = appendUnique(optional, d.types...)
		}
	}
	if !exportsDeclared {
		exports = acc.Exports()
	}

	available := acc.exportSet()
	var errs []error
	for _, idx := range exports {
		if _, ok := available[idx]; !ok {
			errs = append(errs, &MissingExportError{Type: idx})
		}
	}
	needed, maybe := acc.unresolved()
	for _, idx := range needed {
		if !slices.Contains(imports, idx) {
			errs = append(errs, &UndeclaredImportError{Type: idx})
		}
	}
	for _, idx := range maybe {
		if !slices.Contains(imports, idx) && !slices.Contains(optional, idx) {
			errs = append(errs, &UndeclaredImportError{Type: idx, Optional: true})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Component{
		cb:       acc.cb.Clone(),
		exports:  exports,
		imports:  withoutExported(available, imports),
		optional: withoutExported(available, optional),
	}, nil
}

// MustComponent is NewComponent for bootstrap code: it panics on error.
func MustComponent(acc *ComponentAccumulator, decls ...Declaration) *Component {
	c, err := NewComponent(acc, decls...)
	if err != nil {
		panic(err)
	}
	return c
}

// Exports returns the declared exports in declaration order.
func (c *Component) Exports() []typeindex.Index { return append([]typeindex.Index(nil), c.exports...) }

// Imports returns the required imports still unresolved.
func (c *Component) Imports() []typeindex.Index { return append([]typeindex.Index(nil), c.imports...) }

// OptionalImports returns the optional imports still unresolved.
func (c *Component) OptionalImports() []typeindex.Index {
	return append([]typeindex.Index(nil), c.optional...)
}

// CookBook returns a copy of the sealed CookBook.
func (c *Component) CookBook() *CookBook { return c.cb.Clone() }

func (c *Component) exportSet() map[typeindex.Index]struct{} {
	set := make(map[typeindex.Index]struct{}, len(c.exports))
	for _, idx := range c.exports {
		set[idx] = struct{}{}
	}
	return set
}

func appendUnique(dst []typeindex.Index, idx ...typeindex.Index) []typeindex.Index {
	for _, i := range idx {
		if i.IsZero() || slices.Contains(dst, i) {
			continue
		}
		dst = append(dst, i)
	}
	return dst
}

func withoutExported(available map[typeindex.Index]struct{}, list []typeindex.Index) []typeindex.Index {
	var out []typeindex.Index
	for _, idx := range list {
		if _, ok := available[idx]; !ok {
			out = append(out, idx)
		}
	}
	return out
}
