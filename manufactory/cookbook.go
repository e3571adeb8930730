package manufactory

import (
	"errors"
	"maps"
	"reflect"

	"go.uber.org/zap"

	"github.com/sghaida/manufactory/internal/depgraph"
	"github.com/sghaida/manufactory/typeindex"
)

// CookBook maps types to the recipes producing them.
//
// A CookBook becomes invalid on the first conflicting or malformed
// registration and stays invalid: later registrations are ignored and
// CheckCompleteness reports false. Err returns the first error recorded.
//
// Registration methods return the CookBook for chaining:
//
//	cb := manufactory.NewCookBook().
//	    AddRetainedFactory(newAudioPlayer).
//	    AddRequiredFactory(newAlerts)
//	if !cb.CheckCompleteness() {
//	    return cb.Err()
//	}
//
// A CookBook is not safe for concurrent mutation.
type CookBook struct {
	recipes  map[typeindex.Index]*recipe
	order    []typeindex.Index
	primary  []typeindex.Index
	required []typeindex.Index

	err error
	log *zap.Logger
}

// NewCookBook returns an empty CookBook. Only WithLogger applies.
func NewCookBook(opts ...Option) *CookBook {
	o := buildOptions(opts)
	return &CookBook{recipes: map[typeindex.Index]*recipe{}, log: o.log}
}

// AddUniqueFactory registers fn; every request produces a new value.
func (cb *CookBook) AddUniqueFactory(fn any) *CookBook {
	return cb.addFunction(LifecycleUnique, fn)
}

// AddPrimaryFactory registers fn; the value is produced when a manufactory
// is built, before any required value.
func (cb *CookBook) AddPrimaryFactory(fn any) *CookBook {
	return cb.addFunction(LifecyclePrimary, fn)
}

// AddRequiredFactory registers fn; the value is produced when a manufactory
// is built.
func (cb *CookBook) AddRequiredFactory(fn any) *CookBook {
	return cb.addFunction(LifecycleRequired, fn)
}

// AddRetainedFactory registers fn; the value is produced on first request
// and kept.
func (cb *CookBook) AddRetainedFactory(fn any) *CookBook {
	return cb.addFunction(LifecycleRetained, fn)
}

// AddUnloadableFactory registers fn; the value is produced on first request
// and reused only while referenced elsewhere.
//
// fn should return a pointer to a freshly allocated object. Anything else
// cannot be weakly referenced and is retained instead.
func (cb *CookBook) AddUnloadableFactory(fn any) *CookBook {
	return cb.addFunction(LifecycleUnloadable, fn)
}

// AddInstance registers a pre-built value under its dynamic type.
// Use AddInstanceOf to register under an interface type.
func (cb *CookBook) AddInstance(v any) *CookBook {
	cb.addInstanceAs(typeindex.OfType(reflect.TypeOf(v)), v)
	return cb
}

// AddProducer registers a type-erased producer for idx.
//
// The produced value is stored as returned; callers asking for idx through
// the typed accessors must agree on its Go type.
func (cb *CookBook) AddProducer(idx typeindex.Index, lc Lifecycle, deps []Dependency, fn ProducerFunc) *CookBook {
	if !cb.IsValid() {
		return cb
	}
	if _, known := lifecycleNames[lc]; !known || lc == LifecycleInstance {
		cb.fail(&SignatureError{Func: "ProducerFunc for " + idx.Name(), Reason: "unusable lifecycle " + lc.String()})
		return cb
	}
	r, err := newProducerRecipe(idx, lc, deps, fn)
	if err != nil {
		cb.fail(err)
		return cb
	}
	cb.add(r)
	return cb
}

// AddCookBook merges other into cb. Recipes both books hold for one type
// must be equivalent. Eager gets are appended in other's order.
func (cb *CookBook) AddCookBook(other *CookBook) *CookBook {
	if !cb.IsValid() {
		return cb
	}
	if other == nil {
		return cb
	}
	if err := other.Err(); err != nil {
		cb.fail(err)
		return cb
	}
	for _, idx := range other.order {
		cb.add(other.recipes[idx])
		if !cb.IsValid() {
			return cb
		}
	}
	return cb
}

func (cb *CookBook) addFunction(lc Lifecycle, fn any) *CookBook {
	if !cb.IsValid() {
		return cb
	}
	r, err := newFunctionRecipe(lc, fn)
	if err != nil {
		cb.fail(err)
		return cb
	}
	cb.add(r)
	return cb
}

func (cb *CookBook) addInstanceAs(idx typeindex.Index, v any) {
	if !cb.IsValid() {
		return
	}
	r, err := newInstanceRecipe(idx, v)
	if err != nil {
		cb.fail(err)
		return
	}
	cb.add(r)
}

func (cb *CookBook) add(r *recipe) {
	if existing, ok := cb.recipes[r.produces]; ok {
		if existing.isEquivalentTo(r) {
			return
		}
		cb.fail(&ConflictError{Type: r.produces, Existing: existing.kind, Incoming: r.kind})
		return
	}
	cb.recipes[r.produces] = r
	cb.order = append(cb.order, r.produces)
	switch r.lifecycle {
	case LifecyclePrimary:
		cb.primary = append(cb.primary, r.produces)
	case LifecycleRequired:
		cb.required = append(cb.required, r.produces)
	}
}

func (cb *CookBook) fail(err error) {
	if cb.err != nil {
		return
	}
	cb.err = err
	cb.log.Error("cookbook is now invalid", zap.Error(err))
}

// Err returns the error that invalidated the CookBook, or nil.
func (cb *CookBook) Err() error { return cb.err }

// IsValid reports whether no error has been recorded.
func (cb *CookBook) IsValid() bool { return cb.err == nil }

// CheckCompleteness validates the dependency graph once: it fails when the
// CookBook is already invalid, when any cycle exists (every registered type
// is a search root) or when a required dependency has no recipe. The first
// two leave the CookBook invalid; see Err.
func (cb *CookBook) CheckCompleteness() bool {
	if !cb.IsValid() {
		return false
	}
	if err := cb.checkAcyclic(); err != nil {
		return false
	}

	var missing []error
	for _, m := range cb.graph().Missing() {
		missing = append(missing, &MissingDependencyError{Type: m.From, Dependency: m.To})
	}
	if len(missing) > 0 {
		cb.fail(errors.Join(missing...))
		return false
	}
	return true
}

func (cb *CookBook) checkAcyclic() error {
	if path := cb.graph().FindCycle(); path != nil {
		err := &CycleError{Path: path}
		cb.log.Error("dependency cycle", zap.Strings("cycle", typeindex.Names(path)))
		cb.fail(err)
		return err
	}
	return nil
}

func (cb *CookBook) graph() *depgraph.Graph[typeindex.Index] {
	g := depgraph.New[typeindex.Index]()
	for _, idx := range cb.order {
		deps := cb.recipes[idx].deps
		edges := make([]depgraph.Edge[typeindex.Index], len(deps))
		for i, d := range deps {
			edges[i] = depgraph.Edge[typeindex.Index]{To: d.Type, Optional: d.Optional}
		}
		g.AddNode(idx, edges...)
	}
	return g
}

// doRequiredGets produces every primary type then every required type, each
// in registration order, and stops at the first failure.
func (cb *CookBook) doRequiredGets(rm *RuntimeManufactory) error {
	for _, group := range [][]typeindex.Index{cb.primary, cb.required} {
		for _, idx := range group {
			if _, err := rm.Get(idx); err != nil {
				return &RequiredGetError{Type: idx, Lifecycle: cb.recipes[idx].lifecycle, Cause: err}
			}
		}
	}
	return nil
}

// Has reports whether a recipe for idx is registered.
func (cb *CookBook) Has(idx typeindex.Index) bool {
	_, ok := cb.recipes[idx]
	return ok
}

// Types returns the registered types in registration order.
func (cb *CookBook) Types() []typeindex.Index {
	out := make([]typeindex.Index, len(cb.order))
	copy(out, cb.order)
	return out
}

// Lifecycle returns the lifecycle registered for idx.
func (cb *CookBook) Lifecycle(idx typeindex.Index) (Lifecycle, bool) {
	r, ok := cb.recipes[idx]
	if !ok {
		return 0, false
	}
	return r.lifecycle, true
}

// Dependencies returns the dependency list registered for idx.
func (cb *CookBook) Dependencies(idx typeindex.Index) []Dependency {
	r, ok := cb.recipes[idx]
	if !ok {
		return nil
	}
	return r.dependencies()
}

// Clone returns an independent copy. Recipes are immutable and shared.
func (cb *CookBook) Clone() *CookBook {
	out := &CookBook{
		recipes:  maps.Clone(cb.recipes),
		order:    append([]typeindex.Index(nil), cb.order...),
		primary:  append([]typeindex.Index(nil), cb.primary...),
		required: append([]typeindex.Index(nil), cb.required...),
		err:      cb.err,
		log:      cb.log,
	}
	return out
}

type instanceAdder interface {
	addInstanceAs(idx typeindex.Index, v any)
}

// AddInstanceOf registers v under the static type T, which may be an
// interface. It works on a CookBook and on a ComponentAccumulator.
//
//	manufactory.AddInstanceOf[Speaker](cb, speaker)
func AddInstanceOf[T any, A instanceAdder](a A, v T) A {
	a.addInstanceAs(typeindex.Of[T](), v)
	return a
}
