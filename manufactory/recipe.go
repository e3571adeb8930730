package manufactory

import (
	"fmt"
	"reflect"
	"regexp"
	"runtime"

	"github.com/sghaida/manufactory/typeindex"
)

// Dependency is one entry of a recipe's dependency list.
type Dependency struct {
	Type     typeindex.Index `json:"type" yaml:"type"`
	Optional bool            `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// ProducerFunc produces a value from its resolved dependencies, passed in
// declaration order. An absent optional dependency is passed as nil.
type ProducerFunc func(deps []any) (any, error)

// resolver is what a recipe needs from a manufactory to produce a value.
type resolver interface {
	resolve(idx typeindex.Index) (any, error)
	provides(idx typeindex.Index) bool
}

// recipe describes how to produce one type. It is immutable once built and
// may be shared between CookBooks.
type recipe struct {
	kind      RecipeKind
	lifecycle Lifecycle
	produces  typeindex.Index
	deps      []Dependency

	// function recipes
	fn         reflect.Value
	code       uintptr
	params     []reflect.Type
	returnsErr bool

	// explicit producer recipes
	producer ProducerFunc

	// instance recipes
	value any
}

var (
	errorType = reflect.TypeFor[error]()

	// closures and method values; everything else is a plain function
	closureName = regexp.MustCompile(`\.func\d+(\.\d+)*$|-fm$`)
)

func newFunctionRecipe(lc Lifecycle, fn any) (*recipe, error) {
	if fn == nil {
		return nil, ErrNilProducer
	}
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return nil, &SignatureError{Func: ft.String(), Reason: "not a function"}
	}
	if fv.IsNil() {
		return nil, ErrNilProducer
	}
	if ft.IsVariadic() {
		return nil, &SignatureError{Func: ft.String(), Reason: "variadic producers are not supported"}
	}

	r := &recipe{lifecycle: lc, fn: fv, code: fv.Pointer()}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, &SignatureError{Func: ft.String(), Reason: "second result must be error"}
		}
		r.returnsErr = true
	default:
		return nil, &SignatureError{Func: ft.String(), Reason: "must return T or (T, error)"}
	}
	if ft.Out(0) == errorType {
		return nil, &SignatureError{Func: ft.String(), Reason: "first result must be the produced type"}
	}
	r.produces = typeindex.OfType(ft.Out(0))

	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		r.params = append(r.params, pt)
		if pt.Implements(optionalParamType) {
			marker := reflect.Zero(pt).Interface().(optionalParam)
			r.deps = append(r.deps, Dependency{Type: typeindex.OfType(marker.dependencyType()), Optional: true})
			continue
		}
		r.deps = append(r.deps, Dependency{Type: typeindex.OfType(pt)})
	}

	r.kind = KindFactory
	if f := runtime.FuncForPC(r.code); f == nil || closureName.MatchString(f.Name()) {
		r.kind = KindFunction
	}
	return r, nil
}

func newProducerRecipe(idx typeindex.Index, lc Lifecycle, deps []Dependency, fn ProducerFunc) (*recipe, error) {
	if fn == nil {
		return nil, ErrNilProducer
	}
	if idx.IsZero() {
		return nil, &SignatureError{Func: "ProducerFunc", Reason: "produced type is empty"}
	}
	cp := make([]Dependency, len(deps))
	copy(cp, deps)
	return &recipe{kind: KindFunction, lifecycle: lc, produces: idx, deps: cp, producer: fn}, nil
}

func newInstanceRecipe(idx typeindex.Index, v any) (*recipe, error) {
	if isNull(v) {
		return nil, ErrNilProducer
	}
	if idx.IsZero() {
		return nil, &SignatureError{Func: fmt.Sprintf("%T", v), Reason: "produced type is empty"}
	}
	return &recipe{kind: KindInstance, lifecycle: LifecycleInstance, produces: idx, value: v}, nil
}

// dependencies returns a fresh copy of the dependency list.
func (r *recipe) dependencies() []Dependency {
	out := make([]Dependency, len(r.deps))
	copy(out, r.deps)
	return out
}

// isEquivalentTo reports whether r and o would produce the same thing, so
// that registering both for one type is not a conflict.
func (r *recipe) isEquivalentTo(o *recipe) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil || r.kind != o.kind || r.lifecycle != o.lifecycle || r.produces != o.produces {
		return false
	}
	switch r.kind {
	case KindFactory:
		return r.code == o.code && sameDeps(r.deps, o.deps)
	case KindInstance:
		return sameValue(r.value, o.value)
	}
	return false
}

func sameDeps(a, b []Dependency) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameValue(a, b any) (same bool) {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	// interface fields holding incomparable values panic on ==
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// produce resolves the dependencies and invokes the producer. A failing
// dependency short-circuits: the producer is never called.
func (r *recipe) produce(res resolver) (v any, err error) {
	if r.kind == KindInstance {
		return r.value, nil
	}

	args := make([]any, len(r.deps))
	for i, d := range r.deps {
		if d.Optional && !res.provides(d.Type) {
			continue
		}
		dv, derr := res.resolve(d.Type)
		if derr != nil {
			return nil, &ProductionError{Type: r.produces, Dependency: d.Type, Cause: derr}
		}
		args[i] = dv
	}

	defer func() {
		if rec := recover(); rec != nil {
			v = nil
			err = &ProductionError{Type: r.produces, Cause: fmt.Errorf("%w: %v", ErrProducerPanic, rec)}
		}
	}()

	if r.producer != nil {
		v, err = r.producer(args)
	} else {
		v, err = r.call(args)
	}
	if err != nil {
		return nil, &ProductionError{Type: r.produces, Cause: err}
	}
	if isNull(v) {
		return nil, &ProductionError{Type: r.produces, Cause: ErrNilResult}
	}
	return v, nil
}

func (r *recipe) call(args []any) (any, error) {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := r.params[i]
		if r.deps[i].Optional {
			if a == nil {
				in[i] = reflect.Zero(pt)
				continue
			}
			a = reflect.Zero(pt).Interface().(optionalParam).fill(a)
		}
		av := reflect.ValueOf(a)
		if !av.IsValid() || !av.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("manufactory: argument %d: %T is not assignable to %s", i, a, pt)
		}
		in[i] = av
	}

	out := r.fn.Call(in)
	if r.returnsErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}
