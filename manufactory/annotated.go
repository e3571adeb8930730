package manufactory

import "reflect"

// Annotated wraps T with a marker Tag so several independent producers of the
// same interface can live in one CookBook without colliding.
//
// Annotated[Tag1, T], Annotated[Tag2, T] and T are three unrelated types:
// registering one never satisfies a request for another.
//
//	type primarySpeaker struct{}
//	type alertsSpeaker struct{}
//
//	func newPrimary() manufactory.Annotated[primarySpeaker, Speaker] {
//	    return manufactory.Annotate[primarySpeaker, Speaker](newSpeaker("primary"))
//	}
type Annotated[Tag any, T any] struct {
	value T
}

// Annotate wraps v under Tag.
func Annotate[Tag any, T any](v T) Annotated[Tag, T] {
	return Annotated[Tag, T]{value: v}
}

// Get returns the wrapped value.
func (a Annotated[Tag, T]) Get() T { return a.value }

func (a Annotated[Tag, T]) isNull() bool { return isNull(any(a.value)) }

func (a Annotated[Tag, T]) unwrapValue() any { return any(a.value) }

func (Annotated[Tag, T]) rewrapValue(v any) any {
	t, _ := v.(T)
	return Annotated[Tag, T]{value: t}
}

// Optional is a factory parameter type declaring an optional dependency on T.
//
// When the CookBook has no recipe for T the factory still runs and receives
// an empty Optional. When a recipe exists but fails, the failure propagates
// like for any other dependency.
//
//	func newAlerts(player AudioPlayer, m manufactory.Optional[Metrics]) *Alerts {
//	    if metrics, ok := m.Get(); ok { ... }
//	}
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a populated Optional, mostly useful in tests.
func Some[T any](v T) Optional[T] { return Optional[T]{value: v, ok: true} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// OrElse returns the value or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (Optional[T]) dependencyType() reflect.Type { return reflect.TypeFor[T]() }

func (Optional[T]) fill(v any) any {
	t, ok := v.(T)
	return Optional[T]{value: t, ok: ok}
}

type nullable interface{ isNull() bool }

type wrapper interface {
	unwrapValue() any
	rewrapValue(v any) any
}

type optionalParam interface {
	dependencyType() reflect.Type
	fill(v any) any
}

var optionalParamType = reflect.TypeFor[optionalParam]()

// isNull reports whether a produced value counts as "nothing".
func isNull(v any) bool {
	if v == nil {
		return true
	}
	if n, ok := v.(nullable); ok {
		return n.isNull()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}
