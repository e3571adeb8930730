package manufactory

import (
	"reflect"
	"unsafe"
	"weak"
)

// weakRef is a weak reference to a produced value of arbitrary pointer type.
//
// Only non-nil pointers to sized objects can be weakly referenced. Pointer-free
// objects under tinyAllocSize are refused too: the runtime packs them into
// shared blocks, so a weak pointer to one is not cleared while any neighbour
// in its block is alive. Annotated
// values are unwrapped first and rewrapped on retrieval, so the Annotated
// wrapper itself never holds the object alive.
type weakRef struct {
	ptrType reflect.Type
	elem    reflect.Type
	ptr     weak.Pointer[byte]
	rewrap  func(any) any
}

// tinyAllocSize mirrors the runtime's tiny allocator threshold.
const tinyAllocSize = 16

func makeWeakRef(v any) (*weakRef, bool) {
	var rewrap func(any) any
	inner := v
	if w, ok := v.(wrapper); ok {
		inner = w.unwrapValue()
		// bound to the zero value so the closure keeps nothing alive
		rewrap = reflect.Zero(reflect.TypeOf(v)).Interface().(wrapper).rewrapValue
	}

	rv := reflect.ValueOf(inner)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, false
	}
	elem := rv.Type().Elem()
	if elem.Size() == 0 || (elem.Size() < tinyAllocSize && !hasPointers(elem)) {
		return nil, false
	}
	return &weakRef{
		ptrType: rv.Type(),
		elem:    elem,
		ptr:     weak.Make((*byte)(rv.UnsafePointer())),
		rewrap:  rewrap,
	}, true
}

// value returns the referenced value, or nil once it has been collected.
func (r *weakRef) value() any {
	p := r.ptr.Value()
	if p == nil {
		return nil
	}
	v := reflect.NewAt(r.elem, unsafe.Pointer(p)).Convert(r.ptrType).Interface()
	if r.rewrap != nil {
		return r.rewrap(v)
	}
	return v
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.String, reflect.Slice,
		reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
