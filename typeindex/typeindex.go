// Package typeindex provides a hashable, ordered identity for Go types.
//
// An Index is the key every manufactory lookup is made by. It is comparable
// (usable as a map key), totally ordered (usable in sorted output) and has a
// readable name for diagnostics.
//
// Two kinds of index exist:
//
//   - reflected: derived from a Go type via Of[T] or OfType
//   - named: a synthesized token for types that exist only by name, e.g. nodes
//     of a wiring manifest that has no Go code behind it
//
// A reflected index never equals a named index, even when the names match.
//
// Example:
//
//	idx := typeindex.Of[*AudioPlayer]()
//	fmt.Println(idx) // *voiceclient.AudioPlayer
package typeindex

import (
	"reflect"
	"sort"
	"strings"
)

// Index identifies one type.
//
// The zero Index identifies nothing; see IsZero.
type Index struct {
	t     reflect.Type
	token string
}

// Of returns the Index of T.
//
// T may be an interface type; the index identifies the interface itself,
// not whatever dynamic type is later stored in it.
func Of[T any]() Index {
	return Index{t: reflect.TypeFor[T]()}
}

// OfType returns the Index of a runtime type.
// A nil type yields the zero Index.
func OfType(t reflect.Type) Index {
	return Index{t: t}
}

// Named returns a synthesized Index for a type known only by name.
// An empty name yields the zero Index.
func Named(name string) Index {
	return Index{token: strings.TrimSpace(name)}
}

// IsZero reports whether the Index identifies nothing.
func (i Index) IsZero() bool { return i.t == nil && i.token == "" }

// IsNamed reports whether the Index was synthesized via Named.
func (i Index) IsNamed() bool { return i.t == nil && i.token != "" }

// Type returns the reflected type, or nil for named and zero indexes.
func (i Index) Type() reflect.Type { return i.t }

// Name returns a human readable, package qualified name.
func (i Index) Name() string {
	switch {
	case i.t != nil:
		return i.t.String()
	case i.token != "":
		return i.token
	default:
		return "<none>"
	}
}

// String implements fmt.Stringer.
func (i Index) String() string { return i.Name() }

// MarshalText renders the name, so an Index encodes as a plain string in YAML
// and JSON. There is no UnmarshalText: a name cannot be turned back into a type.
func (i Index) MarshalText() ([]byte, error) { return []byte(i.Name()), nil }

// key is the total-order key. Reflected types sort by their full package path
// qualified name; named tokens sort after all reflected types.
func (i Index) key() (int, string) {
	switch {
	case i.t != nil:
		return 1, qualified(i.t)
	case i.token != "":
		return 2, i.token
	default:
		return 0, ""
	}
}

// Compare orders a and b. It returns -1, 0 or +1.
//
// Distinct types with an identical qualified name (possible only for
// unnamed types built at runtime) compare equal in order but not in ==.
func Compare(a, b Index) int {
	ka, sa := a.key()
	kb, sb := b.key()
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return strings.Compare(sa, sb)
}

// Less reports whether i sorts before o.
func (i Index) Less(o Index) bool { return Compare(i, o) < 0 }

// Sort sorts indexes in place by Compare.
func Sort(idx []Index) {
	sort.SliceStable(idx, func(a, b int) bool { return idx[a].Less(idx[b]) })
}

// Names maps indexes to their names, preserving order.
func Names(idx []Index) []string {
	out := make([]string, len(idx))
	for n, i := range idx {
		out[n] = i.Name()
	}
	return out
}

func qualified(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	if t.Kind() == reflect.Pointer {
		return "*" + qualified(t.Elem())
	}
	return t.String()
}
