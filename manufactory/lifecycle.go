package manufactory

import (
	"strconv"
	"strings"
)

// Lifecycle is the caching policy applied to instances of one type.
type Lifecycle uint8

const (
	// LifecycleUnique produces a fresh instance on every request.
	LifecycleUnique Lifecycle = iota + 1

	// LifecyclePrimary is produced eagerly when the manufactory is built,
	// before any LifecycleRequired type, and cached for the manufactory's lifetime.
	LifecyclePrimary

	// LifecycleRequired is produced eagerly when the manufactory is built
	// and cached for the manufactory's lifetime.
	LifecycleRequired

	// LifecycleRetained is produced on first request and cached for the
	// manufactory's lifetime.
	LifecycleRetained

	// LifecycleUnloadable is produced on first request and reused only while
	// something outside the manufactory still references it.
	LifecycleUnloadable

	// LifecycleInstance is a fixed pre-built value.
	LifecycleInstance
)

var lifecycleNames = map[Lifecycle]string{
	LifecycleUnique:     "unique",
	LifecyclePrimary:    "primary",
	LifecycleRequired:   "required",
	LifecycleRetained:   "retained",
	LifecycleUnloadable: "unloadable",
	LifecycleInstance:   "instance",
}

// String implements fmt.Stringer.
func (l Lifecycle) String() string {
	if s, ok := lifecycleNames[l]; ok {
		return s
	}
	return "lifecycle(" + strconv.Itoa(int(l)) + ")"
}

// MarshalText renders the lifecycle name (used by YAML and JSON encoders).
func (l Lifecycle) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText parses a lifecycle name; see ParseLifecycle.
func (l *Lifecycle) UnmarshalText(b []byte) error {
	v, err := ParseLifecycle(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLifecycle parses a case-insensitive lifecycle name.
func ParseLifecycle(s string) (Lifecycle, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for l, name := range lifecycleNames {
		if name == want {
			return l, nil
		}
	}
	return 0, UnknownLifecycleError{Name: s}
}

// strong reports whether the lifecycle keeps its value for the manufactory's lifetime.
func (l Lifecycle) strong() bool {
	switch l {
	case LifecyclePrimary, LifecycleRequired, LifecycleRetained, LifecycleInstance:
		return true
	}
	return false
}

// RecipeKind tells how a recipe produces its value.
type RecipeKind uint8

const (
	// KindFactory is a plain (non-closure) function; two factory recipes are
	// equivalent when they share the function and the dependency list.
	KindFactory RecipeKind = iota + 1

	// KindFunction is a closure or ProducerFunc; it is only equivalent to itself.
	KindFunction

	// KindInstance is a pre-built value.
	KindInstance
)

// String implements fmt.Stringer.
func (k RecipeKind) String() string {
	switch k {
	case KindFactory:
		return "factory"
	case KindFunction:
		return "function"
	case KindInstance:
		return "instance"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText renders the kind name.
func (k RecipeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
