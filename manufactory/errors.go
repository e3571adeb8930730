package manufactory

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sghaida/manufactory/typeindex"
)

var (
	// ErrInvalidCookBook is matched (errors.Is) by every error that leaves a
	// CookBook invalid: conflicts, bad producers, cycles and missing dependencies.
	ErrInvalidCookBook = errors.New("manufactory: invalid cookbook")

	// ErrNilProducer is returned when a nil function or nil instance is registered.
	ErrNilProducer = errors.New("manufactory: nil producer")

	// ErrNilResult is the cause of a ProductionError when a producing function
	// returned a nil value without an error.
	ErrNilResult = errors.New("manufactory: producing function returned nil")

	// ErrProducerPanic is the cause of a ProductionError when a producing
	// function panicked.
	ErrProducerPanic = errors.New("manufactory: panic in producing function")

	// ErrNilComponent is returned by Create and NewComponent for nil inputs.
	ErrNilComponent = errors.New("manufactory: nil component")
)

func quoteIdx(i typeindex.Index) string { return strconv.Quote(i.Name()) }

func joinIdx(idx []typeindex.Index, sep string) string {
	return strings.Join(typeindex.Names(idx), sep)
}

// ConflictError is recorded when two non-equivalent recipes are registered
// for the same type.
type ConflictError struct {
	Type     typeindex.Index
	Existing RecipeKind
	Incoming RecipeKind
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	// Example: manufactory: conflicting recipes for type "*audio.Player" (factory vs instance)
	return "manufactory: conflicting recipes for type " + quoteIdx(e.Type) +
		" (" + e.Existing.String() + " vs " + e.Incoming.String() + ")"
}

// Is makes the error match ErrInvalidCookBook.
func (e *ConflictError) Is(target error) bool { return target == ErrInvalidCookBook }

// SignatureError is recorded when a producing function has an unusable shape.
type SignatureError struct {
	// Func is the function's type as text, or the offending value's type.
	Func string

	// Reason says what is wrong.
	Reason string
}

// Error implements the error interface.
func (e *SignatureError) Error() string {
	// Example: manufactory: bad producer func(int) (string, int): second result must be error
	return "manufactory: bad producer " + e.Func + ": " + e.Reason
}

// Is makes the error match ErrInvalidCookBook.
func (e *SignatureError) Is(target error) bool { return target == ErrInvalidCookBook }

// CycleError is recorded when the dependency graph contains a cycle.
// Path starts and ends with the same type.
type CycleError struct{ Path []typeindex.Index }

// Error implements the error interface.
func (e *CycleError) Error() string {
	// Example: manufactory: dependency cycle: A -> B -> A
	return "manufactory: dependency cycle: " + joinIdx(e.Path, " -> ")
}

// Is makes the error match ErrInvalidCookBook.
func (e *CycleError) Is(target error) bool { return target == ErrInvalidCookBook }

// MissingDependencyError is recorded by CheckCompleteness when a required
// dependency has no recipe.
type MissingDependencyError struct {
	Type       typeindex.Index
	Dependency typeindex.Index
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return "manufactory: type " + quoteIdx(e.Type) + " depends on " + quoteIdx(e.Dependency) + " which has no recipe"
}

// Is makes the error match ErrInvalidCookBook.
func (e *MissingDependencyError) Is(target error) bool { return target == ErrInvalidCookBook }

// MissingRecipeError is returned when a type with no recipe is requested.
type MissingRecipeError struct{ Type typeindex.Index }

// Error implements the error interface.
func (e *MissingRecipeError) Error() string {
	return "manufactory: no recipe for type " + quoteIdx(e.Type)
}

// ProductionError reports that a value could not be produced.
//
// When Dependency is set, the producing function was never called because
// that dependency failed first; Cause is the dependency's own error.
type ProductionError struct {
	Type       typeindex.Index
	Dependency typeindex.Index
	Cause      error
}

// Error implements the error interface.
func (e *ProductionError) Error() string {
	msg := "manufactory: cannot produce " + quoteIdx(e.Type)
	if !e.Dependency.IsZero() {
		msg += ": dependency " + quoteIdx(e.Dependency) + " unavailable"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *ProductionError) Unwrap() error { return e.Cause }

// RequiredGetError is returned when a primary or required type could not be
// produced while a manufactory was being built.
type RequiredGetError struct {
	Type      typeindex.Index
	Lifecycle Lifecycle
	Cause     error
}

// Error implements the error interface.
func (e *RequiredGetError) Error() string {
	return "manufactory: eager " + e.Lifecycle.String() + " get of " + quoteIdx(e.Type) + " failed: " + e.Cause.Error()
}

// Unwrap returns the cause.
func (e *RequiredGetError) Unwrap() error { return e.Cause }

// MissingExportError is returned by NewComponent when a declared export is
// not produced by anything accumulated.
type MissingExportError struct{ Type typeindex.Index }

// Error implements the error interface.
func (e *MissingExportError) Error() string {
	return "manufactory: component exports " + quoteIdx(e.Type) + " but nothing produces it"
}

// UndeclaredImportError is returned by NewComponent when an accumulated
// factory depends on a type that is neither produced nor declared as an import.
type UndeclaredImportError struct {
	Type     typeindex.Index
	Optional bool
}

// Error implements the error interface.
func (e *UndeclaredImportError) Error() string {
	kind := "import "
	if e.Optional {
		kind = "optional import "
	}
	return "manufactory: component needs " + kind + quoteIdx(e.Type) + " but does not declare it"
}

// UnresolvedImportError is returned by Create when the component still
// imports types nobody provides.
type UnresolvedImportError struct{ Types []typeindex.Index }

// Error implements the error interface.
func (e *UnresolvedImportError) Error() string {
	return "manufactory: component has unresolved imports: " + joinIdx(e.Types, ", ")
}

// NotExportedError is returned when a type outside a manufactory's export set
// is requested, or a subset asks for more than its parent exports.
type NotExportedError struct{ Type typeindex.Index }

// Error implements the error interface.
func (e *NotExportedError) Error() string {
	return "manufactory: type " + quoteIdx(e.Type) + " is not exported"
}

// WrongTypeError is returned by TryGet when the produced value cannot be
// converted to the requested type parameter.
type WrongTypeError struct {
	Type    typeindex.Index
	GotType string
}

// Error implements the error interface.
func (e *WrongTypeError) Error() string {
	return "manufactory: value for " + quoteIdx(e.Type) + " has wrong type (" + e.GotType + ")"
}

// UnknownLifecycleError is returned by ParseLifecycle.
type UnknownLifecycleError struct{ Name string }

// Error implements the error interface.
func (e UnknownLifecycleError) Error() string {
	return "manufactory: unknown lifecycle " + strconv.Quote(e.Name)
}
