package sdkclient

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sghaida/manufactory/typeindex"
)

var (
	// ErrConstructPanic is returned if a builder panics inside Construct.
	ErrConstructPanic = errors.New("sdkclient: panic during Construct")

	// ErrConfigurePanic is returned if a feature client panics inside Configure.
	ErrConfigurePanic = errors.New("sdkclient: panic during Configure")

	// ErrNilClient is returned when Construct reports success without a client.
	ErrNilClient = errors.New("sdkclient: builder returned nil client")

	// ErrConfigureRejected is the cause of a ConfigureError when Configure returned false.
	ErrConfigureRejected = errors.New("sdkclient: configure returned false")
)

// DuplicateTypeError is returned when two clients or components claim one type.
type DuplicateTypeError struct{ Type typeindex.Index }

// Error implements the error interface.
func (e DuplicateTypeError) Error() string {
	// Example: sdkclient: type "*alerts.Client" already registered
	return "sdkclient: type " + strconv.Quote(e.Type.Name()) + " already registered"
}

// Unsatisfied lists what one pending builder is still waiting for.
type Unsatisfied struct {
	Builder string
	Missing []typeindex.Index
}

// UnsatisfiedError is returned by Build when resolution stops with builders
// still pending.
type UnsatisfiedError struct{ Pending []Unsatisfied }

// Error implements the error interface.
func (e *UnsatisfiedError) Error() string {
	// Example: sdkclient: unsatisfied builders: "alerts" needs [*audio.Player]
	parts := make([]string, len(e.Pending))
	for i, p := range e.Pending {
		parts[i] = strconv.Quote(p.Builder) + " needs [" + strings.Join(typeindex.Names(p.Missing), ", ") + "]"
	}
	return "sdkclient: unsatisfied builders: " + strings.Join(parts, "; ")
}

// ConstructError reports a builder whose Construct failed.
type ConstructError struct {
	Builder string
	Cause   error
}

// Error implements the error interface.
func (e *ConstructError) Error() string {
	return "sdkclient: construct " + strconv.Quote(e.Builder) + ": " + e.Cause.Error()
}

// Unwrap returns the cause.
func (e *ConstructError) Unwrap() error { return e.Cause }

// ConfigureError reports a feature client whose Configure failed.
type ConfigureError struct {
	Builder string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigureError) Error() string {
	return "sdkclient: configure " + strconv.Quote(e.Builder) + ": " + e.Cause.Error()
}

// Unwrap returns the cause.
func (e *ConfigureError) Unwrap() error { return e.Cause }
