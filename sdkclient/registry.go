// Package sdkclient assembles feature clients into a running SDK client.
//
// It is the runtime-only sibling of the manufactory package: no declared
// exports, no startup graph validation. Each FeatureClientBuilder names the
// types it needs; Build constructs builders as soon as those types are
// available, configures every client once, and hands back a Registry that
// shuts clients down in reverse construction order.
//
// Expected usage:
//
//	reg, err := sdkclient.NewBuilder().
//	    WithComponent(storage).
//	    WithFeature(audioBuilder{}).
//	    WithFeature(alertsBuilder{}).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	defer reg.Shutdown()
package sdkclient

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/sghaida/manufactory/typeindex"
)

// FeatureClient is one assembled capability of the SDK client.
type FeatureClient interface {
	// Configure runs once, after every client is constructed. Returning
	// false fails the build.
	Configure(reg *Registry) bool

	// DoShutdown releases the client. Clients constructed later are shut
	// down first.
	DoShutdown()
}

// FeatureClientBuilder constructs one FeatureClient.
type FeatureClientBuilder interface {
	Name() string

	// RequiredTypes lists the clients or components Construct will look up.
	RequiredTypes() []typeindex.Index

	// Construct builds the client. It may register components other
	// builders depend on.
	Construct(reg *Registry) (FeatureClient, error)
}

// Registry holds feature clients and components, both keyed by type.
//
// It is safe for concurrent lookups.
type Registry struct {
	mu         sync.RWMutex
	clients    map[typeindex.Index]FeatureClient
	components map[typeindex.Index]any
	order      []FeatureClient

	shutdownOnce sync.Once
	log          *zap.Logger
}

func newRegistry(log *zap.Logger) *Registry {
	return &Registry{
		clients:    map[typeindex.Index]FeatureClient{},
		components: map[typeindex.Index]any{},
		log:        log,
	}
}

// RegisterComponent stores v under its dynamic type.
func (r *Registry) RegisterComponent(v any) error {
	return r.registerComponent(typeindex.OfType(reflect.TypeOf(v)), v)
}

// RegisterComponentOf stores v under the static type T, which may be an interface.
func RegisterComponentOf[T any](r *Registry, v T) error {
	return r.registerComponent(typeindex.Of[T](), v)
}

func (r *Registry) registerComponent(idx typeindex.Index, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasLocked(idx) {
		return DuplicateTypeError{Type: idx}
	}
	r.components[idx] = v
	return nil
}

func (r *Registry) addClient(c FeatureClient) error {
	idx := typeindex.OfType(reflect.TypeOf(c))
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasLocked(idx) {
		return DuplicateTypeError{Type: idx}
	}
	r.clients[idx] = c
	r.order = append(r.order, c)
	return nil
}

func (r *Registry) hasLocked(idx typeindex.Index) bool {
	_, client := r.clients[idx]
	_, component := r.components[idx]
	return client || component
}

// Has reports whether a client or component of type idx is registered.
func (r *Registry) Has(idx typeindex.Index) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasLocked(idx)
}

// Get returns the client or component registered under idx (no panic).
func (r *Registry) Get(idx typeindex.Index) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.clients[idx]; ok {
		return c, true
	}
	v, ok := r.components[idx]
	return v, ok
}

// MustGet returns the value or panics with a helpful message.
// Useful in Construct and Configure, where RequiredTypes guarantees presence.
func (r *Registry) MustGet(idx typeindex.Index) any {
	v, ok := r.Get(idx)
	if !ok {
		panic(fmt.Errorf("sdkclient: registry missing type %q", idx.Name()))
	}
	return v
}

// GetFeatureClient returns the client of type T.
func GetFeatureClient[T FeatureClient](r *Registry) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[typeindex.Of[T]()].(T)
	return c, ok
}

// GetComponent returns the component registered as T.
func GetComponent[T any](r *Registry) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.components[typeindex.Of[T]()].(T)
	return v, ok
}

// Clients returns the feature clients in construction order.
func (r *Registry) Clients() []FeatureClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]FeatureClient(nil), r.order...)
}

// configure runs c.Configure and converts a panic into an error.
func (r *Registry) configure(c FeatureClient) (ok bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ok = false
			err = fmt.Errorf("%w: %v", ErrConfigurePanic, rec)
		}
	}()
	return c.Configure(r), nil
}

// Shutdown shuts every client down in reverse construction order. Only the
// first call has an effect; a panicking client is logged and skipped.
func (r *Registry) Shutdown() {
	r.shutdownOnce.Do(func() {
		clients := r.Clients()
		for i := len(clients) - 1; i >= 0; i-- {
			r.shutdownClient(clients[i])
		}
	})
}

func (r *Registry) shutdownClient(c FeatureClient) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("feature client panicked during shutdown",
				zap.String("client", reflect.TypeOf(c).String()),
				zap.Any("panic", rec),
			)
		}
	}()
	c.DoShutdown()
}
