package manufactory

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sghaida/manufactory/typeindex"
)

// RuntimeManufactory produces values from a CookBook on demand and caches
// them according to each type's lifecycle.
//
// It is safe for concurrent use. The first production of a cached type is
// serialized per type; because the graph is acyclic, nested productions
// always lock in dependency order.
type RuntimeManufactory struct {
	cb      *CookBook
	log     *zap.Logger
	metrics *Metrics

	mu     sync.Mutex
	caches map[typeindex.Index]cache
}

// NewRuntimeManufactory copies cb and produces every primary then every
// required type. It fails, and returns nothing, when cb is invalid, has a
// cycle, or any eager production fails.
//
// Missing recipes are not checked up front; use CheckCompleteness (or
// Create) for that. A request for a type with no recipe fails at runtime
// with a MissingRecipeError.
func NewRuntimeManufactory(cb *CookBook, opts ...Option) (*RuntimeManufactory, error) {
	if cb == nil {
		return nil, ErrInvalidCookBook
	}
	o := buildOptions(opts)

	clone := cb.Clone()
	clone.log = o.log
	if err := clone.Err(); err != nil {
		return nil, err
	}
	if err := clone.checkAcyclic(); err != nil {
		return nil, err
	}

	rm := &RuntimeManufactory{
		cb:      clone,
		log:     o.log,
		metrics: o.metrics,
		caches:  map[typeindex.Index]cache{},
	}
	if err := clone.doRequiredGets(rm); err != nil {
		rm.log.Error("eager production failed", zap.Error(err))
		return nil, err
	}
	return rm, nil
}

// Get returns the value for idx, producing it if its cache cannot serve it.
func (rm *RuntimeManufactory) Get(idx typeindex.Index) (any, error) {
	r, c, err := rm.cacheFor(idx)
	if err != nil {
		rm.log.Warn("requested type has no recipe", zap.Stringer("type", idx))
		return nil, err
	}
	v, hit, err := c.get(func() (any, error) { return rm.produce(r) })
	if hit {
		rm.metrics.observeHit(r)
	}
	return v, err
}

func (rm *RuntimeManufactory) cacheFor(idx typeindex.Index) (*recipe, cache, error) {
	r, ok := rm.cb.recipes[idx]
	if !ok {
		return nil, nil, &MissingRecipeError{Type: idx}
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	c, ok := rm.caches[idx]
	if !ok {
		c = newCache(r, rm.log)
		rm.caches[idx] = c
	}
	return r, c, nil
}

func (rm *RuntimeManufactory) produce(r *recipe) (any, error) {
	started := time.Now()
	v, err := r.produce(rm)
	if err != nil {
		var pe *ProductionError
		if errors.As(err, &pe) && pe.Dependency.IsZero() {
			rm.log.Warn("production failed", zap.Stringer("type", r.produces), zap.Error(pe.Cause))
			rm.metrics.observeFailure(r)
		}
		return nil, err
	}
	rm.metrics.observeProduction(r, started)
	rm.log.Debug("produced",
		zap.Stringer("type", r.produces),
		zap.Stringer("lifecycle", r.lifecycle),
		zap.Duration("took", time.Since(started)),
	)
	return v, nil
}

// resolve and provides let recipes pull their dependencies from rm.
func (rm *RuntimeManufactory) resolve(idx typeindex.Index) (any, error) { return rm.Get(idx) }

func (rm *RuntimeManufactory) provides(idx typeindex.Index) bool { return rm.cb.Has(idx) }

// cached reports whether a request for idx would be served without producing.
func (rm *RuntimeManufactory) cached(idx typeindex.Index) bool {
	rm.mu.Lock()
	c, ok := rm.caches[idx]
	rm.mu.Unlock()
	return ok && c.cached()
}

// CookBook returns a copy of the CookBook the manufactory works from.
func (rm *RuntimeManufactory) CookBook() *CookBook { return rm.cb.Clone() }
