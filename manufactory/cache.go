package manufactory

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// cache decides whether a recipe's previous result may be reused.
// produce is only invoked on a miss.
type cache interface {
	get(produce func() (any, error)) (v any, hit bool, err error)
	cached() bool
}

func newCache(r *recipe, log *zap.Logger) cache {
	switch {
	case r.lifecycle == LifecycleInstance:
		return instanceCache{value: r.value}
	case r.lifecycle.strong():
		return &sharedCache{}
	case r.lifecycle == LifecycleUnloadable:
		return &weakCache{log: log.With(zap.Stringer("type", r.produces))}
	default:
		return uniqueCache{}
	}
}

// uniqueCache never caches.
type uniqueCache struct{}

func (uniqueCache) get(produce func() (any, error)) (any, bool, error) {
	v, err := produce()
	return v, false, err
}

func (uniqueCache) cached() bool { return false }

// sharedCache keeps the first produced value for the manufactory's lifetime.
// A failed production is not remembered; the next get tries again.
type sharedCache struct {
	mu    sync.Mutex
	value any
	ok    bool
}

func (c *sharedCache) get(produce func() (any, error)) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ok {
		return c.value, true, nil
	}
	v, err := produce()
	if err != nil {
		return nil, false, err
	}
	c.value, c.ok = v, true
	return v, false, nil
}

func (c *sharedCache) cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ok
}

// weakCache reuses its value only while something else still references it.
type weakCache struct {
	mu  sync.Mutex
	ref *weakRef

	// values that cannot be weakly referenced are retained instead
	retained any
	log      *zap.Logger
	warned   bool
}

func (c *weakCache) get(produce func() (any, error)) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retained != nil {
		return c.retained, true, nil
	}
	if c.ref != nil {
		if v := c.ref.value(); v != nil {
			return v, true, nil
		}
		c.ref = nil
	}

	v, err := produce()
	if err != nil {
		return nil, false, err
	}
	ref, ok := makeWeakRef(v)
	if !ok {
		if !c.warned {
			c.log.Warn("unloadable value cannot be weakly referenced; retaining it for the manufactory lifetime",
				zap.String("go_type", fmt.Sprintf("%T", v)))
			c.warned = true
		}
		c.retained = v
		return v, false, nil
	}
	c.ref = ref
	return v, false, nil
}

func (c *weakCache) cached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retained != nil || (c.ref != nil && c.ref.value() != nil)
}

// instanceCache always returns the pre-built value.
type instanceCache struct{ value any }

func (c instanceCache) get(func() (any, error)) (any, bool, error) { return c.value, true, nil }

func (instanceCache) cached() bool { return true }
