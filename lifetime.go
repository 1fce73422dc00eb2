package nasc

import (
	"reflect"
	"sync"

	"github.com/nascore/nasc/registry"
)

// lifestyleCache backs Singleton (held by the root scope) and PerScope
// (held by each scope) caching: a factory is guaranteed to run exactly
// once per key even under concurrent first-access, using the same
// map-of-sync.Once pattern regardless of which lifestyle owns it.
type lifestyleCache struct {
	mu        sync.RWMutex
	instances map[delegateKey]*cachedInstance
}

type cachedInstance struct {
	value interface{}
	err   error
	once  sync.Once
}

func newLifestyleCache() *lifestyleCache {
	return &lifestyleCache{instances: make(map[delegateKey]*cachedInstance)}
}

func (c *lifestyleCache) getOrCreate(k delegateKey, factory func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	entry, ok := c.instances[k]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		entry, ok = c.instances[k]
		if !ok {
			entry = &cachedInstance{}
			c.instances[k] = entry
		}
		c.mu.Unlock()
	}

	entry.once.Do(func() {
		entry.value, entry.err = factory()
	})
	return entry.value, entry.err
}

// applyLifestyle wraps factory according to kind, returning a function
// whose repeated calls honor Transient/Singleton/PerScope/PerContext
// semantics for the given strategy and requesting scope.
//
//   - Transient always re-invokes factory.
//   - Singleton caches on the root scope, shared by every descendant.
//   - PerScope caches on requestScope itself, so a child scope gets its
//     own instance even though the strategy is visible from the parent's
//     registration.
//   - PerContext caches on the active InjectionContext, so every
//     activation triggered by one top-level Locate call shares an
//     instance, but the next Locate call starts fresh.
func applyLifestyle(kind registry.LifestyleKind, requestScope *Scope, ctx *InjectionContext, k delegateKey, factory func() (interface{}, error)) (interface{}, error) {
	switch kind {
	case registry.Transient:
		return factory()
	case registry.Singleton:
		root := requestScope.rootScope()
		return root.singletons.getOrCreate(k, factory)
	case registry.PerScope:
		return requestScope.perScope.getOrCreate(k, factory)
	case registry.PerContext:
		if v, ok := ctx.perContextValue(k); ok {
			return v, nil
		}
		v, err := factory()
		if err != nil {
			return nil, err
		}
		ctx.setPerContextValue(k, v)
		return v, nil
	default:
		return nil, &ResolutionError{Type: reflectTypeOrNil(k), Context: "unknown lifestyle"}
	}
}

func reflectTypeOrNil(k delegateKey) reflect.Type {
	return k.typ
}
