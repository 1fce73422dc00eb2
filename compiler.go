package nasc

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/nascore/nasc/registry"
)

// boundResolver binds one Scope+InjectionContext pair so a Strategy's
// Factory or a wrapper's resolveAllInner can recurse back into the
// engine without either of them needing to know about compilation,
// caching, or cycle detection — they just call Resolve.
type boundResolver struct {
	scope *Scope
	ctx   *InjectionContext
}

func (b *boundResolver) Resolve(t reflect.Type) (interface{}, error) {
	return b.scope.resolve(t, nil, b.ctx)
}

func (b *boundResolver) ResolveKeyed(t reflect.Type, key interface{}) (interface{}, error) {
	return b.scope.resolve(t, key, b.ctx)
}

func (b *boundResolver) ContextArg(i int) (interface{}, bool) {
	return b.ctx.Arg(i)
}

// resolve is the engine's single entry point for producing a value of
// t (optionally keyed) within ctx, requested against s. It is re-entered
// recursively for every constructor dependency, decorator inner
// activation, and wrapper inner activation. Every internal recursive
// call goes through here with no filter, sharing the cached delegate;
// only a top-level Locate call supplying a key, a filter, or Dynamic
// takes resolveFiltered's uncached path instead.
func (s *Scope) resolve(t reflect.Type, key interface{}, ctx *InjectionContext) (interface{}, error) {
	return s.resolveChecked(t, key, ctx, func() (ActivationDelegate, error) {
		return s.findOrCompileDelegate(t, key)
	})
}

// resolveFiltered compiles and invokes a delegate for (t, key) filtered
// by filter, bypassing the shared delegate cache entirely — the engine
// never caches a result that depended on a caller-supplied predicate,
// since the same (t, key) might compile differently under a different
// filter on the very next call.
func (s *Scope) resolveFiltered(t reflect.Type, key interface{}, filter func(*registry.Strategy) bool, ctx *InjectionContext) (interface{}, error) {
	return s.resolveChecked(t, key, ctx, func() (ActivationDelegate, error) {
		return s.compile(t, key, filter)
	})
}

// resolveChecked runs the disposal check and cycle detection shared by
// every resolution path, then defers strategy selection to compileFn.
func (s *Scope) resolveChecked(t reflect.Type, key interface{}, ctx *InjectionContext, compileFn func() (ActivationDelegate, error)) (interface{}, error) {
	if s.disposal.IsDisposed() {
		return nil, &ScopeDisposedError{ScopeName: s.name}
	}

	rk := requestKey{typeName: t.String(), key: key}
	path, ok := ctx.pushChain(rk)
	if !ok {
		names := make([]string, 0, len(path)+1)
		for _, p := range path {
			names = append(names, p.typeName)
		}
		names = append(names, rk.typeName)
		return nil, &CircularDependencyError{Path: names}
	}
	defer ctx.popChain()

	delegate, err := compileFn()
	if err != nil {
		return nil, err
	}
	return delegate(s, ctx)
}

// findOrCompileDelegate returns the cached compiled delegate for
// (t, key), compiling and publishing it on first request. A scope with
// no local overrides anywhere in its ancestry shares the root's
// lock-free cache; a scope with a local container of its own (from a
// configured lifetime scope) memoizes independently, since the same
// (t, key) can compile differently depending on what that scope added.
func (s *Scope) findOrCompileDelegate(t reflect.Type, key interface{}) (ActivationDelegate, error) {
	dk := delegateKey{typ: t, key: key}

	if !s.hasScopeLocalOverrides() {
		if d, ok := s.root.cache.Get(dk); ok {
			return d, nil
		}
		d, err := s.compile(t, key, nil)
		if err != nil {
			return nil, err
		}
		s.root.logger.Debug("nasc: delegate compiled and cached", zap.Stringer("type", t))
		return s.root.cache.Put(dk, d), nil
	}

	s.localCacheMu.Lock()
	d, ok := s.localCache[dk]
	s.localCacheMu.Unlock()
	if ok {
		return d, nil
	}

	d, err := s.compile(t, key, nil)
	if err != nil {
		return nil, err
	}

	s.localCacheMu.Lock()
	defer s.localCacheMu.Unlock()
	if existing, ok := s.localCache[dk]; ok {
		return existing, nil
	}
	if s.localCache == nil {
		s.localCache = make(map[delegateKey]ActivationDelegate)
	}
	s.localCache[dk] = d
	return d, nil
}

// compile runs strategy selection once for (t, key) against every
// container in s's ancestry, nearest first: an export match (plus any
// decorators registered anywhere in the chain), a wrapper match, or
// finally the auto-register-unknown fallback. filter, when non-nil,
// narrows export matching beyond key and conditions — the engine never
// caches a delegate compiled under a filter, since a different filter
// on the next call could select a different strategy.
func (s *Scope) compile(t reflect.Type, key interface{}, filter func(*registry.Strategy) bool) (ActivationDelegate, error) {
	chain := s.containerChain()

	for _, c := range chain {
		col, ok := c.GetCollection(t)
		if !ok {
			continue
		}
		staticCtx := &registry.StaticContext{RequestedType: t, Key: key}
		best := col.Best(key, func(st *registry.Strategy) bool {
			if st.Kind != registry.KindExport || !st.MatchesConditions(staticCtx) {
				return false
			}
			return filter == nil || filter(st)
		})
		if best == nil {
			continue
		}
		if violation := checkLifestyleCaptivity(chain, best); violation != nil {
			return nil, violation
		}
		decorators := s.collectDecorators(chain, t)
		if len(decorators) > 0 {
			s.root.logger.Debug("nasc: decorators applied",
				zap.Stringer("type", t), zap.Int("count", len(decorators)))
		}
		return s.compileExport(best, decorators), nil
	}

	if d, ok := s.compileWrapper(chain, t); ok {
		return d, nil
	}

	if s.root.config.AutoRegisterUnknown {
		if d, ok := s.compileAutoRegistered(t); ok {
			return d, nil
		}
	}

	if diag := diagnoseGenericFamily(chain, t); diag != nil {
		s.root.logger.Warn("nasc: requested generic instantiation not registered", zap.Stringer("type", t))
		return nil, diag
	}

	s.root.logger.Warn("nasc: no export found", zap.Stringer("type", t))
	return nil, &ExportNotFoundError{Type: t, Key: key}
}

// collectDecorators gathers every decorator registered for t anywhere
// in chain, highest priority first — a child scope can decorate a type
// its parent exports without re-exporting it.
func (s *Scope) collectDecorators(chain []*registry.Container, t reflect.Type) []*registry.Strategy {
	staticCtx := &registry.StaticContext{RequestedType: t}
	var decorators []*registry.Strategy
	for _, c := range chain {
		col, ok := c.GetCollection(t)
		if !ok {
			continue
		}
		decorators = append(decorators, col.Filtered(nil, func(st *registry.Strategy) bool {
			return st.Kind == registry.KindDecorator && st.MatchesConditions(staticCtx)
		})...)
	}
	sortStrategiesByPriority(decorators)
	return decorators
}

// compileExport builds a delegate that invokes strategy's Factory, then
// applies decorators in descending-priority order, each wrapping the
// previous result — the highest-priority decorator ends up closest to
// the base instance, the lowest-priority one outermost, matching "wrap
// the innermost expression repeatedly" for a priority-sorted list. It
// then runs Initialize, records the result for disposal, and honors the
// strategy's lifestyle.
func (s *Scope) compileExport(strategy *registry.Strategy, decorators []*registry.Strategy) ActivationDelegate {
	dk := delegateKey{typ: firstExportedType(strategy), key: strategy.Key}
	// lk keys the lifestyle caches by strategy identity, so two strategies
	// exporting the same (type, key) — a child scope's shadowing export, or
	// several named exports — never share one cached instance.
	lk := delegateKey{typ: dk.typ, key: strategy}

	return func(scope *Scope, ctx *InjectionContext) (interface{}, error) {
		activate := func() (interface{}, error) {
			resolver := &boundResolver{scope: scope, ctx: ctx}
			instance, err := strategy.Factory(resolver)
			if err != nil {
				return nil, &ResolutionError{Type: dk.typ, Key: dk.key, Cause: err}
			}
			if isNilInstance(instance) {
				return nil, &NullInstanceReturnedError{Type: dk.typ}
			}
			for _, dec := range decorators {
				instance, err = dec.DecoratorBuild(instance, &boundResolver{scope: scope, ctx: ctx})
				if err != nil {
					return nil, &ResolutionError{Type: dk.typ, Key: dk.key, Context: "decorator", Cause: err}
				}
				if isNilInstance(instance) {
					return nil, &NullInstanceReturnedError{Type: dk.typ}
				}
			}
			if err := runInitializable(instance); err != nil {
				return nil, &ResolutionError{Type: dk.typ, Key: dk.key, Context: "Initialize", Cause: err}
			}
			scope.disposal.Add(instance)
			return instance, nil
		}
		return applyLifestyle(strategy.Lifestyle, scope, ctx, lk, activate)
	}
}

func firstExportedType(s *registry.Strategy) reflect.Type {
	if len(s.ExportedTypes) == 0 {
		return nil
	}
	return s.ExportedTypes[0]
}

// compileWrapper tries every registered wrapper strategy across chain
// (user-defined ones sort first by priority) against t, returning a
// delegate for the first one that recognizes it.
func (s *Scope) compileWrapper(chain []*registry.Container, t reflect.Type) (ActivationDelegate, bool) {
	var wrappers []*registry.Strategy
	for _, c := range chain {
		for _, st := range c.AllStrategies() {
			if st.Kind == registry.KindWrapper {
				wrappers = append(wrappers, st)
			}
		}
	}
	sortStrategiesByPriority(wrappers)

	for _, w := range wrappers {
		inner, ok := w.Recognize(t)
		if !ok {
			continue
		}
		strategy := w
		s.root.logger.Debug("nasc: wrapper matched", zap.Stringer("type", t), zap.Stringer("inner", inner))
		return func(scope *Scope, ctx *InjectionContext) (interface{}, error) {
			resolveAllInner := func(callArgs ...interface{}) ([]interface{}, error) {
				innerCtx := ctx
				if len(callArgs) > 0 {
					innerCtx = newInjectionContext(callArgs...)
				}
				return scope.resolveAll(inner, innerCtx)
			}
			return strategy.Assemble(t, resolveAllInner)
		}, true
	}
	return nil, false
}

// resolveAll returns every export registered for t across s's ancestry,
// in priority order — the backbone of Collection[T]/Array[T], and of
// every other wrapper's "take the first" convention.
func (s *Scope) resolveAll(t reflect.Type, ctx *InjectionContext) ([]interface{}, error) {
	chain := s.containerChain()
	staticCtx := &registry.StaticContext{RequestedType: t}

	var exports []*registry.Strategy
	for _, c := range chain {
		col, ok := c.GetCollection(t)
		if !ok {
			continue
		}
		exports = append(exports, col.Filtered(nil, func(st *registry.Strategy) bool {
			return st.Kind == registry.KindExport && st.MatchesConditions(staticCtx)
		})...)
	}
	sortStrategiesByPriority(exports)

	decorators := s.collectDecorators(chain, t)
	values := make([]interface{}, 0, len(exports))
	for _, exp := range exports {
		d := s.compileExport(exp, decorators)
		v, err := d(s, ctx)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func sortStrategiesByPriority(strategies []*registry.Strategy) {
	for i := 1; i < len(strategies); i++ {
		for j := i; j > 0 && strategies[j].Priority > strategies[j-1].Priority; j-- {
			strategies[j], strategies[j-1] = strategies[j-1], strategies[j]
		}
	}
}

// isNilInstance reports whether v is a nil interface or a typed nil
// behind one — a plain `v == nil` misses the latter, since a nil *T
// boxed into an interface{} compares unequal to nil.
func isNilInstance(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// narrowerLifestyleName names the lifestyles a Singleton may not depend
// on directly: caching a per-scope or per-context instance inside a
// singleton would pin it past the scope, or context, meant to own it.
func narrowerLifestyleName(k registry.LifestyleKind) (string, bool) {
	switch k {
	case registry.PerScope:
		return "per-scope", true
	case registry.PerContext:
		return "per-context", true
	default:
		return "", false
	}
}

// checkLifestyleCaptivity reports a LifestyleViolationError when
// strategy is Singleton but one of its declared constructor dependencies
// resolves, anywhere in chain, to a PerScope or PerContext export.
func checkLifestyleCaptivity(chain []*registry.Container, strategy *registry.Strategy) error {
	if strategy.Lifestyle != registry.Singleton {
		return nil
	}
	for _, dep := range strategy.Dependencies {
		if dep.Source != registry.SourceContainer || dep.Type == nil {
			continue
		}
		for _, c := range chain {
			col, ok := c.GetCollection(dep.Type)
			if !ok {
				continue
			}
			depStrategy := col.Best(dep.Key, func(st *registry.Strategy) bool {
				return st.Kind == registry.KindExport
			})
			if depStrategy == nil {
				continue
			}
			if name, narrow := narrowerLifestyleName(depStrategy.Lifestyle); narrow {
				return &LifestyleViolationError{
					Type:           firstExportedType(strategy),
					Lifestyle:      registry.Singleton.String(),
					DependencyType: dep.Type,
					DependencyKind: name,
				}
			}
			break
		}
	}
	return nil
}
