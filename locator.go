package nasc

import (
	"github.com/nascore/nasc/registry"
)

// LocateOption narrows a Locate or CanLocate call beyond the plain type
// match. Supplying a key, a filter, or Dynamic makes Locate bypass the
// compiled-delegate cache, since the result of a narrowed request may
// differ from whatever a bare, unnarrowed lookup already cached.
type LocateOption func(*locateParams)

type locateParams struct {
	key     interface{}
	filter  func(*registry.Strategy) bool
	dynamic bool
}

func (p *locateParams) bypassesCache() bool {
	return p.key != nil || p.filter != nil || p.dynamic
}

// WithLocateKey restricts the call to the strategy registered under key,
// equivalent to calling LocateKeyed directly.
func WithLocateKey(key interface{}) LocateOption {
	return func(p *locateParams) { p.key = key }
}

// WithLocateFilter restricts the call to strategies filter accepts, in
// addition to the type (and key) match — evaluated fresh on every call
// instead of through a cached delegate.
func WithLocateFilter(filter func(*registry.Strategy) bool) LocateOption {
	return func(p *locateParams) { p.filter = filter }
}

// Dynamic forces Locate to bypass the compiled-delegate cache even when
// no key or filter narrows the request, for registrations that change
// faster than the cache's no-eviction lifetime assumes.
func Dynamic() LocateOption {
	return func(p *locateParams) { p.dynamic = true }
}

// Locate resolves an instance of the type named by token — pass a nil
// pointer of the type, e.g. (*Logger)(nil) — against a fresh injection
// context, returning an error rather than panicking on failure. With no
// opts this is the cached fast path; WithLocateKey, WithLocateFilter, or
// Dynamic route the call through uncached strategy selection instead.
//
// Example:
//
//	logger, err := scope.Locate((*Logger)(nil))
func (s *Scope) Locate(token interface{}, opts ...LocateOption) (interface{}, error) {
	t := typeOf(token)
	if len(opts) == 0 {
		return s.resolve(t, nil, newInjectionContext())
	}
	p := &locateParams{}
	for _, o := range opts {
		o(p)
	}
	if !p.bypassesCache() {
		return s.resolve(t, nil, newInjectionContext())
	}
	return s.resolveFiltered(t, p.key, p.filter, newInjectionContext())
}

// TryLocate is Locate but reports a missing export as (nil, false)
// instead of an error; any other resolution failure still returns it.
func (s *Scope) TryLocate(token interface{}, opts ...LocateOption) (interface{}, bool, error) {
	instance, err := s.Locate(token, opts...)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return instance, true, nil
}

// LocateKeyed resolves the export of token registered under key,
// instead of the keyless default.
func (s *Scope) LocateKeyed(token interface{}, key interface{}) (interface{}, error) {
	return s.resolve(typeOf(token), key, newInjectionContext())
}

// LocateByName resolves the strategy registered under name (see
// AsName), searching this scope's ancestry nearest-first.
func (s *Scope) LocateByName(name string) (interface{}, error) {
	strategy, ok := s.strategyByName(name)
	if !ok {
		return nil, &ExportNotFoundError{Name: name}
	}
	ctx := newInjectionContext()
	delegate := s.compileExport(strategy, s.collectDecorators(s.containerChain(), firstExportedType(strategy)))
	return delegate(s, ctx)
}

// TryLocateByName is LocateByName but reports a missing name as
// (nil, false) instead of an error.
func (s *Scope) TryLocateByName(name string) (interface{}, bool, error) {
	if _, ok := s.strategyByName(name); !ok {
		return nil, false, nil
	}
	instance, err := s.LocateByName(name)
	if err != nil {
		return nil, false, err
	}
	return instance, true, nil
}

func (s *Scope) strategyByName(name string) (*registry.Strategy, bool) {
	for _, c := range s.containerChain() {
		if st, ok := c.ByName(name); ok {
			return st, true
		}
	}
	return nil, false
}

// LocateAll resolves every export registered for token, in priority
// order, across this scope's ancestry — the same set a Collection[T]
// request would produce, without the wrapper's type-parameter ceremony.
func (s *Scope) LocateAll(token interface{}) ([]interface{}, error) {
	return s.resolveAll(typeOf(token), newInjectionContext())
}

// CanLocate reports whether token would currently resolve: a wrapper
// match, a registered export, or a known open-generic instantiation.
// Conditions are ignored, since a static check has no StaticContext to
// evaluate them against — a condition-gated export still counts, even
// one whose condition happens to fail right now. Unlike Locate, nothing
// is compiled, cached, or activated. opts narrow the check the same way
// they narrow Locate; Dynamic has no effect here, since CanLocate never
// touches the delegate cache regardless.
func (s *Scope) CanLocate(token interface{}, opts ...LocateOption) bool {
	t := typeOf(token)
	p := &locateParams{}
	for _, o := range opts {
		o(p)
	}

	chain := s.containerChain()
	if _, ok := s.compileWrapper(chain, t); ok {
		return true
	}
	for _, c := range chain {
		col, ok := c.GetCollection(t)
		if !ok {
			continue
		}
		exists := col.Best(p.key, func(st *registry.Strategy) bool {
			if st.Kind != registry.KindExport {
				return false
			}
			return p.filter == nil || p.filter(st)
		})
		if exists != nil {
			return true
		}
	}
	return false
}

// CreateContext returns a fresh InjectionContext seeded with args,
// letting a caller share one context (and therefore one set of
// PerContext instances) across several Locate-style calls that would
// otherwise each get their own.
func (s *Scope) CreateContext(args ...interface{}) *InjectionContext {
	return newInjectionContext(args...)
}

// LocateInContext resolves token within ctx instead of a fresh context,
// so PerContext lifestyles and FactoryN-supplied arguments carry over.
func (s *Scope) LocateInContext(token interface{}, ctx *InjectionContext) (interface{}, error) {
	return s.resolve(typeOf(token), nil, ctx)
}

// BeginLifetimeScope creates a child scope named name whose own
// PerScope cache and disposal list are independent of the parent's,
// but which still sees every export the parent (and its ancestors)
// registered. configure, if non-nil, runs against the new scope before
// it is returned, registering strategies visible only to it and its
// descendants.
func (s *Scope) BeginLifetimeScope(name string, configure func(*Registrar)) *Scope {
	child := &Scope{
		name:       name,
		parent:     s,
		root:       s.root,
		perScope:   newLifestyleCache(),
		disposal:   newDisposalScope(),
	}
	s.addChild(child)
	if configure != nil {
		child.Configure(configure)
	}
	return child
}

// CreateChildScope is BeginLifetimeScope without a name or inline
// configuration, for callers that configure the child afterward with
// Configure.
func (s *Scope) CreateChildScope() *Scope {
	return s.BeginLifetimeScope("", nil)
}
