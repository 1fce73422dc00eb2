package nasc

import (
	"reflect"

	"github.com/nascore/nasc/registry"
)

// Registrar is the handle a Configure block uses to add strategies. It
// wraps one registry.Batch so every call inside the block publishes
// together when Configure returns.
type Registrar struct {
	batch *registry.Batch
	scope *Scope
}

// RegOption modifies a strategy before it is added to the container.
// Compose any number with an Export/ExportFunc/ExportDecorator call.
type RegOption func(*registry.Strategy)

// AsName registers the strategy under a lookup name, for LocateByName.
func AsName(name string) RegOption {
	return func(s *registry.Strategy) { s.Name = name }
}

// WithKey restricts the strategy to keyed lookups for key, instead of
// keyless ones.
func WithKey(key interface{}) RegOption {
	return func(s *registry.Strategy) { s.Key = key }
}

// WithPriority sets the strategy's priority; higher wins among
// otherwise-matching strategies for the same type.
func WithPriority(priority int) RegOption {
	return func(s *registry.Strategy) { s.Priority = priority }
}

// WithCondition adds a static-context predicate the strategy must pass
// to be eligible. Multiple WithCondition calls AND together.
func WithCondition(cond registry.Condition) RegOption {
	return func(s *registry.Strategy) { s.Conditions = append(s.Conditions, cond) }
}

// As adds additional exported types the strategy also satisfies —
// useful when one implementation should be reachable through several
// interfaces.
func As(types ...interface{}) RegOption {
	return func(s *registry.Strategy) {
		for _, t := range types {
			s.ExportedTypes = append(s.ExportedTypes, typeOf(t))
		}
	}
}

// WithLifestyle overrides the default lifestyle, which is
// EngineConfig.DefaultLifestyle (Transient unless configured otherwise).
func WithLifestyle(kind registry.LifestyleKind) RegOption {
	return func(s *registry.Strategy) { s.Lifestyle = kind }
}

// WithDefault supplies a fallback value for constructor parameter
// paramIndex (0-based, in declaration order) to use instead of failing
// the activation when the container has nothing registered for its
// type — Go has no language-level default parameter values, so this
// RegOption is the registration-time stand-in for one.
func WithDefault(paramIndex int, value interface{}) RegOption {
	return func(s *registry.Strategy) {
		if paramIndex < 0 || paramIndex >= len(s.Dependencies) {
			return
		}
		s.Dependencies[paramIndex].HasDefault = true
		s.Dependencies[paramIndex].Default = value
	}
}

// WithOptionalParam marks constructor parameter paramIndex as
// resolvable to its zero value instead of failing the whole activation
// when the container has nothing registered for its type.
func WithOptionalParam(paramIndex int) RegOption {
	return func(s *registry.Strategy) {
		if paramIndex < 0 || paramIndex >= len(s.Dependencies) {
			return
		}
		s.Dependencies[paramIndex].Optional = true
	}
}

// typeOf extracts the reflect.Type a registration call names via the
// teacher's token idiom: pass a nil pointer of the type, e.g.
// (*Logger)(nil), or a pointer to a zero value.
func typeOf(token interface{}) reflect.Type {
	t := reflect.TypeOf(token)
	if t != nil && t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}

// Export registers ctor as the activator for exportedType, with the
// engine's configured default lifestyle unless WithLifestyle overrides it.
//
// Example:
//
//	scope.Configure(func(r *nasc.Registrar) {
//	    r.Export((*Logger)(nil), NewConsoleLogger, nasc.WithLifestyle(registry.Singleton))
//	})
func (r *Registrar) Export(exportedType interface{}, ctor ConstructorFunc, opts ...RegOption) error {
	info, err := parseConstructor(ctor)
	if err != nil {
		return &InvalidRegistrationError{Reason: err.Error()}
	}

	s := &registry.Strategy{
		Kind:          registry.KindExport,
		ExportedTypes: []reflect.Type{typeOf(exportedType)},
		Lifestyle:     r.scope.root.config.DefaultLifestyle,
		Dependencies:  dependenciesOf(info),
		Constructor:   ctor,
	}
	s.Factory = func(resolver registry.Resolver) (interface{}, error) {
		return invokeConstructor(info, s.Dependencies, resolver)
	}
	for _, opt := range opts {
		opt(s)
	}
	r.batch.AddStrategy(s)
	return nil
}

// ExportInstance registers a pre-built instance, always resolved as-is
// regardless of lifestyle (an instance has no construction to cache).
func (r *Registrar) ExportInstance(exportedType interface{}, instance interface{}, opts ...RegOption) error {
	if instance == nil {
		return &InvalidRegistrationError{Reason: "instance cannot be nil"}
	}
	s := &registry.Strategy{
		Kind:          registry.KindExport,
		ExportedTypes: []reflect.Type{typeOf(exportedType)},
		Lifestyle:     registry.Singleton,
		Instance:      instance,
		Factory: func(registry.Resolver) (interface{}, error) {
			return instance, nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	r.batch.AddStrategy(s)
	return nil
}

// ExportFunc registers factory directly, bypassing constructor
// reflection — for activations that need resolver access beyond simple
// positional dependencies (reading context args, branching on a key).
func (r *Registrar) ExportFunc(exportedType interface{}, factory func(registry.Resolver) (interface{}, error), opts ...RegOption) error {
	if factory == nil {
		return &InvalidRegistrationError{Reason: "factory cannot be nil"}
	}
	s := &registry.Strategy{
		Kind:          registry.KindExport,
		ExportedTypes: []reflect.Type{typeOf(exportedType)},
		Lifestyle:     r.scope.root.config.DefaultLifestyle,
		Factory:       factory,
	}
	for _, opt := range opts {
		opt(s)
	}
	r.batch.AddStrategy(s)
	return nil
}

// ExportDecorator registers a decorator for decoratedType: build runs
// right after the undecorated instance is produced, receiving it plus
// the resolver, and returns the replacement the caller actually sees.
// Decoration happens inside the lifestyle's activation, so for Singleton
// it is the decorated result that gets cached. When several decorators target the same
// type, they wrap in descending-priority order — the highest-priority
// decorator runs first and ends up closest to the undecorated instance,
// the lowest-priority one runs last and ends up outermost, the one the
// caller actually receives.
func (r *Registrar) ExportDecorator(decoratedType interface{}, build func(inner interface{}, resolver registry.Resolver) (interface{}, error), opts ...RegOption) error {
	if build == nil {
		return &InvalidRegistrationError{Reason: "decorator build function cannot be nil"}
	}
	t := typeOf(decoratedType)
	s := &registry.Strategy{
		Kind:           registry.KindDecorator,
		ExportedTypes:  []reflect.Type{t},
		DecoratorBuild: build,
	}
	for _, opt := range opts {
		opt(s)
	}
	r.batch.AddStrategy(s)
	return nil
}

// ExportWrapper registers a user-defined wrapper strategy: recognize
// decides whether requested is a shape this wrapper handles (returning
// the inner type to resolve), and assemble builds the final value from
// a thunk that resolves the inner type. User-registered wrappers take
// precedence over the built-ins in wrappers.go.
func (r *Registrar) ExportWrapper(recognize func(requested reflect.Type) (inner reflect.Type, ok bool), assemble func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error), opts ...RegOption) error {
	if recognize == nil || assemble == nil {
		return &InvalidRegistrationError{Reason: "wrapper recognize and assemble functions are both required"}
	}
	s := &registry.Strategy{
		Kind:      registry.KindWrapper,
		Priority:  builtinWrapperPriority + 1,
		Recognize: recognize,
		Assemble:  assemble,
	}
	for _, opt := range opts {
		opt(s)
	}
	r.batch.AddStrategy(s)
	return nil
}
