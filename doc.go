// Package nasc is a type-driven dependency injection engine: register
// activation strategies against the types they produce, and Locate
// resolves them recursively, compiling and caching an activation
// delegate per requested type the first time it is asked for.
//
// Nasc (Old Irish: "Link" or "Bond") favors explicit error returns over
// panics, lock-free resolution on the hot path, and a scope hierarchy
// where a child can add or shadow its parent's registrations without
// mutating anything the parent sees.
//
// # Quick Start
//
//	root := nasc.NewContainerWithOptions()
//	root.Configure(func(r *nasc.Registrar) {
//	    r.Export((*Logger)(nil), NewConsoleLogger, nasc.WithLifestyle(registry.Singleton))
//	    r.Export((*UserService)(nil), NewUserService)
//	})
//	svc, err := root.Locate((*UserService)(nil))
//
// # Lifestyles
//
// Transient (the default) builds a fresh instance on every Locate.
// Singleton caches on the root scope. PerScope caches on whichever
// scope actually requested it. PerContext caches on the active
// InjectionContext, so two Locate calls sharing a CreateContext see the
// same instance even across scopes.
//
// # Wrappers
//
// Requesting nasc.Collection[T] or nasc.Array[T] resolves every
// registered T. nasc.Lazy[T] defers activation until Value is called.
// nasc.Optional[T] reports whether resolution would have failed instead
// of failing it. nasc.Owned[T] pairs a value with its own disposal
// handle. nasc.Factory0[T] through Factory3[A1, A2, A3, T] return a
// func the caller can invoke later. Factory1 through Factory3 thread
// their arguments into a fresh injection context on each call; Factory0
// resolves within the context of the Locate call that produced it.
//
// # Scopes and Disposal
//
// BeginLifetimeScope and CreateChildScope create children that inherit
// the parent's registrations and may add their own. Dispose releases
// every Disposable instance a scope created itself, LIFO — a child's
// disposal is independent of its parent's. DisposeTree disposes a scope
// and its whole subtree at once, for callers that want that instead.
//
// # Error Handling
//
// Every resolution failure returns a typed error — ExportNotFoundError,
// CircularDependencyError, ResolutionError, MissingConstructorParamError,
// NullInstanceReturnedError, LifestyleViolationError — rather than
// panicking.
package nasc
