package nasc

import (
	"reflect"

	"github.com/nascore/nasc/registry"
)

// compileAutoRegistered builds a best-effort delegate for a concrete,
// unregistered pointer-to-struct type when EngineConfig.AutoRegisterUnknown
// is set — the MissingExportStrategyProvider behavior: allocate a zero
// value and auto-wire its `inject`-tagged fields, rather than failing
// the whole resolution because one leaf type was never explicitly
// exported. Interfaces and non-struct types are never auto-registered;
// there is no way to guess what should back them.
func (s *Scope) compileAutoRegistered(t reflect.Type) (ActivationDelegate, bool) {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, false
	}

	dk := delegateKey{typ: t}
	delegate := func(scope *Scope, ctx *InjectionContext) (interface{}, error) {
		activate := func() (interface{}, error) {
			instance := reflect.New(t.Elem()).Interface()
			if err := scope.AutoWire(instance); err != nil {
				return nil, &ResolutionError{Type: t, Context: "auto-register", Cause: err}
			}
			if err := runInitializable(instance); err != nil {
				return nil, &ResolutionError{Type: t, Context: "Initialize", Cause: err}
			}
			scope.disposal.Add(instance)
			return instance, nil
		}
		return applyLifestyle(registry.Transient, scope, ctx, dk, activate)
	}
	return delegate, true
}
