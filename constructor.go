package nasc

import (
	"fmt"
	"reflect"

	"github.com/nascore/nasc/registry"
)

// ConstructorFunc is any function usable as an export's activator.
// Supported shapes:
//
//	func() *T
//	func() (*T, error)
//	func(Dep1, Dep2, ...) *T
//	func(Dep1, Dep2, ...) (*T, error)
//
// Parameters may be interfaces or concrete types; each is resolved from
// the requesting scope, recursively, before the constructor runs.
type ConstructorFunc interface{}

type constructorInfo struct {
	fn           reflect.Value
	paramTypes   []reflect.Type
	returnsError bool
	returnType   reflect.Type
}

func parseConstructor(constructor ConstructorFunc) (*constructorInfo, error) {
	if constructor == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(constructor)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %v", fnType.Kind())
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, fmt.Errorf("constructor must return (T) or (T, error), got %d return values", numOut)
	}

	returnType := fnType.Out(0)

	returnsError := false
	if numOut == 2 {
		errorInterface := reflect.TypeOf((*error)(nil)).Elem()
		if !fnType.Out(1).Implements(errorInterface) {
			return nil, fmt.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	numParams := fnType.NumIn()
	paramTypes := make([]reflect.Type, numParams)
	for i := 0; i < numParams; i++ {
		paramTypes[i] = fnType.In(i)
	}

	return &constructorInfo{
		fn:           fnValue,
		paramTypes:   paramTypes,
		returnsError: returnsError,
		returnType:   returnType,
	}, nil
}

// dependenciesOf converts a parsed constructor's parameter list into
// registry.Dependency entries, all sourced from the container — the
// shape a plain Export uses.
func dependenciesOf(info *constructorInfo) []registry.Dependency {
	deps := make([]registry.Dependency, len(info.paramTypes))
	for i, t := range info.paramTypes {
		deps[i] = registry.Dependency{
			Name:   fmt.Sprintf("arg%d", i),
			Type:   t,
			Source: registry.SourceContainer,
		}
	}
	return deps
}

// invokeConstructor resolves every dependency from resolver, then calls
// the constructor. deps carries the same parameters as
// info.paramTypes, in order, plus any WithDefault/WithOptionalParam
// markings a registration call added after the strategy was built — a
// parameter with no entry in deps falls back to a plain positional
// resolve. Any resolution or
// invocation failure is returned, never panicked.
func invokeConstructor(info *constructorInfo, deps []registry.Dependency, resolver registry.Resolver) (interface{}, error) {
	params := make([]reflect.Value, len(info.paramTypes))
	for i, paramType := range info.paramTypes {
		var dep registry.Dependency
		if i < len(deps) {
			dep = deps[i]
		} else {
			dep = registry.Dependency{Type: paramType, Name: fmt.Sprintf("arg%d", i)}
		}

		resolved, err := resolveDependency(dep, paramType, resolver)
		if err != nil {
			return nil, &MissingConstructorParamError{Type: paramType, Param: dep.Name, Cause: err}
		}
		params[i] = reflect.ValueOf(resolved)
	}

	results := info.fn.Call(params)
	instance := results[0].Interface()

	if info.returnsError {
		errValue := results[len(results)-1]
		if !errValue.IsNil() {
			return nil, fmt.Errorf("constructor returned error: %w", errValue.Interface().(error))
		}
	}

	return instance, nil
}

// resolveDependency resolves one constructor parameter, falling back to
// dep's default or zero value instead of failing when the container has
// nothing for paramType and dep allows it — the activation-time
// equivalent of spec step 3d's "synthesise a constant delegate returning
// the default", adapted to this engine's lazy recursive-call compiler
// instead of a separate compiled constant node.
func resolveDependency(dep registry.Dependency, paramType reflect.Type, resolver registry.Resolver) (interface{}, error) {
	if dep.Source == registry.SourceContextArg {
		if v, ok := resolver.ContextArg(dep.ContextIndex); ok {
			return v, nil
		}
	}
	var resolved interface{}
	var err error
	if dep.Key != nil {
		resolved, err = resolver.ResolveKeyed(paramType, dep.Key)
	} else {
		resolved, err = resolver.Resolve(paramType)
	}
	if err == nil {
		return resolved, nil
	}
	if dep.HasDefault {
		return dep.Default, nil
	}
	if dep.Optional {
		return reflect.Zero(paramType).Interface(), nil
	}
	return nil, err
}
