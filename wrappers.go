package nasc

import (
	"reflect"
	"sync"

	"github.com/nascore/nasc/registry"
)

// builtinWrapperPriority is the priority every built-in wrapper
// registers at. User wrappers added via Registrar.ExportWrapper default
// to one higher, so a user definition always wins a recognition race
// against a built-in for the same shape.
const builtinWrapperPriority = 0

// Collection[T] resolves every registered export of T, in priority
// order, rather than failing on ambiguity or picking just the best one.
type Collection[T any] []T

// Array[T] is Collection[T] under a different requested name, for hosts
// that distinguish "give me a slice" call sites from "give me the
// collection wrapper" call sites stylistically.
type Array[T any] []T

// Lazy[T] defers activation until Value is first called, then caches
// the result (or error) for the lifetime of the Lazy[T] value itself.
// Compute is filled in by the engine; callers never set it themselves.
type Lazy[T any] struct {
	once    sync.Once
	Compute func() (T, error)
	val     T
	err     error
}

// Value triggers (at most once) the deferred activation and returns its
// result.
func (l *Lazy[T]) Value() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.Compute()
	})
	return l.val, l.err
}

// Optional[T] reports whether T could be resolved instead of failing
// the surrounding Locate call.
type Optional[T any] struct {
	Value T
	Found bool
}

// Owned[T] pairs a resolved value with a disposal handle scoped to it,
// letting a caller release it independent of its parent scope.
// DisposeFunc is filled in by the engine.
type Owned[T any] struct {
	Value       T
	DisposeFunc func() error
}

// Dispose releases the owned instance if it was Disposable; otherwise
// it is a no-op.
func (o Owned[T]) Dispose() error {
	if o.DisposeFunc == nil {
		return nil
	}
	return o.DisposeFunc()
}

// Factory0[T] builds a fresh T (or an error) on demand, with no
// arguments threaded from the injection context.
type Factory0[T any] func() (T, error)

// Factory1[A1, T] builds T from one context-supplied argument.
type Factory1[A1, T any] func(A1) (T, error)

// Factory2[A1, A2, T] builds T from two context-supplied arguments.
type Factory2[A1, A2, T any] func(A1, A2) (T, error)

// Factory3[A1, A2, A3, T] builds T from three context-supplied
// arguments.
type Factory3[A1, A2, A3, T any] func(A1, A2, A3) (T, error)

// registerBuiltinWrappers adds every built-in wrapper to b, called once
// while constructing a root Scope.
func registerBuiltinWrappers(b *registry.Batch) {
	b.AddStrategy(collectionWrapper("Collection"))
	b.AddStrategy(collectionWrapper("Array"))
	b.AddStrategy(lazyWrapper())
	b.AddStrategy(optionalWrapper())
	b.AddStrategy(ownedWrapper())
	b.AddStrategy(factory0Wrapper())
	b.AddStrategy(factoryNWrapper("Factory1", 1))
	b.AddStrategy(factoryNWrapper("Factory2", 2))
	b.AddStrategy(factoryNWrapper("Factory3", 3))
}

func collectionWrapper(baseName string) *registry.Strategy {
	return &registry.Strategy{
		Kind:     registry.KindWrapper,
		Priority: builtinWrapperPriority,
		Recognize: func(requested reflect.Type) (reflect.Type, bool) {
			if requested.Kind() != reflect.Slice {
				return nil, false
			}
			base, ok := registry.GenericBaseName(requested)
			if !ok || base != baseName {
				return nil, false
			}
			return requested.Elem(), true
		},
		Assemble: func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error) {
			values, err := resolveAllInner()
			if err != nil {
				return nil, err
			}
			out := reflect.MakeSlice(requested, len(values), len(values))
			for i, v := range values {
				out.Index(i).Set(reflect.ValueOf(v))
			}
			return out.Interface(), nil
		},
	}
}

func lazyWrapper() *registry.Strategy {
	return &registry.Strategy{
		Kind:     registry.KindWrapper,
		Priority: builtinWrapperPriority,
		Recognize: func(requested reflect.Type) (reflect.Type, bool) {
			t := requested
			if t.Kind() == reflect.Ptr {
				t = t.Elem()
			}
			if t.Kind() != reflect.Struct {
				return nil, false
			}
			base, ok := registry.GenericBaseName(t)
			if !ok || base != "Lazy" {
				return nil, false
			}
			field, ok := t.FieldByName("val")
			if !ok {
				return nil, false
			}
			return field.Type, true
		},
		Assemble: func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error) {
			t := requested
			isPtr := t.Kind() == reflect.Ptr
			if isPtr {
				t = t.Elem()
			}
			computeField, _ := t.FieldByName("Compute")

			compute := reflect.MakeFunc(computeField.Type, func([]reflect.Value) []reflect.Value {
				values, err := resolveAllInner()
				errVal := reflect.New(computeField.Type.Out(1)).Elem()
				elemType := computeField.Type.Out(0)
				if err != nil {
					errVal.Set(reflect.ValueOf(err))
					return []reflect.Value{reflect.Zero(elemType), errVal}
				}
				if len(values) == 0 {
					errVal.Set(reflect.ValueOf(error(&ExportNotFoundError{Type: elemType})))
					return []reflect.Value{reflect.Zero(elemType), errVal}
				}
				return []reflect.Value{reflect.ValueOf(values[0]), errVal}
			})

			lazyPtr := reflect.New(t)
			lazyPtr.Elem().FieldByName("Compute").Set(compute)

			if isPtr {
				return lazyPtr.Interface(), nil
			}
			return lazyPtr.Elem().Interface(), nil
		},
	}
}

func optionalWrapper() *registry.Strategy {
	return &registry.Strategy{
		Kind:     registry.KindWrapper,
		Priority: builtinWrapperPriority,
		Recognize: func(requested reflect.Type) (reflect.Type, bool) {
			if requested.Kind() != reflect.Struct {
				return nil, false
			}
			base, ok := registry.GenericBaseName(requested)
			if !ok || base != "Optional" {
				return nil, false
			}
			field, ok := requested.FieldByName("Value")
			if !ok {
				return nil, false
			}
			return field.Type, true
		},
		Assemble: func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error) {
			values, err := resolveAllInner()
			result := reflect.New(requested).Elem()
			if err != nil || len(values) == 0 {
				result.FieldByName("Found").SetBool(false)
				return result.Interface(), nil
			}
			result.FieldByName("Value").Set(reflect.ValueOf(values[0]))
			result.FieldByName("Found").SetBool(true)
			return result.Interface(), nil
		},
	}
}

func ownedWrapper() *registry.Strategy {
	return &registry.Strategy{
		Kind:     registry.KindWrapper,
		Priority: builtinWrapperPriority,
		Recognize: func(requested reflect.Type) (reflect.Type, bool) {
			if requested.Kind() != reflect.Struct {
				return nil, false
			}
			base, ok := registry.GenericBaseName(requested)
			if !ok || base != "Owned" {
				return nil, false
			}
			field, ok := requested.FieldByName("Value")
			if !ok {
				return nil, false
			}
			return field.Type, true
		},
		Assemble: func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error) {
			values, err := resolveAllInner()
			if err != nil {
				return nil, err
			}
			if len(values) == 0 {
				return nil, &ExportNotFoundError{Type: requested}
			}
			value := values[0]

			result := reflect.New(requested).Elem()
			result.FieldByName("Value").Set(reflect.ValueOf(value))
			disposeFn := func() error {
				if d, ok := value.(Disposable); ok {
					return d.Dispose()
				}
				return nil
			}
			result.FieldByName("DisposeFunc").Set(reflect.ValueOf(disposeFn))
			return result.Interface(), nil
		},
	}
}

func factory0Wrapper() *registry.Strategy {
	return &registry.Strategy{
		Kind:     registry.KindWrapper,
		Priority: builtinWrapperPriority,
		Recognize: func(requested reflect.Type) (reflect.Type, bool) {
			if requested.Kind() != reflect.Func || requested.NumIn() != 0 || requested.NumOut() != 2 {
				return nil, false
			}
			base, ok := registry.GenericBaseName(requested)
			if !ok || base != "Factory0" {
				return nil, false
			}
			return requested.Out(0), true
		},
		Assemble: func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error) {
			fn := reflect.MakeFunc(requested, func([]reflect.Value) []reflect.Value {
				return buildFactoryResult(requested, resolveAllInner, nil)
			})
			return fn.Interface(), nil
		},
	}
}

// factoryNWrapper recognizes func(A1..An) (T, error) shapes. The
// resolveAllInner callback the compiler supplies already threads the
// call's own positional arguments into the context before re-entering
// the resolution engine for T, so Assemble only needs to forward them.
func factoryNWrapper(baseName string, arity int) *registry.Strategy {
	return &registry.Strategy{
		Kind:     registry.KindWrapper,
		Priority: builtinWrapperPriority,
		Recognize: func(requested reflect.Type) (reflect.Type, bool) {
			if requested.Kind() != reflect.Func || requested.NumIn() != arity || requested.NumOut() != 2 {
				return nil, false
			}
			base, ok := registry.GenericBaseName(requested)
			if !ok || base != baseName {
				return nil, false
			}
			return requested.Out(0), true
		},
		Assemble: func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error) {
			fn := reflect.MakeFunc(requested, func(args []reflect.Value) []reflect.Value {
				callArgs := make([]interface{}, len(args))
				for i, a := range args {
					callArgs[i] = a.Interface()
				}
				return buildFactoryResult(requested, resolveAllInner, callArgs)
			})
			return fn.Interface(), nil
		},
	}
}

func buildFactoryResult(fnType reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error), callArgs []interface{}) []reflect.Value {
	values, err := resolveAllInner(callArgs...)
	errVal := reflect.New(fnType.Out(1)).Elem()
	elemType := fnType.Out(0)
	if err != nil {
		errVal.Set(reflect.ValueOf(err))
		return []reflect.Value{reflect.Zero(elemType), errVal}
	}
	if len(values) == 0 {
		errVal.Set(reflect.ValueOf(error(&ExportNotFoundError{Type: elemType})))
		return []reflect.Value{reflect.Zero(elemType), errVal}
	}
	return []reflect.Value{reflect.ValueOf(values[0]), errVal}
}
