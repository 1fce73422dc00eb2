// Package registry stores and indexes activation strategies — the
// export, wrapper, and decorator registrations that the resolution
// engine matches requests against. It has no knowledge of scopes,
// contexts, or compiled delegates; it only knows how to file a
// Strategy under the type(s) it exports and hand back ordered,
// filterable collections.
package registry

import (
	"fmt"
	"reflect"
)

// StrategyKind identifies which of the three roles a Strategy plays.
type StrategyKind int

const (
	// KindExport describes how to build one concrete service.
	KindExport StrategyKind = iota
	// KindWrapper adapts a request for a container type into a request
	// for its element type (collections, factories, lazies, ...).
	KindWrapper
	// KindDecorator wraps another activation.
	KindDecorator
)

func (k StrategyKind) String() string {
	switch k {
	case KindExport:
		return "export"
	case KindWrapper:
		return "wrapper"
	case KindDecorator:
		return "decorator"
	default:
		return fmt.Sprintf("StrategyKind(%d)", int(k))
	}
}

// LifestyleKind enumerates the four lifetime semantics the engine
// requires every pluggable lifestyle to ultimately implement.
type LifestyleKind int

const (
	Transient LifestyleKind = iota
	Singleton
	PerScope
	PerContext
)

func (l LifestyleKind) String() string {
	switch l {
	case Transient:
		return "transient"
	case Singleton:
		return "singleton"
	case PerScope:
		return "per-scope"
	case PerContext:
		return "per-context"
	default:
		return fmt.Sprintf("LifestyleKind(%d)", int(l))
	}
}

// DependencySource says where a constructor parameter's value comes
// from at activation time.
type DependencySource int

const (
	// SourceContainer resolves the parameter recursively from the scope.
	SourceContainer DependencySource = iota
	// SourceContextArg takes the parameter from the injection context's
	// positional argument at ContextIndex, falling back to a container
	// resolve when the context has no argument at that index.
	SourceContextArg
)

// Dependency describes one constructor parameter, or one field of a
// synthesized open-generic implementation.
type Dependency struct {
	Name         string
	Type         reflect.Type
	Source       DependencySource
	ContextIndex int // meaningful when Source == SourceContextArg
	Optional     bool
	HasDefault   bool
	Default      interface{}
	Key          interface{}
}

// StaticContext is the compile-time-only information available to a
// Condition — no instances exist yet at the point conditions run.
type StaticContext struct {
	RequestedType reflect.Type
	ParentType    reflect.Type
	Key           interface{}
}

// Condition gates whether a Strategy is eligible for a given static
// context. A nil Condition slice always matches.
type Condition func(*StaticContext) bool

// Resolver is the minimal recursive-resolution surface a Strategy's
// Constructor or Factory needs at activation time. The nasc package
// supplies the implementation; registry itself never imports nasc.
type Resolver interface {
	Resolve(t reflect.Type) (interface{}, error)
	ResolveKeyed(t reflect.Type, key interface{}) (interface{}, error)
	ContextArg(i int) (interface{}, bool)
}

// Strategy is one registration: an export, a wrapper, or a decorator.
// Once added to a Container it is never mutated; superseding a
// registration means adding another Strategy with higher Priority.
type Strategy struct {
	ID   uint64
	Kind StrategyKind

	// Matching.
	ExportedTypes []reflect.Type
	OpenGeneric   *GenericKey
	Priority      int
	Key           interface{}
	Name          string
	Conditions    []Condition

	// Construction.
	Lifestyle          LifestyleKind
	ImplementationType reflect.Type
	Dependencies       []Dependency
	Constructor        interface{} // raw func value, teacher-style
	Instance           interface{}
	Factory            func(Resolver) (interface{}, error)

	// Open-generic family bookkeeping (only set when OpenGeneric != nil).
	Instantiations     map[string]*GenericInstantiation
	GenericConstraints []func(argTypes []reflect.Type) error

	// Decorator-only. Build receives the previously-activated instance
	// directly, as a plain argument — it must never resolve the decorated
	// type itself, since that request is still open on the calling
	// chain and would raise a circular-dependency error.
	DecoratorBuild func(inner interface{}, resolver Resolver) (interface{}, error)

	// Wrapper-only. resolveAllInner returns every registered export for
	// the inner type, in priority order — Collection/Array consume the
	// whole slice, the rest take its first element. callArgs, when
	// non-empty, become the positional injection-context arguments the
	// inner resolution sees — how FactoryN wrappers thread a caller's
	// runtime arguments through to a context-sourced dependency each
	// time the returned func is invoked, possibly long after Assemble
	// itself returned.
	Recognize func(requested reflect.Type) (inner reflect.Type, ok bool)
	Assemble  func(requested reflect.Type, resolveAllInner func(callArgs ...interface{}) ([]interface{}, error)) (interface{}, error)

	insertionOrder uint64
}

// MatchesConditions reports whether every Condition accepts ctx.
func (s *Strategy) MatchesConditions(ctx *StaticContext) bool {
	for _, c := range s.Conditions {
		if !c(ctx) {
			return false
		}
	}
	return true
}
