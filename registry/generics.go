package registry

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// GenericKey identifies an open-generic type definition — a name and
// arity, independent of any particular instantiation. It is the Go
// analogue of a CLR open-generic TypeDefinition.
type GenericKey struct {
	PkgPath string
	Name    string
	Arity   int
}

func (k GenericKey) String() string {
	return fmt.Sprintf("%s.%s`%d", k.PkgPath, k.Name, k.Arity)
}

func (k GenericKey) instKey(argTypes []reflect.Type) string {
	names := make([]string, len(argTypes))
	for i, t := range argTypes {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}

// GenericInstantiation records one concrete binding of an open-generic
// family to a real reflect.Type the caller has already referenced in
// compiled code.
//
// Go's reflect package gives no way to synthesize
// `reflect.TypeOf` for a generic instantiation that was never compiled
// in — type parameters are monomorphized at build time, not at
// runtime. So "open generic" support here means: the family groups
// instantiations the caller explicitly registered (each a real,
// already-compiled closed type), and the engine's job is unification
// and constraint-checking across that family, plus friendly diagnostics
// when a requested instantiation was never registered. See
// SPEC_FULL.md's ADAPTATION NOTES #3.
type GenericInstantiation struct {
	ArgTypes           []reflect.Type
	ImplementationType reflect.Type
	Dependencies       []Dependency
	Constructor        interface{}
}

// typeNameRegistry recovers the identity of type arguments baked into
// an instantiated generic type's String() form, since reflect.Type
// exposes no accessor for a generic type's own arguments.
type typeNameRegistry struct {
	mu    sync.RWMutex
	byStr map[string]reflect.Type
}

func newTypeNameRegistry() *typeNameRegistry {
	return &typeNameRegistry{byStr: make(map[string]reflect.Type)}
}

// Register records t so that later requests whose generic-argument
// list names t by its String() or Name() form can be resolved back to
// a reflect.Type.
func (r *typeNameRegistry) Register(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byStr[t.String()] = t
	if name := t.Name(); name != "" {
		r.byStr[name] = t
	}
}

func (r *typeNameRegistry) Resolve(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byStr[name]
	return t, ok
}

// GenericBaseName strips the bracketed type-argument suffix from an
// instantiated generic type's name, e.g. "Repo[int]" -> "Repo".
// Returns false for non-generic types.
func GenericBaseName(t reflect.Type) (string, bool) {
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i < 0 {
		return "", false
	}
	return name[:i], true
}

// GenericArgNames splits the bracketed suffix of an instantiated
// generic type's name into its comma-separated argument segments,
// balancing nested brackets so `Outer[Inner[int],string]` splits into
// two segments, not three.
func GenericArgNames(t reflect.Type) ([]string, bool) {
	name := t.Name()
	i := strings.IndexByte(name, '[')
	if i < 0 || !strings.HasSuffix(name, "]") {
		return nil, false
	}
	inner := name[i+1 : len(name)-1]
	if inner == "" {
		return nil, false
	}
	return splitBalanced(inner), true
}

func splitBalanced(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
