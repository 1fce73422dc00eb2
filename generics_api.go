package nasc

import (
	"reflect"

	"github.com/nascore/nasc/registry"
)

// ExportGeneric registers ctor as one instantiation of an open-generic
// export family. exportedType must be a concrete, already-compiled
// instantiation — e.g. (*Repository[User])(nil) — since Go has no way
// to synthesize a reflect.Type for a generic that was never
// instantiated in source. argTypes names each of that instantiation's
// type arguments, in declaration order, using the same nil-pointer
// token idiom as exportedType; they are what lets Locate's error
// message, on a later request for an instantiation nobody registered,
// name which instantiations of the family actually exist.
//
// Example:
//
//	r.ExportGeneric((*Repository[User])(nil), []interface{}{(*User)(nil)}, NewUserRepository)
//	r.ExportGeneric((*Repository[Order])(nil), []interface{}{(*Order)(nil)}, NewOrderRepository)
func (r *Registrar) ExportGeneric(exportedType interface{}, argTypes []interface{}, ctor ConstructorFunc, opts ...RegOption) error {
	t := typeOf(exportedType)
	baseName, ok := registry.GenericBaseName(t)
	if !ok {
		return &InvalidRegistrationError{Reason: "exportedType must be an instantiated generic type, e.g. (*Repository[User])(nil)"}
	}

	info, err := parseConstructor(ctor)
	if err != nil {
		return &InvalidRegistrationError{Reason: err.Error()}
	}

	argTs := make([]reflect.Type, len(argTypes))
	for i, a := range argTypes {
		argTs[i] = typeOf(a)
	}
	key := registry.GenericKey{PkgPath: t.PkgPath(), Name: baseName, Arity: len(argTs)}

	s := &registry.Strategy{
		Kind:          registry.KindExport,
		ExportedTypes: []reflect.Type{t},
		OpenGeneric:   &key,
		Lifestyle:     r.scope.root.config.DefaultLifestyle,
		Dependencies:  dependenciesOf(info),
		Constructor:   ctor,
		Instantiations: map[string]*registry.GenericInstantiation{
			t.String(): {
				ArgTypes:           argTs,
				ImplementationType: t,
				Dependencies:       dependenciesOf(info),
				Constructor:        ctor,
			},
		},
	}
	s.Factory = func(resolver registry.Resolver) (interface{}, error) {
		return invokeConstructor(info, s.Dependencies, resolver)
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, constraint := range s.GenericConstraints {
		if cerr := constraint(argTs); cerr != nil {
			return &registry.ConstraintError{Key: key, ArgTypes: argTs, Cause: cerr}
		}
	}

	r.batch.AddStrategy(s)
	return nil
}

// WithGenericConstraint adds a predicate an ExportGeneric instantiation's
// type arguments must satisfy, checked once at registration time rather
// than on every resolution.
func WithGenericConstraint(check func(argTypes []reflect.Type) error) RegOption {
	return func(s *registry.Strategy) {
		s.GenericConstraints = append(s.GenericConstraints, check)
	}
}

// diagnoseGenericFamily checks whether t merely names an instantiation
// nobody registered of a family that otherwise exists somewhere in
// chain, producing a GenericInstantiationNotFoundError naming the
// instantiations that ARE registered instead of a bare not-found.
func diagnoseGenericFamily(chain []*registry.Container, t reflect.Type) error {
	baseName, ok := registry.GenericBaseName(t)
	if !ok {
		return nil
	}
	argNames, ok := registry.GenericArgNames(t)
	if !ok {
		return nil
	}
	key := registry.GenericKey{PkgPath: t.PkgPath(), Name: baseName, Arity: len(argNames)}

	for _, c := range chain {
		col, ok := c.GetOpenGeneric(key)
		if !ok {
			continue
		}
		var known []string
		for _, st := range col.All() {
			for name := range st.Instantiations {
				known = append(known, name)
			}
		}
		return &GenericInstantiationNotFoundError{Family: key.String(), Requested: t.String(), Known: known}
	}
	return nil
}
