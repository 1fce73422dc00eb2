package nasc

import (
	"fmt"
	"reflect"
	"strings"
)

// tagOptions represents parsed options from an inject tag.
type tagOptions struct {
	skip     bool   // Don't inject this field
	optional bool   // Don't fail if the export is missing
	name     string // Named export to use
}

// parseInjectTag parses an inject struct tag and returns options.
// Supported formats:
//   - `inject:""` - basic injection
//   - `inject:"optional"` - optional injection
//   - `inject:"name=foo"` - named export
//   - `inject:"optional,name=foo"` - combined options
func parseInjectTag(tag string) tagOptions {
	opts := tagOptions{}

	if tag == "" {
		return opts
	}

	if tag == "-" {
		opts.skip = true
		return opts
	}

	parts := strings.Split(tag, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)

		if part == "optional" {
			opts.optional = true
		} else if strings.HasPrefix(part, "name=") {
			opts.name = strings.TrimPrefix(part, "name=")
		}
	}

	return opts
}

// autoWireFieldInfo holds metadata about a field to inject.
type autoWireFieldInfo struct {
	name       string
	fieldValue reflect.Value
	options    tagOptions
	fieldType  reflect.Type
}

// getInjectableFields scans a struct and returns fields that need
// injection, using the scope's reflection cache for repeat lookups.
func (s *Scope) getInjectableFields(structValue reflect.Value) []autoWireFieldInfo {
	var fields []autoWireFieldInfo

	structType := structValue.Type()
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
		structValue = structValue.Elem()
	}

	if structType.Kind() != reflect.Struct {
		return fields
	}

	for _, cached := range s.root.reflectCache.injectableFieldsOf(structType) {
		fields = append(fields, autoWireFieldInfo{
			name:       cached.name,
			fieldValue: structValue.Field(cached.index),
			options:    cached.options,
			fieldType:  cached.typ,
		})
	}

	return fields
}

// AutoWire injects dependencies into every `inject`-tagged field of
// instance, resolved from s. It is not run automatically for Export
// registrations — a constructor is almost always the clearer way to
// declare dependencies — but is handy for framework-owned types (HTTP
// handlers, job structs) a host doesn't construct itself.
//
// Example:
//
//	type Handler struct {
//	    Logger Logger `inject:""`
//	    Cache  Cache  `inject:"optional"`
//	}
//
//	h := &Handler{}
//	if err := scope.AutoWire(h); err != nil { ... }
func (s *Scope) AutoWire(instance interface{}) error {
	if instance == nil {
		return fmt.Errorf("nasc: cannot auto-wire nil instance")
	}

	value := reflect.ValueOf(instance)
	if value.Kind() != reflect.Ptr {
		return fmt.Errorf("nasc: AutoWire requires a pointer to struct, got %T", instance)
	}

	elem := value.Elem()
	if elem.Kind() != reflect.Struct {
		return fmt.Errorf("nasc: AutoWire requires a pointer to struct, got pointer to %v", elem.Kind())
	}

	for _, field := range s.getInjectableFields(value) {
		if err := s.injectField(field); err != nil {
			return fmt.Errorf("nasc: failed to inject field %s: %w", field.name, err)
		}
	}

	return nil
}

func (s *Scope) injectField(field autoWireFieldInfo) error {
	if !field.fieldValue.CanSet() {
		return fmt.Errorf("field %s is not settable (not exported?)", field.name)
	}

	var resolved interface{}
	var found bool
	var err error

	if field.options.name != "" {
		resolved, found, err = s.TryLocateByName(field.options.name)
	} else {
		resolved, found, err = s.tryLocateType(field.fieldType)
	}
	if err != nil {
		return err
	}
	if !found {
		if field.options.optional {
			return nil
		}
		return &ExportNotFoundError{Type: field.fieldType}
	}

	resolvedValue := reflect.ValueOf(resolved)
	if !resolvedValue.Type().AssignableTo(field.fieldType) {
		return fmt.Errorf("resolved type %v is not assignable to field type %v",
			resolvedValue.Type(), field.fieldType)
	}

	field.fieldValue.Set(resolvedValue)
	return nil
}

// tryLocateType is TryLocate for a reflect.Type already in hand, rather
// than the nil-pointer-token idiom the public API uses.
func (s *Scope) tryLocateType(t reflect.Type) (interface{}, bool, error) {
	instance, err := s.resolve(t, nil, newInjectionContext())
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return instance, true, nil
}
