package nasc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// isNotFound reports whether err is (or wraps) an ExportNotFoundError.
func isNotFound(err error) bool {
	var notFound *ExportNotFoundError
	return errors.As(err, &notFound)
}

// ExportNotFoundError is returned when Locate finds no strategy — export,
// wrapper, or decorator-assembled — able to produce the requested type.
type ExportNotFoundError struct {
	Type reflect.Type
	Key  interface{}
	Name string
}

func (e *ExportNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("nasc: no export registered under name %q", e.Name)
	}
	if e.Key != nil {
		return fmt.Sprintf("nasc: no export found for type %v with key %v", e.Type, e.Key)
	}
	return fmt.Sprintf("nasc: no export found for type %v. Did you forget to register it in a Configure block?", e.Type)
}

// ExportAlreadyExistsError describes a second keyless export of a type
// that already has one. No registration path in this package returns
// it: every Export* call allows shadowing, ordered by Priority.
type ExportAlreadyExistsError struct {
	Type reflect.Type
}

func (e *ExportAlreadyExistsError) Error() string {
	return fmt.Sprintf("nasc: export already exists for type %v", e.Type)
}

// InvalidRegistrationError is returned when a registration call is
// given parameters that can never produce a working strategy.
type InvalidRegistrationError struct {
	Reason string
}

func (e *InvalidRegistrationError) Error() string {
	return fmt.Sprintf("nasc: invalid registration: %s", e.Reason)
}

// ResolutionError wraps a failure encountered while compiling or
// running an activation for a specific type.
type ResolutionError struct {
	Type    reflect.Type
	Key     interface{}
	Name    string
	Cause   error
	Context string
}

func (e *ResolutionError) Error() string {
	typeStr := "unknown"
	if e.Type != nil {
		typeStr = e.Type.String()
	}

	nameStr := ""
	if e.Name != "" {
		nameStr = fmt.Sprintf(" (name=%s)", e.Name)
	}
	keyStr := ""
	if e.Key != nil {
		keyStr = fmt.Sprintf(" (key=%v)", e.Key)
	}

	contextStr := ""
	if e.Context != "" {
		contextStr = fmt.Sprintf(": %s", e.Context)
	}

	causeStr := ""
	if e.Cause != nil {
		causeStr = fmt.Sprintf(": %v", e.Cause)
	}

	return fmt.Sprintf("failed to resolve %s%s%s%s%s", typeStr, nameStr, keyStr, contextStr, causeStr)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// CircularDependencyError indicates a resolution chain requested a type
// it was already in the middle of constructing.
type CircularDependencyError struct {
	Path []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "nasc: circular dependency detected"
	}
	return fmt.Sprintf("nasc: circular dependency detected: %s", strings.Join(e.Path, " -> "))
}

// ValidationError aggregates one or more registration problems into a
// single error.
type ValidationError struct {
	Errors []error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "nasc: validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("nasc: validation failed: %v", e.Errors[0])
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("nasc: validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		b.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() []error {
	return e.Errors
}

// GenericInstantiationNotFoundError is returned when a request names an
// instantiation of a registered open-generic family that nobody
// registered — distinct from ExportNotFoundError because it can name
// the sibling instantiations that do exist, usually the fix a caller
// needs.
type GenericInstantiationNotFoundError struct {
	Family    string
	Requested string
	Known     []string
}

func (e *GenericInstantiationNotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("nasc: no instantiation %s registered for open-generic family %s", e.Requested, e.Family)
	}
	return fmt.Sprintf("nasc: no instantiation %s registered for open-generic family %s (known: %s)",
		e.Requested, e.Family, strings.Join(e.Known, ", "))
}

// ScopeDisposedError is returned when Locate is called against a scope
// that has already finished disposing.
type ScopeDisposedError struct {
	ScopeName string
}

func (e *ScopeDisposedError) Error() string {
	if e.ScopeName == "" {
		return "nasc: cannot resolve from a disposed scope"
	}
	return fmt.Sprintf("nasc: cannot resolve from disposed scope %q", e.ScopeName)
}

// MissingConstructorParamError is returned when a constructor parameter
// cannot be resolved from the container and carries neither a default
// value (WithDefault) nor an Optional marking (WithOptionalParam).
type MissingConstructorParamError struct {
	Type  reflect.Type
	Param string
	Cause error
}

func (e *MissingConstructorParamError) Error() string {
	return fmt.Sprintf("nasc: constructor parameter %s (%v) has no resolvable value and no default: %v", e.Param, e.Type, e.Cause)
}

func (e *MissingConstructorParamError) Unwrap() error {
	return e.Cause
}

// NullInstanceReturnedError is returned when a factory or decorator
// produces a nil value for a type that disallows it.
type NullInstanceReturnedError struct {
	Type reflect.Type
}

func (e *NullInstanceReturnedError) Error() string {
	return fmt.Sprintf("nasc: factory for %v returned a nil instance", e.Type)
}

// LifestyleViolationError is returned when compiling a strategy would
// let a longer-lived lifestyle capture a shorter-lived one — a Singleton
// depending directly on a PerScope or PerContext export, which would
// pin the narrower instance past the scope that is supposed to own it.
type LifestyleViolationError struct {
	Type           reflect.Type
	Lifestyle      string
	DependencyType reflect.Type
	DependencyKind string
}

func (e *LifestyleViolationError) Error() string {
	return fmt.Sprintf("nasc: %s %v cannot depend on %s %v", e.Lifestyle, e.Type, e.DependencyKind, e.DependencyType)
}
