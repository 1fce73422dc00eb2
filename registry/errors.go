package registry

import (
	"fmt"
	"reflect"
)

// StrategyNotFoundError describes a named lookup that found nothing.
// Container.ByName reports a miss as false rather than returning it.
type StrategyNotFoundError struct {
	Name string
}

func (e *StrategyNotFoundError) Error() string {
	return fmt.Sprintf("registry: no strategy named %q", e.Name)
}

// InstantiationNotFoundError describes a requested instantiation of an
// open-generic family that was never registered. Nothing in this
// package returns it.
type InstantiationNotFoundError struct {
	Key      GenericKey
	ArgTypes []reflect.Type
	Known    []string
}

func (e *InstantiationNotFoundError) Error() string {
	return fmt.Sprintf("registry: %s has no instantiation for %v (known: %v)", e.Key, e.ArgTypes, e.Known)
}

// ConstraintError is returned when an open-generic family's constraint
// predicate rejects a set of type arguments.
type ConstraintError struct {
	Key      GenericKey
	ArgTypes []reflect.Type
	Cause    error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("registry: %s constraint failed for %v: %v", e.Key, e.ArgTypes, e.Cause)
}

func (e *ConstraintError) Unwrap() error { return e.Cause }
