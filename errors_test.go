package nasc

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nascore/nasc/registry"
)

type serviceA struct{ B *serviceB }
type serviceB struct{ A *serviceA }

func newServiceA(b *serviceB) *serviceA { return &serviceA{B: b} }
func newServiceB(a *serviceA) *serviceB { return &serviceB{A: a} }

func TestCircularDependencyIsDetected(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*serviceA)(nil), newServiceA))
		require.NoError(t, r.Export((*serviceB)(nil), newServiceB))
	})

	_, err := root.Locate((*serviceA)(nil))
	require.Error(t, err)
	var cycle *CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Path, "*nasc.serviceA")
	assert.Contains(t, cycle.Path, "*nasc.serviceB")
}

type brokenService struct{}

func newBrokenService() (*brokenService, error) {
	return nil, assert.AnError
}

func TestConstructorFailureWrapsCause(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*brokenService)(nil), newBrokenService))
	})

	_, err := root.Locate((*brokenService)(nil))
	require.Error(t, err)
	var resErr *ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, resErr, assert.AnError)
}

func TestInvalidRegistrationRejectsNilConstructor(t *testing.T) {
	root := newTestRoot()
	var regErr error
	root.Configure(func(r *Registrar) {
		regErr = r.Export((*Logger)(nil), nil)
	})
	require.Error(t, regErr)
	var invalid *InvalidRegistrationError
	require.ErrorAs(t, regErr, &invalid)
}

func TestValidationErrorAggregatesMultipleCauses(t *testing.T) {
	verr := &ValidationError{Errors: []error{assert.AnError, assert.AnError}}
	assert.Contains(t, verr.Error(), "2 errors")
}

func TestGenericInstantiationNotFoundNamesKnownSiblings(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportGeneric((*Repository[userRecord])(nil), []interface{}{(*userRecord)(nil)}, newUserRepository))
	})

	_, err := root.Locate((*Repository[orderRecord])(nil))
	require.Error(t, err)
	var diag *GenericInstantiationNotFoundError
	require.ErrorAs(t, err, &diag)
	assert.Contains(t, diag.Known, reflect.TypeOf(Repository[userRecord]{}).String())
}

type orderRecord struct{ id int }

func TestExportGenericRejectsNonGenericType(t *testing.T) {
	root := newTestRoot()
	var regErr error
	root.Configure(func(r *Registrar) {
		regErr = r.ExportGeneric((*Logger)(nil), nil, NewConsoleLogger)
	})
	require.Error(t, regErr)
}

func TestLocateOnDisposedScopeReturnsTypedError(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*Logger)(nil), NewConsoleLogger))
	})

	require.NoError(t, root.Dispose())

	_, err := root.Locate((*Logger)(nil))
	require.Error(t, err)
	var disposed *ScopeDisposedError
	require.ErrorAs(t, err, &disposed)
}

type failingDisposable struct{ name string }

func (f *failingDisposable) Dispose() error {
	return fmt.Errorf("%s: %w", f.name, assert.AnError)
}

func TestDisposeAggregatesMultipleFailures(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportFunc((*failingDisposable)(nil), func(registry.Resolver) (interface{}, error) {
			return &failingDisposable{name: "a"}, nil
		}, AsName("a")))
		require.NoError(t, r.ExportFunc((*failingDisposable)(nil), func(registry.Resolver) (interface{}, error) {
			return &failingDisposable{name: "b"}, nil
		}, AsName("b")))
	})

	_, err := root.LocateByName("a")
	require.NoError(t, err)
	_, err = root.LocateByName("b")
	require.NoError(t, err)

	err = root.Dispose()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
}

type needsConfig struct{ addr string }

func newNeedsConfig(addr string) *needsConfig { return &needsConfig{addr: addr} }

func TestMissingConstructorParamWithNoDefaultFails(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*needsConfig)(nil), newNeedsConfig))
	})

	_, err := root.Locate((*needsConfig)(nil))
	require.Error(t, err)
	var missing *MissingConstructorParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "arg0", missing.Param)
}

func TestWithDefaultSuppliesFallbackValue(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*needsConfig)(nil), newNeedsConfig, WithDefault(0, "localhost:8080")))
	})

	instance, err := root.Locate((*needsConfig)(nil))
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", instance.(*needsConfig).addr)
}

func TestWithOptionalParamFallsBackToZeroValue(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*needsConfig)(nil), newNeedsConfig, WithOptionalParam(0)))
	})

	instance, err := root.Locate((*needsConfig)(nil))
	require.NoError(t, err)
	assert.Equal(t, "", instance.(*needsConfig).addr)
}

func TestNullInstanceReturnedByFactoryIsRejected(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.ExportFunc((*Logger)(nil), func(registry.Resolver) (interface{}, error) {
			var nilLogger *ConsoleLogger
			return nilLogger, nil
		}))
	})

	_, err := root.Locate((*Logger)(nil))
	require.Error(t, err)
	var nullErr *NullInstanceReturnedError
	require.ErrorAs(t, err, &nullErr)
}

func TestNullInstanceReturnedByDecoratorIsRejected(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*Logger)(nil), NewConsoleLogger))
		require.NoError(t, r.ExportDecorator((*Logger)(nil), func(inner interface{}, resolver registry.Resolver) (interface{}, error) {
			var nilLogger *ConsoleLogger
			return nilLogger, nil
		}))
	})

	_, err := root.Locate((*Logger)(nil))
	require.Error(t, err)
	var nullErr *NullInstanceReturnedError
	require.ErrorAs(t, err, &nullErr)
}

func TestSingletonDependingOnPerScopeIsRejected(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*Logger)(nil), NewConsoleLogger, WithLifestyle(registry.PerScope)))
		require.NoError(t, r.Export((*greeterService)(nil), newGreeterService, WithLifestyle(registry.Singleton)))
	})

	_, err := root.Locate((*greeterService)(nil))
	require.Error(t, err)
	var violation *LifestyleViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "per-scope", violation.DependencyKind)
}

func TestWithGenericConstraintRejectsInvalidArgs(t *testing.T) {
	root := newTestRoot()
	var regErr error
	root.Configure(func(r *Registrar) {
		regErr = r.ExportGeneric((*Repository[userRecord])(nil), []interface{}{(*userRecord)(nil)}, newUserRepository,
			WithGenericConstraint(func(argTypes []reflect.Type) error {
				return assert.AnError
			}))
	})
	require.Error(t, regErr)
	var constraintErr *registry.ConstraintError
	require.ErrorAs(t, regErr, &constraintErr)
}
