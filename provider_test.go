package nasc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loggingProvider struct {
	registered bool
}

func (p *loggingProvider) Register(scope *Scope) error {
	p.registered = true
	scope.Configure(func(r *Registrar) {
		r.Export((*Logger)(nil), NewConsoleLogger)
	})
	return nil
}

func TestRegisterProviderRunsRegisterImmediately(t *testing.T) {
	root := newTestRoot()
	provider := &loggingProvider{}

	require.NoError(t, root.RegisterProvider(provider))
	assert.True(t, provider.registered)

	_, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)
}

func TestRegisterProviderIsIdempotentPerType(t *testing.T) {
	root := newTestRoot()
	first := &loggingProvider{}
	second := &loggingProvider{}

	require.NoError(t, root.RegisterProvider(first))
	require.NoError(t, root.RegisterProvider(second))

	assert.True(t, first.registered)
	assert.False(t, second.registered, "a second provider of the same type must not re-register")
	assert.Len(t, root.GetProviders(), 1)
}

func TestRegisterProviderRejectsNil(t *testing.T) {
	root := newTestRoot()
	err := root.RegisterProvider(nil)
	require.Error(t, err)
}

type dbProvider struct {
	booted     bool
	bootCalled int
}

func (p *dbProvider) Register(scope *Scope) error {
	scope.Configure(func(r *Registrar) {
		r.Export((*Database)(nil), NewMockDB)
	})
	return nil
}

func (p *dbProvider) Boot(scope *Scope) error {
	p.booted = true
	p.bootCalled++
	db, err := scope.Locate((*Database)(nil))
	if err != nil {
		return err
	}
	return db.(Database).Connect()
}

func TestBootProvidersRunsBootOnceAfterRegister(t *testing.T) {
	root := newTestRoot()
	provider := &dbProvider{}

	require.NoError(t, root.RegisterProvider(provider))
	assert.False(t, provider.booted, "Boot must not run before BootProviders is called")

	require.NoError(t, root.BootProviders())
	assert.True(t, provider.booted)

	require.NoError(t, root.BootProviders())
	assert.Equal(t, 1, provider.bootCalled, "a second BootProviders call must not re-boot")
}

type deferredProvider struct {
	shouldRegister bool
	registered     bool
}

func (p *deferredProvider) Register(scope *Scope) error {
	p.registered = true
	return nil
}

func (p *deferredProvider) ShouldRegister(scope *Scope) bool {
	return p.shouldRegister
}

func TestDeferredProviderSkipsRegisterWhenDeclined(t *testing.T) {
	root := newTestRoot()
	provider := &deferredProvider{shouldRegister: false}

	require.NoError(t, root.RegisterProvider(provider))
	assert.False(t, provider.registered)
	assert.Empty(t, root.GetProviders())
}

func TestDeferredProviderRegistersWhenAccepted(t *testing.T) {
	root := newTestRoot()
	provider := &deferredProvider{shouldRegister: true}

	require.NoError(t, root.RegisterProvider(provider))
	assert.True(t, provider.registered)
	assert.Len(t, root.GetProviders(), 1)
}

func TestProviderRegistrationRunsAgainstRootEvenFromChildScope(t *testing.T) {
	root := newTestRoot()
	child := root.CreateChildScope()
	provider := &loggingProvider{}

	require.NoError(t, child.RegisterProvider(provider))

	_, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)
}
