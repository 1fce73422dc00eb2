package nasc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nascore/nasc/registry"
)

type prefixLogger struct {
	prefix string
	inner  Logger
}

func (p *prefixLogger) Log(msg string) {
	p.inner.Log(p.prefix + msg)
}

func TestDecoratorWrapsExportedInstance(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*Logger)(nil), NewConsoleLogger))
		require.NoError(t, r.ExportDecorator((*Logger)(nil), func(inner interface{}, resolver registry.Resolver) (interface{}, error) {
			return &prefixLogger{prefix: "[decorated] ", inner: inner.(Logger)}, nil
		}))
	})

	logger, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)

	logger.(Logger).Log("hi")

	wrapped, ok := logger.(*prefixLogger)
	require.True(t, ok)
	console, ok := wrapped.inner.(*ConsoleLogger)
	require.True(t, ok)
	assert.Equal(t, []string{"[decorated] hi"}, console.messages)
}

func TestDecoratorsApplyInPriorityOrder(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*Logger)(nil), NewConsoleLogger))
		require.NoError(t, r.ExportDecorator((*Logger)(nil), func(inner interface{}, resolver registry.Resolver) (interface{}, error) {
			return &prefixLogger{prefix: "outer:", inner: inner.(Logger)}, nil
		}, WithPriority(10)))
		require.NoError(t, r.ExportDecorator((*Logger)(nil), func(inner interface{}, resolver registry.Resolver) (interface{}, error) {
			return &prefixLogger{prefix: "inner:", inner: inner.(Logger)}, nil
		}, WithPriority(20)))
	})

	logger, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)

	outer := logger.(*prefixLogger)
	assert.Equal(t, "outer:", outer.prefix)
	middle := outer.inner.(*prefixLogger)
	assert.Equal(t, "inner:", middle.prefix)
	_, ok := middle.inner.(*ConsoleLogger)
	assert.True(t, ok)
}

func TestDecoratorReceivesResolverForItsOwnDependencies(t *testing.T) {
	root := newTestRoot()
	root.Configure(func(r *Registrar) {
		require.NoError(t, r.Export((*Logger)(nil), NewConsoleLogger))
		require.NoError(t, r.ExportInstance((*string)(nil), stringPtr("audit:")))
		require.NoError(t, r.ExportDecorator((*Logger)(nil), func(inner interface{}, resolver registry.Resolver) (interface{}, error) {
			prefix, err := resolver.Resolve(typeOf((*string)(nil)))
			if err != nil {
				return nil, err
			}
			return &prefixLogger{prefix: *prefix.(*string), inner: inner.(Logger)}, nil
		}))
	})

	logger, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)
	logger.(Logger).Log("ok")

	wrapped := logger.(*prefixLogger)
	assert.Equal(t, "audit:", wrapped.prefix)
}

func stringPtr(s string) *string { return &s }
