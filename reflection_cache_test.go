package nasc

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wiredFixture struct {
	Logger    Logger `inject:""`
	Cache     Logger `inject:"optional,name=cache"`
	unexposed string
	Plain     int
}

func TestReflectionCacheComputesInjectableFieldsOnce(t *testing.T) {
	rc := newReflectionCache(nil)
	typ := reflect.TypeOf(wiredFixture{})

	first := rc.injectableFieldsOf(typ)
	require.Len(t, first, 2, "Plain and unexposed carry no inject tag and must be left out entirely")

	byName := make(map[string]injectableField, len(first))
	for _, f := range first {
		byName[f.name] = f
	}
	_, hasLogger := byName["Logger"]
	assert.True(t, hasLogger)
	assert.False(t, byName["Logger"].options.optional)

	cache, hasCache := byName["Cache"]
	require.True(t, hasCache)
	assert.True(t, cache.options.optional)
	assert.Equal(t, "cache", cache.options.name)

	second := rc.injectableFieldsOf(typ)
	assert.Equal(t, first, second, "second call must hit the cache, not recompute")
}

func TestReflectionCacheClearForcesRecomputation(t *testing.T) {
	rc := newReflectionCache(nil)
	typ := reflect.TypeOf(wiredFixture{})

	rc.injectableFieldsOf(typ)
	rc.mu.RLock()
	_, cached := rc.fields[typ]
	rc.mu.RUnlock()
	require.True(t, cached)

	rc.clear()

	rc.mu.RLock()
	_, stillCached := rc.fields[typ]
	rc.mu.RUnlock()
	assert.False(t, stillCached, "clear must drop every cached entry")
}

func TestReflectionCacheSkipsExplicitlyExcludedField(t *testing.T) {
	type skipFixture struct {
		Logger Logger `inject:"-"`
	}
	rc := newReflectionCache(nil)
	fields := rc.injectableFieldsOf(reflect.TypeOf(skipFixture{}))
	assert.Empty(t, fields)
}
