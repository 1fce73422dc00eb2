package nasc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nascore/nasc/registry"
)

func TestLoadConfigFallsBackToDefaultsWhenUnset(t *testing.T) {
	cfg := LoadConfig("testdata/does-not-exist.env")
	assert.Equal(t, defaultCacheBuckets, cfg.CacheBuckets)
	assert.False(t, cfg.AutoRegisterUnknown)
	assert.Equal(t, registry.Transient, cfg.DefaultLifestyle)
}

func TestLoadConfigReadsEnvOverrides(t *testing.T) {
	t.Setenv("NASC_CACHE_BUCKETS", "64")
	t.Setenv("NASC_AUTO_REGISTER_UNKNOWN", "true")
	t.Setenv("NASC_DEFAULT_LIFESTYLE", "singleton")

	cfg := LoadConfig("testdata/does-not-exist.env")
	assert.Equal(t, 64, cfg.CacheBuckets)
	assert.True(t, cfg.AutoRegisterUnknown)
	assert.Equal(t, registry.Singleton, cfg.DefaultLifestyle)
}

func TestLoadConfigIgnoresInvalidValues(t *testing.T) {
	t.Setenv("NASC_CACHE_BUCKETS", "not-a-number")
	t.Setenv("NASC_AUTO_REGISTER_UNKNOWN", "not-a-bool")

	cfg := LoadConfig("testdata/does-not-exist.env")
	assert.Equal(t, defaultCacheBuckets, cfg.CacheBuckets)
	assert.False(t, cfg.AutoRegisterUnknown)
}

func TestDefaultLifestylePropagatesToExportsWithoutOverride(t *testing.T) {
	cfg := EngineConfig{DefaultLifestyle: registry.Singleton}
	root := NewContainer(cfg, nil)
	root.Configure(func(r *Registrar) {
		_ = r.Export((*Logger)(nil), NewConsoleLogger)
	})

	a, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)
	b, err := root.Locate((*Logger)(nil))
	require.NoError(t, err)
	assert.Same(t, a, b)
}
