package nasc

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nascore/nasc/registry"
)

// EngineConfig carries the knobs a host may want to tune without touching
// code: cache sizing, the default lifestyle new exports get when they
// don't specify one, and whether unregistered concrete types should be
// auto-exported on first request.
//
// LoadConfig reads .env (if present) and falls back to compiled-in
// defaults; nothing here is required for normal use.
type EngineConfig struct {
	// CacheBuckets is the delegate cache's bucket count. Rounded up to the
	// next power of two. Zero uses the built-in default.
	CacheBuckets int

	// AutoRegisterUnknown mirrors the MissingExportStrategyProvider
	// behavior: when true, requesting a concrete, unregistered type
	// auto-exports it as transient instead of failing.
	AutoRegisterUnknown bool

	// DefaultLifestyle is applied to exports registered without an
	// explicit lifestyle.
	DefaultLifestyle registry.LifestyleKind
}

// LoadConfig reads .env (if present; non-fatal when absent) and env vars,
// falling back to defaults for anything unset.
//
//	NASC_CACHE_BUCKETS         int,  default 256
//	NASC_AUTO_REGISTER_UNKNOWN bool, default false
//	NASC_DEFAULT_LIFESTYLE     "transient"|"singleton"|"per-scope"|"per-context", default "transient"
func LoadConfig(envFiles ...string) EngineConfig {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	_ = godotenv.Load(files...)

	return EngineConfig{
		CacheBuckets:        envInt("NASC_CACHE_BUCKETS", defaultCacheBuckets),
		AutoRegisterUnknown: envBool("NASC_AUTO_REGISTER_UNKNOWN", false),
		DefaultLifestyle:    lifestyleFromEnv("NASC_DEFAULT_LIFESTYLE"),
	}
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func lifestyleFromEnv(key string) registry.LifestyleKind {
	switch os.Getenv(key) {
	case "singleton":
		return registry.Singleton
	case "per-scope":
		return registry.PerScope
	case "per-context":
		return registry.PerContext
	default:
		return registry.Transient
	}
}
