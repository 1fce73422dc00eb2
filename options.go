package nasc

import "github.com/nascore/nasc/internal/nasclog"

// Option configures a root Scope at construction time. Pass zero or more
// to NewContainerWithOptions.
type Option func(*containerOptions)

type containerOptions struct {
	cfg    EngineConfig
	logger nasclog.Logger
}

// WithConfig sets the engine configuration directly, replacing whatever
// LoadConfig read from the environment.
func WithConfig(cfg EngineConfig) Option {
	return func(o *containerOptions) { o.cfg = cfg }
}

// WithLogger attaches logger to the root scope and everything derived
// from it.
func WithLogger(logger nasclog.Logger) Option {
	return func(o *containerOptions) { o.logger = logger }
}

// WithCacheBuckets overrides the delegate cache's bucket count.
func WithCacheBuckets(n int) Option {
	return func(o *containerOptions) { o.cfg.CacheBuckets = n }
}

// WithAutoRegisterUnknown enables the built-in missing-export provider
// that auto-exports unregistered concrete types as transient on first
// request, instead of failing the Locate call.
func WithAutoRegisterUnknown() Option {
	return func(o *containerOptions) { o.cfg.AutoRegisterUnknown = true }
}

// NewContainerWithOptions builds a root Scope the way NewContainer does,
// but configured functionally. Options not supplied fall back to
// LoadConfig's defaults and a no-op logger.
func NewContainerWithOptions(opts ...Option) *Scope {
	o := &containerOptions{cfg: LoadConfig()}
	for _, opt := range opts {
		opt(o)
	}
	return NewContainer(o.cfg, o.logger)
}
