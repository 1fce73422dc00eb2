package nasc

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nascore/nasc/internal/nasclog"
	"github.com/nascore/nasc/registry"
)

// Initializable is implemented by services that need a post-construction
// hook run once, immediately after the constructor returns.
//
// Example:
//
//	type Service struct{}
//	func (s *Service) Initialize() error { return s.warmCache() }
type Initializable interface {
	Initialize() error
}

// Scope is one node in the injection scope hierarchy: the root scope
// owns the strategy container and delegate cache; every child created
// with BeginLifetimeScope or CreateChildScope shares them but gets its
// own PerScope cache, disposal list, and named data bag.
//
// A Scope is safe for concurrent use: Locate calls from multiple
// goroutines against the same scope, or against a parent and its
// children simultaneously, never race.
type Scope struct {
	name   string
	parent *Scope
	root   *Scope // self, for the root

	// Root-only state.
	cache  *delegateCache
	config EngineConfig
	logger nasclog.Logger

	// container holds strategies registered directly against this
	// scope. Every scope may have its own (lazily created by the first
	// Configure call against it) as well as inheriting its ancestors';
	// the root's is populated at construction and never nil.
	containerMu sync.Mutex
	container   *registry.Container

	// localCache memoizes compiled delegates for a scope that has its
	// own container somewhere in its ancestry — the shared root
	// cache only holds delegates valid for every scope, so a scope with
	// local overrides compiles and caches independently instead.
	localCacheMu sync.Mutex
	localCache   map[delegateKey]ActivationDelegate

	id         atomic.Pointer[string]
	singletons *lifestyleCache // root-only
	perScope   *lifestyleCache // this scope's own

	disposal *disposalScope

	reflectCache *reflectionCache // root-only

	providersMu sync.Mutex
	providers   []*providerEntry // root-only

	extraMu sync.RWMutex
	extra   map[string]interface{}

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	childrenMu sync.Mutex
	children   []*Scope
}

// NewContainer builds a root Scope — the entry point for registration
// and resolution — wired with cfg exactly as given (a zero CacheBuckets
// uses the built-in default bucket count; the environment is not read)
// and logger (nasclog.Noop() if nil).
func NewContainer(cfg EngineConfig, logger nasclog.Logger) *Scope {
	if logger == nil {
		logger = nasclog.Noop()
	}
	buckets := cfg.CacheBuckets
	if buckets == 0 {
		buckets = defaultCacheBuckets
	}
	root := &Scope{
		container:    registry.New(),
		cache:        newDelegateCache(buckets),
		config:       cfg,
		logger:       logger,
		singletons:   newLifestyleCache(),
		perScope:     newLifestyleCache(),
		disposal:     newDisposalScope(),
		reflectCache: newReflectionCache(logger),
	}
	root.root = root

	b := root.container.Begin()
	registerBuiltinWrappers(b)
	b.Commit()

	return root
}

func (s *Scope) rootScope() *Scope { return s.root }

// ID returns this scope's identity, generating it lazily and exactly
// once under concurrent first access: every goroutine that loses the
// generation race discards its own uuid.NewString() result and adopts
// the winner's, since a discarded UUID has no side effects worth
// avoiding.
func (s *Scope) ID() string {
	if p := s.id.Load(); p != nil {
		return *p
	}
	generated := uuid.NewString()
	s.id.CompareAndSwap(nil, &generated)
	return *s.id.Load()
}

// Name returns the scope's human-readable name, empty if never set.
func (s *Scope) Name() string { return s.name }

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope { return s.parent }

// Set stashes an arbitrary named value on this scope, visible to Get
// calls against this scope and its descendants (Get searches ancestors).
// Keys and Values list only this scope's own entries.
func (s *Scope) Set(key string, value interface{}) {
	s.extraMu.Lock()
	defer s.extraMu.Unlock()
	if s.extra == nil {
		s.extra = make(map[string]interface{})
	}
	s.extra[key] = value
}

// Get reads a value set with Set, searching this scope then each
// ancestor in turn.
func (s *Scope) Get(key string) (interface{}, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		cur.extraMu.RLock()
		v, ok := cur.extra[key]
		cur.extraMu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Keys returns every name set with Set on this scope (not ancestors).
func (s *Scope) Keys() []string {
	s.extraMu.RLock()
	defer s.extraMu.RUnlock()
	keys := make([]string, 0, len(s.extra))
	for k := range s.extra {
		keys = append(keys, k)
	}
	return keys
}

// Values returns every value set with Set on this scope (not ancestors).
func (s *Scope) Values() []interface{} {
	s.extraMu.RLock()
	defer s.extraMu.RUnlock()
	values := make([]interface{}, 0, len(s.extra))
	for _, v := range s.extra {
		values = append(values, v)
	}
	return values
}

// GetLockObject returns a mutex private to name, scoped to this Scope —
// created on first request, reused on every later call with the same
// name. Used to serialize access to scope-local resources a host wants
// to guard without inventing its own lock registry.
func (s *Scope) GetLockObject(name string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// activationStrategyAddLock names the scope-local lock Configure takes
// for the duration of a registration batch, serializing concurrent
// Configure calls against the same scope without blocking unrelated
// GetLockObject users.
const activationStrategyAddLock = "ActivationStrategyAddLock"

// Configure runs fn against a registration batch, publishing every
// strategy fn adds in one atomic snapshot swap — concurrent Locate
// calls never observe the batch half-applied. Calling Configure on a
// child scope registers strategies visible only from that scope and
// its descendants, layered on top of (and able to shadow) whatever the
// ancestors already export — mirroring BeginLifetimeScope's
// configuration callback. The whole call runs under this scope's
// "ActivationStrategyAddLock", so two goroutines configuring the same
// scope at once serialize instead of racing to build independent
// batches against it.
func (s *Scope) Configure(fn func(*Registrar)) {
	lock := s.GetLockObject(activationStrategyAddLock)
	lock.Lock()
	defer lock.Unlock()

	b := s.ownContainer().Begin()
	r := &Registrar{batch: b, scope: s}
	fn(r)
	b.Commit()
	s.root.logger.Debug("nasc: registrations published",
		zap.String("scope", s.name),
		zap.Int("count", r.batch.Added()),
	)
}

// ownContainer returns this scope's own container, creating it on
// first use for any scope but the root (whose container always exists
// from NewContainer).
func (s *Scope) ownContainer() *registry.Container {
	if s == s.root {
		return s.container
	}
	s.containerMu.Lock()
	defer s.containerMu.Unlock()
	if s.container == nil {
		s.container = registry.New()
	}
	return s.container
}

// containerChain returns this scope's own container (if any) followed
// by each ancestor's in turn, nearest first — the order strategy
// lookup searches in, so a child's registration shadows its parent's.
func (s *Scope) containerChain() []*registry.Container {
	var chain []*registry.Container
	for cur := s; cur != nil; cur = cur.parent {
		cur.containerMu.Lock()
		c := cur.container
		cur.containerMu.Unlock()
		if c != nil {
			chain = append(chain, c)
		}
	}
	return chain
}

// hasScopeLocalOverrides reports whether s itself or any ancestor below
// the root has its own container, meaning s's resolution cannot be
// satisfied purely from the shared root cache.
func (s *Scope) hasScopeLocalOverrides() bool {
	for cur := s; cur != nil && cur != s.root; cur = cur.parent {
		cur.containerMu.Lock()
		c := cur.container
		cur.containerMu.Unlock()
		if c != nil {
			return true
		}
	}
	return false
}

// addChild records child for disposal cascading; called by
// BeginLifetimeScope/CreateChildScope.
func (s *Scope) addChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	s.children = append(s.children, child)
}

// Dispose releases every instance this scope itself created (LIFO) and
// nothing else: a child scope's disposal is independent of its parent's,
// so Dispose never reaches into s.children. Idempotent: calling Dispose
// twice is a no-op the second time. Callers that create a child purely
// to discard it along with its parent should Dispose the child
// explicitly (or use DisposeTree) rather than relying on cascading.
func (s *Scope) Dispose() error {
	err := s.disposal.Dispose()
	if err != nil {
		s.root.logger.Warn("nasc: scope disposal encountered errors",
			zap.String("scope", s.name), zap.Error(err))
	} else {
		s.root.logger.Debug("nasc: scope disposed", zap.String("scope", s.name))
	}
	return err
}

// DisposeTree disposes s and then, recursively, every child scope still
// created from it, depth-first — a convenience for callers that want the
// whole subtree torn down at once. Unlike Dispose, this does reach into
// s.children; it is never called implicitly by Dispose itself.
func (s *Scope) DisposeTree() error {
	s.childrenMu.Lock()
	children := s.children
	s.children = nil
	s.childrenMu.Unlock()

	firstErr := s.Dispose()
	for _, child := range children {
		if err := child.DisposeTree(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func runInitializable(instance interface{}) error {
	if init, ok := instance.(Initializable); ok {
		return init.Initialize()
	}
	return nil
}
