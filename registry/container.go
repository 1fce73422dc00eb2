package registry

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Container indexes export, wrapper, and decorator strategies by
// exported type — closed and open-generic — and supports iteration,
// filtering, and per-type sub-collections.
//
// Writers serialize through a single registration mutex (callers
// typically also hold the owning scope's named "ActivationStrategyAddLock"
// so a whole Configure block publishes as one atomic batch). Readers
// load an immutable snapshot and never block.
type Container struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[snapshot]
	typeReg  *typeNameRegistry

	nextID  uint64
	nextSeq uint64
}

type snapshot struct {
	byClosedType  map[reflect.Type]*Collection
	byOpenGeneric map[GenericKey]*Collection
	byName        map[string]*Strategy
	all           []*Strategy
	inspectors    []func(*Strategy)
}

func emptySnapshot() *snapshot {
	return &snapshot{
		byClosedType:  make(map[reflect.Type]*Collection),
		byOpenGeneric: make(map[GenericKey]*Collection),
		byName:        make(map[string]*Strategy),
	}
}

// New creates an empty strategy container.
func New() *Container {
	c := &Container{typeReg: newTypeNameRegistry()}
	c.snapshot.Store(emptySnapshot())
	return c
}

func (c *Container) current() *snapshot {
	return c.snapshot.Load()
}

// Batch accumulates registrations so an entire Configure() block
// publishes as a single atomic snapshot swap — concurrent resolvers
// never observe a partially-applied batch.
type Batch struct {
	c        *Container
	next     *snapshot
	startLen int
}

// Begin opens a batch. The caller must eventually call Commit; the
// container's registration mutex is held for the lifetime of the batch.
func (c *Container) Begin() *Batch {
	c.mu.Lock()
	cur := c.current()
	next := &snapshot{
		byClosedType:  make(map[reflect.Type]*Collection, len(cur.byClosedType)),
		byOpenGeneric: make(map[GenericKey]*Collection, len(cur.byOpenGeneric)),
		byName:        make(map[string]*Strategy, len(cur.byName)),
		all:           append([]*Strategy(nil), cur.all...),
		inspectors:    append([]func(*Strategy){}, cur.inspectors...),
	}
	for t, col := range cur.byClosedType {
		next.byClosedType[t] = col
	}
	for k, col := range cur.byOpenGeneric {
		next.byOpenGeneric[k] = col
	}
	for n, s := range cur.byName {
		next.byName[n] = s
	}
	return &Batch{c: c, next: next, startLen: len(next.all)}
}

// Added returns how many strategies this batch has added via
// AddStrategy since Begin, for reporting purposes.
func (b *Batch) Added() int {
	return len(b.next.all) - b.startLen
}

// Commit publishes the batch's accumulated registrations atomically
// and releases the registration mutex.
func (b *Batch) Commit() {
	b.c.snapshot.Store(b.next)
	b.c.mu.Unlock()
}

// AddInspector registers insp to run against every strategy already in
// the batch and every strategy added to it afterward.
func (b *Batch) AddInspector(insp func(*Strategy)) {
	for _, s := range b.next.all {
		insp(s)
	}
	b.next.inspectors = append(b.next.inspectors, insp)
}

// AddStrategy inserts s into the batch's working indices: by_closed_type
// for each of its ExportedTypes, and by_open_generic when it describes
// an open-generic family. Every registered inspector runs against s
// first, so an inspector can still mutate a pre-publication strategy.
func (b *Batch) AddStrategy(s *Strategy) *Strategy {
	for _, insp := range b.next.inspectors {
		insp(s)
	}

	b.c.nextID++
	s.ID = b.c.nextID
	b.c.nextSeq++
	s.insertionOrder = b.c.nextSeq

	for _, t := range s.ExportedTypes {
		col, ok := b.next.byClosedType[t]
		if !ok {
			col = newCollection()
		}
		b.next.byClosedType[t] = col.withAdded(s)
	}

	if s.OpenGeneric != nil {
		key := *s.OpenGeneric
		col, ok := b.next.byOpenGeneric[key]
		if !ok {
			col = newCollection()
		}
		b.next.byOpenGeneric[key] = col.withAdded(s)
		for _, inst := range s.Instantiations {
			for _, at := range inst.ArgTypes {
				b.c.typeReg.Register(at)
			}
		}
	}

	if s.Name != "" {
		b.next.byName[s.Name] = s
	}

	b.next.all = append(b.next.all, s)
	return s
}

// GetCollection returns the ordered strategy list for exactly t, with
// no open-generic fallback.
func (c *Container) GetCollection(t reflect.Type) (*Collection, bool) {
	col, ok := c.current().byClosedType[t]
	return col, ok
}

// GetOpenGeneric returns the ordered strategy list registered for an
// open-generic family.
func (c *Container) GetOpenGeneric(key GenericKey) (*Collection, bool) {
	col, ok := c.current().byOpenGeneric[key]
	return col, ok
}

// ByName returns the strategy registered under name, if any.
func (c *Container) ByName(name string) (*Strategy, bool) {
	s, ok := c.current().byName[name]
	return s, ok
}

// AllStrategies returns every strategy ever added, in insertion order.
func (c *Container) AllStrategies() []*Strategy {
	cur := c.current()
	out := make([]*Strategy, len(cur.all))
	copy(out, cur.all)
	return out
}

// ResolveTypeName recovers a previously-registered type by the name
// a generic instantiation's argument segment refers to it by.
func (c *Container) ResolveTypeName(name string) (reflect.Type, bool) {
	return c.typeReg.Resolve(name)
}

// RegisterTypeName makes t resolvable by ResolveTypeName. Called
// automatically for every type argument of a registered
// GenericInstantiation; exposed so callers can pre-register types that
// only ever appear as *requested* generic arguments.
func (c *Container) RegisterTypeName(t reflect.Type) {
	c.typeReg.Register(t)
}
