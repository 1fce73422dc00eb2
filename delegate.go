package nasc

import (
	"reflect"
	"sync/atomic"
)

const defaultCacheBuckets = 256

// ActivationDelegate is a compiled, ready-to-call activation — the
// result of running the compiler once for a given (type, key) pair.
// Calling it again never re-runs strategy matching; it only re-executes
// the closure tree the compiler already built.
type ActivationDelegate func(scope *Scope, ctx *InjectionContext) (interface{}, error)

// delegateKey identifies one compiled delegate. Keyed activations get a
// distinct entry from keyless ones for the same type.
type delegateKey struct {
	typ reflect.Type
	key interface{}
}

type delegateEntry struct {
	key   delegateKey
	value ActivationDelegate
}

// delegateCache is a fixed-size, power-of-two bucket hash map used as a
// lock-free-on-the-fast-path cache of compiled delegates. Writers build
// an entirely new bucket slice (copy-on-write) and publish it with a
// single atomic CAS; a losing writer simply discards its copy and
// retries, since recompiling a delegate has no side effects worth
// avoiding.
type delegateCache struct {
	buckets atomic.Pointer[[]atomic.Pointer[[]delegateEntry]]
	mask    uint64
}

func newDelegateCache(size int) *delegateCache {
	n := nextPow2(size)
	c := &delegateCache{mask: uint64(n - 1)}
	b := make([]atomic.Pointer[[]delegateEntry], n)
	c.buckets.Store(&b)
	return c
}

func nextPow2(n int) int {
	if n <= 0 {
		n = defaultCacheBuckets
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func (c *delegateCache) bucketIndex(k delegateKey) uint64 {
	h := hashDelegateKey(k)
	return h & c.mask
}

// hashDelegateKey runs a cheap FNV-1a over the type's string form, then
// mixes in the key value via a type-switch for common key shapes (other
// key types all mix in one fixed constant). Collisions just
// mean extra linear scan within the bucket, never incorrect results —
// entries are still compared by == after the hash narrows the bucket.
func hashDelegateKey(k delegateKey) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211

	h := uint64(offset64)
	for i := 0; i < len(k.typ.String()); i++ {
		h ^= uint64(k.typ.String()[i])
		h *= prime64
	}
	if k.key != nil {
		switch v := k.key.(type) {
		case string:
			for i := 0; i < len(v); i++ {
				h ^= uint64(v[i])
				h *= prime64
			}
		case int:
			h ^= uint64(v)
			h *= prime64
		default:
			h ^= 0x9e3779b97f4a7c15
		}
	}
	return h
}

// Get returns the compiled delegate for k, if cached.
func (c *delegateCache) Get(k delegateKey) (ActivationDelegate, bool) {
	buckets := *c.buckets.Load()
	idx := c.bucketIndex(k)
	entries := buckets[idx].Load()
	if entries == nil {
		return nil, false
	}
	for _, e := range *entries {
		if e.key.typ == k.typ && e.key.key == k.key {
			return e.value, true
		}
	}
	return nil, false
}

// Put publishes d for k via copy-on-write plus atomic CAS, retrying
// against concurrent writers to the same bucket. Returns the delegate
// that ends up published for k — the caller's own d if it won the race,
// or a concurrently-installed one otherwise; both are equivalent
// compilations of the same (type, key), so callers should always use
// the return value rather than assuming their own d was stored.
func (c *delegateCache) Put(k delegateKey, d ActivationDelegate) ActivationDelegate {
	buckets := *c.buckets.Load()
	idx := c.bucketIndex(k)
	slot := &buckets[idx]

	for {
		old := slot.Load()
		if old != nil {
			for _, e := range *old {
				if e.key.typ == k.typ && e.key.key == k.key {
					return e.value
				}
			}
		}
		var next []delegateEntry
		if old != nil {
			next = make([]delegateEntry, len(*old), len(*old)+1)
			copy(next, *old)
		}
		next = append(next, delegateEntry{key: k, value: d})

		if slot.CompareAndSwap(old, &next) {
			return d
		}
		// Lost the race; loop and re-check whether the winner already
		// cached an equivalent delegate for k before retrying.
	}
}
