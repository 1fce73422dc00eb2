package nasc

import (
	"fmt"
	"sync"
)

// Disposable is implemented by services that need cleanup when the
// scope that created them is disposed.
//
// Example:
//
//	type Connection struct{ conn *sql.DB }
//	func (c *Connection) Dispose() error { return c.conn.Close() }
type Disposable interface {
	Dispose() error
}

// disposalScope tracks instances created within one Scope and releases
// them in reverse creation order when the scope disposes. Add is safe
// to call concurrently with other Adds; Dispose is not safe to call
// concurrently with itself or with Add (matches the single disposing
// goroutine a scope's owner is expected to be).
type disposalScope struct {
	mu       sync.Mutex
	order    []interface{}
	disposed bool
}

func newDisposalScope() *disposalScope {
	return &disposalScope{}
}

// Add records instance for LIFO disposal if it implements Disposable.
// Non-disposable instances are ignored; recording them would only cost
// memory for no benefit.
func (d *disposalScope) Add(instance interface{}) {
	if _, ok := instance.(Disposable); !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed {
		return
	}
	d.order = append(d.order, instance)
}

// IsDisposed reports whether Dispose has already run.
func (d *disposalScope) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}

// Dispose calls Dispose on every tracked instance in reverse creation
// order, idempotently: a second call returns nil without re-running
// anything. Errors from individual instances are collected, not
// short-circuited, so one broken Dispose doesn't prevent the rest from
// running.
func (d *disposalScope) Dispose() error {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return nil
	}
	order := d.order
	d.order = nil
	d.disposed = true
	d.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		disposable := order[i].(Disposable)
		if err := disposable.Dispose(); err != nil {
			errs = append(errs, fmt.Errorf("dispose %T: %w", order[i], err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("scope disposal encountered %d error(s): %v", len(errs), errs)
	}
	return nil
}
