package registry

import "sort"

// Collection is the ordered list of strategies registered for exactly
// one type (or one open-generic family). Ordering is priority
// descending, then insertion order ascending as a tiebreak.
type Collection struct {
	strategies []*Strategy
}

func newCollection() *Collection {
	return &Collection{}
}

// withAdded returns a new Collection containing c's strategies plus s,
// re-sorted. c is left untouched so published snapshots stay immutable.
func (c *Collection) withAdded(s *Strategy) *Collection {
	next := make([]*Strategy, 0, len(c.strategies)+1)
	next = append(next, c.strategies...)
	next = append(next, s)
	sort.SliceStable(next, func(i, j int) bool {
		if next[i].Priority != next[j].Priority {
			return next[i].Priority > next[j].Priority
		}
		return next[i].insertionOrder < next[j].insertionOrder
	})
	return &Collection{strategies: next}
}

// All returns every strategy in priority order.
func (c *Collection) All() []*Strategy {
	out := make([]*Strategy, len(c.strategies))
	copy(out, c.strategies)
	return out
}

// Filtered returns strategies matching key (nil selects keyless
// strategies only) and passing filter (nil accepts everything).
func (c *Collection) Filtered(key interface{}, filter func(*Strategy) bool) []*Strategy {
	var out []*Strategy
	for _, s := range c.strategies {
		if key == nil {
			if s.Key != nil {
				continue
			}
		} else if s.Key != key {
			continue
		}
		if filter != nil && !filter(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Best returns the highest-priority strategy matching key and filter,
// or nil.
func (c *Collection) Best(key interface{}, filter func(*Strategy) bool) *Strategy {
	matches := c.Filtered(key, filter)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}
