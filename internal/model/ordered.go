package model

// counter is an increment-only string counter that remembers the order in
// which keys were first seen.
type counter struct {
	index   map[string]int
	entries []Count
}

func newCounter() counter {
	return counter{index: make(map[string]int)}
}

// incr adds delta to key, inserting it with zero first, and returns the new value.
func (c *counter) incr(key string, delta int) int {
	i, ok := c.index[key]
	if !ok {
		i = len(c.entries)
		c.index[key] = i
		c.entries = append(c.entries, Count{Key: key})
	}
	c.entries[i].Count += delta
	return c.entries[i].Count
}

func (c *counter) get(key string) int {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Count
	}
	return 0
}

func (c *counter) len() int {
	return len(c.entries)
}

func (c *counter) list() []Count {
	out := make([]Count, len(c.entries))
	copy(out, c.entries)
	return out
}

// orderedSet is an append-only string set that keeps insertion order.
type orderedSet struct {
	index map[string]struct{}
	items []string
}

func newOrderedSet() orderedSet {
	return orderedSet{index: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet) has(v string) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet) len() int {
	return len(s.items)
}

func (s *orderedSet) list() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
