package noise

import "sync"

// TableCache holds permutation tables keyed by seed. It is owned by the
// caller (the server keeps one per process); tables are immutable once built
// and safe to share between goroutines.
type TableCache struct {
	tables sync.Map // map[int64]*Table
}

// NewTableCache returns an empty cache.
func NewTableCache() *TableCache {
	return &TableCache{}
}

// Get returns the table for seed, building it on first use.
func (c *TableCache) Get(seed int64) *Table {
	if v, ok := c.tables.Load(seed); ok {
		return v.(*Table)
	}
	actual, _ := c.tables.LoadOrStore(seed, NewTable(seed))
	return actual.(*Table)
}

// Len reports how many seeds have been built.
func (c *TableCache) Len() int {
	n := 0
	c.tables.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
