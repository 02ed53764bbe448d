package kernel

import "sync"

// pairKey is the canonical (min(i,j), max(i,j)) spring key, plus the
// spring's stiffness — two springs sharing endpoints but not stiffness
// are distinguishable, though the data model only ever stores one spring
// per canonical pair in practice.
type pairKey struct {
	lo, hi int
	k      float64
}

// Cache memoizes element stiffness matrices across one optimizer run.
// Node positions never change once the initial grid is built — only
// nodes disappear — so a cache entry remains valid for the entire run
// even across removals; it is never invalidated, only grown.
//
// Cache is owned by exactly one optimizer run (see structure package
// doc for the single-owner concurrency model) and is read-mostly after
// warmup; a plain sync.Mutex is sufficient since writes only occur on
// first access of a given key.
type Cache struct {
	mu sync.Mutex
	m  map[pairKey]Ke
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{m: make(map[pairKey]Ke)}
}

// Get returns the memoized Ke for (i, j, k, positions), computing and
// storing it on first access. positions must be stable for the lifetime
// of the Cache (guaranteed by the "nodes never move" contract above).
func (c *Cache) Get(i, j int, xi, zi, xj, zj, k float64) (Ke, error) {
	lo, hi := i, j
	if lo > hi {
		lo, hi = hi, lo
	}
	key := pairKey{lo: lo, hi: hi, k: k}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ke, ok := c.m[key]; ok {
		return ke, nil
	}
	ke, err := ElementStiffness(xi, zi, xj, zj, k)
	if err != nil {
		return Ke{}, err
	}
	c.m[key] = ke
	return ke, nil
}

// Len reports the number of distinct cached element matrices.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
