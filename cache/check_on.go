//go:build cachecheck

package cache

// assertLocked panics when an invariant is broken. Compiled in with
// -tags cachecheck; every mutation pays for a full walk.
func (c *cache[K, V]) assertLocked() {
	if err := c.verifyLocked(); err != nil {
		panic("cache: invariant violated: " + err.Error())
	}
}
