package cache

import "github.com/IvanBrykalov/evictcache/policy"

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Policy    policy.Kind
	Capacity  int
	Len       int
	Hits      uint64
	Misses    uint64
	Inserts   uint64
	Updates   uint64
	Removes   uint64
	Evictions uint64
}

// HitRate returns hits as a percentage of lookups (0 when nothing was looked up).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
