package cache

import "context"

// Cache is a capacity-bounded, in-memory key/value cache interface.
// All methods are safe for concurrent use by multiple goroutines.
//
// Get, Put and Remove run in amortized O(1): a map lookup plus a constant
// number of handle relinks in the active eviction policy, all under one lock.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag.
	// On hit the entry is promoted according to the policy; a miss leaves
	// the cache untouched.
	Get(k K) (V, bool)

	// Put inserts or updates k→v. Updating counts as an access.
	// Inserting a new key into a full cache evicts the policy's victim first.
	Put(k K, v V)

	// Add inserts k→v only if k is not present.
	// Returns false if the key already exists (no update is performed).
	Add(k K, v V) bool

	// Remove deletes k if present and returns the value it held.
	Remove(k K) (V, bool)

	// Peek returns the value for k without promoting it.
	Peek(k K) (V, bool)

	// Contains reports whether k is resident, without promoting it.
	Contains(k K) bool

	// Keys returns the resident keys in eviction order: the next victim first.
	Keys() []K

	// Purge removes every entry. OnEvict runs for each with EvictPurge.
	Purge()

	// Len returns the number of resident entries.
	Len() int

	// Capacity returns the configured entry limit.
	Capacity() int

	// Stats returns a snapshot of the cache counters.
	Stats() Stats

	// GetOrLoad returns the value for k, loading it via Options.Loader on
	// miss and storing the result. Concurrent loads for the same key are
	// coalesced. Returns ErrNoLoader if no Loader was configured and
	// ErrClosed after Close. Loader errors are returned as is and nothing
	// is stored.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Close marks the cache closed and releases its entries.
	// Later reads miss and writes are ignored. Close is idempotent.
	Close() error
}
