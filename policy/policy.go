// Package policy defines the contract between the cache and its eviction
// strategies.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/IvanBrykalov/evictcache/internal/arena"
)

// ErrUnknownKind is returned by ParseKind for unsupported policy names.
var ErrUnknownKind = errors.New("policy: unknown kind")

// Kind selects an eviction strategy. It is fixed when the cache is built:
// the strategies keep incompatible bookkeeping.
type Kind string

const (
	// LRU evicts the entry that was touched least recently.
	LRU Kind = "lru"
	// LFU evicts the entry with the fewest accesses; among equally frequent
	// entries the least recently touched one goes first.
	LFU Kind = "lfu"
)

// Kinds lists the supported strategies.
func Kinds() []Kind { return []Kind{LRU, LFU} }

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case LRU, LFU:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Set implements pflag.Value so a Kind can be bound to a CLI flag.
func (k *Kind) Set(s string) error {
	v, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Type implements pflag.Value.
func (k *Kind) Type() string { return "policy" }

// Evictor is a cache-local eviction strategy bound to the cache's arena.
// Entries are identified by arena handles; the cache owns the key index.
//
// Concurrency: every method is invoked with the cache lock held.
//
// Semantics:
//   - OnInsert is called once for a freshly allocated node.
//   - OnAccess is called on Get hits and on Put of an existing key.
//   - OnRemove detaches the node before the cache frees it (explicit
//     Remove and eviction alike).
//   - Victim picks the node to evict. It must only be called when Len() > 0;
//     calling it on an empty evictor panics.
type Evictor[K comparable, V any] interface {
	OnInsert(h arena.Handle)
	OnAccess(h arena.Handle)
	OnRemove(h arena.Handle)
	Victim() arena.Handle

	// Len returns the number of tracked entries.
	Len() int
	// Walk visits tracked entries in eviction order (next victim first)
	// until fn returns false.
	Walk(fn func(h arena.Handle) bool)
	// Verify checks the evictor's internal invariants.
	Verify() error
}
