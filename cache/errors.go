package cache

import "errors"

var (
	// ErrInvalidCapacity is returned by New when Options.Capacity is not
	// in (0, MaxCapacity].
	ErrInvalidCapacity = errors.New("cache: invalid capacity")

	// ErrUnknownPolicy is returned by New when Options.Policy names no known strategy.
	ErrUnknownPolicy = errors.New("cache: unknown eviction policy")

	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")

	// ErrClosed is returned by GetOrLoad after Close.
	ErrClosed = errors.New("cache: closed")
)
