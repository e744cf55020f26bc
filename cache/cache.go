// Package cache provides render-cache backends for the engine: an in-process
// LRU and a Redis store. Keys are content fingerprints (engine.CacheKey), so
// invalidation on rule or settings edits happens by revision bump alone;
// stale entries simply stop being addressed and age out.
package cache

import "time"

// Config holds shared cache configuration.
type Config struct {
	// Prefix namespaces keys in shared stores.
	Prefix string
	// TTL bounds how long an entry may serve. Stale entries are unreachable
	// as soon as a revision bumps, so the TTL exists only to reclaim space.
	TTL time.Duration
	// MaxEntries bounds the in-memory backend. Ignored by Redis.
	MaxEntries int
}

// DefaultConfig returns a cache config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:     "linkweaver:render:",
		TTL:        12 * time.Hour,
		MaxEntries: 1024,
	}
}

func applyDefaults(config Config) Config {
	defaults := DefaultConfig()
	if config.Prefix == "" {
		config.Prefix = defaults.Prefix
	}
	if config.TTL == 0 {
		config.TTL = defaults.TTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = defaults.MaxEntries
	}
	return config
}
