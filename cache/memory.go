package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jhd3197/linkweaver/engine"
)

// Memory is an in-process render cache backed by a size-bounded expirable
// LRU. Suitable for single-instance deployments; use Redis when several
// renderers share configuration.
type Memory struct {
	lru *expirable.LRU[string, *engine.CachedRender]
}

// NewMemory creates an in-memory render cache.
func NewMemory(config Config) *Memory {
	config = applyDefaults(config)
	return &Memory{
		lru: expirable.NewLRU[string, *engine.CachedRender](config.MaxEntries, nil, config.TTL),
	}
}

// Get returns the entry for key, or nil if absent or expired.
func (m *Memory) Get(ctx context.Context, key string) (*engine.CachedRender, error) {
	entry, ok := m.lru.Get(key)
	if !ok {
		return nil, nil
	}
	return entry, nil
}

// Set stores an entry, evicting the least recently used one when full.
func (m *Memory) Set(ctx context.Context, key string, entry *engine.CachedRender) error {
	m.lru.Add(key, entry)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Purge drops every entry.
func (m *Memory) Purge() {
	m.lru.Purge()
}
