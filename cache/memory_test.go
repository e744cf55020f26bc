package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jhd3197/linkweaver/engine"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil", func(t *testing.T) {
		m := NewMemory(Config{})
		entry, err := m.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if entry != nil {
			t.Errorf("Get() = %+v, want nil", entry)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		m := NewMemory(Config{})
		want := &engine.CachedRender{HTML: "<p>cached</p>", Report: engine.NewReport()}
		if err := m.Set(ctx, "k", want); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got, err := m.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != want {
			t.Errorf("Get() = %+v, want stored entry", got)
		}
	})

	t.Run("evicts beyond max entries", func(t *testing.T) {
		m := NewMemory(Config{MaxEntries: 4, TTL: time.Minute})
		for i := 0; i < 10; i++ {
			m.Set(ctx, fmt.Sprintf("k%d", i), &engine.CachedRender{HTML: "x"})
		}
		if m.Len() != 4 {
			t.Errorf("Len() = %d, want 4", m.Len())
		}

		entry, _ := m.Get(ctx, "k0")
		if entry != nil {
			t.Error("oldest entry should have been evicted")
		}
		entry, _ = m.Get(ctx, "k9")
		if entry == nil {
			t.Error("newest entry should survive eviction")
		}
	})

	t.Run("purge", func(t *testing.T) {
		m := NewMemory(Config{})
		m.Set(ctx, "k", &engine.CachedRender{HTML: "x"})
		m.Purge()
		if m.Len() != 0 {
			t.Errorf("Len() after purge = %d, want 0", m.Len())
		}
	})
}
