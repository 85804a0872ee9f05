package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medialens/medialens/internal/config"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	m.Set(ctx, "k", payload{Name: "a", Count: 3}, time.Minute)

	var got payload
	require.True(t, m.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestMemoryMissingKey(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()

	var got payload
	assert.False(t, m.Get(context.Background(), "absent", &got))
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	m.Set(ctx, "k", payload{Name: "a"}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	var got payload
	assert.False(t, m.Get(ctx, "k", &got), "expired entry must read as absent")
	assert.Equal(t, 0, m.Len(), "lazy deletion should have removed the entry")
}

func TestMemoryOverwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	m.Set(ctx, "k", payload{Count: 1}, time.Minute)
	m.Set(ctx, "k", payload{Count: 2}, time.Minute)

	var got payload
	require.True(t, m.Get(ctx, "k", &got))
	assert.Equal(t, 2, got.Count)
}

func TestMemoryDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	m.Set(ctx, "a", payload{}, time.Minute)
	m.Set(ctx, "b", payload{}, time.Minute)

	m.Delete(ctx, "a")
	var got payload
	assert.False(t, m.Get(ctx, "a", &got))
	assert.True(t, m.Get(ctx, "b", &got))

	m.Clear(ctx)
	assert.False(t, m.Get(ctx, "b", &got))
	assert.Equal(t, 0, m.Len())
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(0)
	defer m.Close()

	m.Set(ctx, "stale", payload{}, 5*time.Millisecond)
	m.Set(ctx, "fresh", payload{}, time.Minute)
	time.Sleep(20 * time.Millisecond)

	m.sweep()

	m.mu.RLock()
	_, stale := m.entries["stale"]
	_, fresh := m.entries["fresh"]
	m.mu.RUnlock()
	assert.False(t, stale, "sweep must evict expired entries without a read")
	assert.True(t, fresh)
}

func TestDisabledAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	d := Disabled{}

	d.Set(ctx, "k", payload{Name: "a"}, time.Minute)

	var got payload
	assert.False(t, d.Get(ctx, "k", &got))
}

func TestNewRespectsConfig(t *testing.T) {
	store, err := New(&config.Config{CacheEnabled: false})
	require.NoError(t, err)
	assert.IsType(t, Disabled{}, store)

	store, err = New(&config.Config{CacheEnabled: true, CacheBackend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)
	store.Close()

	_, err = New(&config.Config{CacheEnabled: true, CacheBackend: "bogus"})
	assert.Error(t, err)
}
