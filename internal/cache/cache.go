package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medialens/medialens/internal/config"
)

// Store is an ephemeral TTL cache. Values are stored as JSON so a
// distributed backend can be swapped in without touching analysis logic.
// A read past an entry's expiry is equivalent to absence; writes overwrite.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Get(ctx context.Context, key string, dest any) bool
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
	Close()
}

// New builds the Store selected by configuration. A disabled cache no-ops
// everything, so reads always miss.
func New(cfg *config.Config) (Store, error) {
	if !cfg.CacheEnabled {
		log.Println("cache: disabled by configuration")
		return Disabled{}, nil
	}
	switch cfg.CacheBackend {
	case "redis":
		return NewRedis(cfg.RedisURL)
	case "memory", "":
		return NewMemory(cfg.SweepInterval), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q", cfg.CacheBackend)
	}
}

// ──────────────────── In-memory store ────────────────────

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is the default in-process store. Expiry is evaluated lazily on
// read; a periodic sweep evicts entries that are never read again so
// memory stays bounded.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	sweeper *cron.Cron
}

func NewMemory(sweepInterval time.Duration) *Memory {
	m := &Memory{entries: make(map[string]entry)}
	if sweepInterval > 0 {
		m.sweeper = cron.New()
		spec := fmt.Sprintf("@every %s", sweepInterval)
		if _, err := m.sweeper.AddFunc(spec, m.sweep); err != nil {
			log.Printf("cache: sweep schedule %q rejected: %v", spec, err)
		} else {
			m.sweeper.Start()
		}
	}
	return m
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %q failed: %v", key, err)
		return
	}
	m.mu.Lock()
	m.entries[key] = entry{data: data, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Get(_ context.Context, key string, dest any) bool {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(e.expiresAt) {
		// Lazy deletion: expired entries are removed on first read.
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return false
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		log.Printf("cache: unmarshal %q failed: %v", key, err)
		return false
	}
	return true
}

func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

func (m *Memory) Close() {
	if m.sweeper != nil {
		m.sweeper.Stop()
	}
}

// sweep removes expired entries wholesale. Lazy deletion already covers
// keys that get read; this bounds memory from keys that never do.
func (m *Memory) sweep() {
	now := time.Now()
	m.mu.Lock()
	removed := 0
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
			removed++
		}
	}
	m.mu.Unlock()
	if removed > 0 {
		log.Printf("cache: sweep removed %d expired entries", removed)
	}
}

// Len reports the number of live (non-expired) entries.
func (m *Memory) Len() int {
	now := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// ──────────────────── Disabled store ────────────────────

// Disabled no-ops every operation; reads always miss.
type Disabled struct{}

func (Disabled) Set(context.Context, string, any, time.Duration) {}
func (Disabled) Get(context.Context, string, any) bool { return false }
func (Disabled) Delete(context.Context, string) {}
func (Disabled) Clear(context.Context) {}
func (Disabled) Close() {}
