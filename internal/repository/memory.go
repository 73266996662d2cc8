package repository

import (
	"context"
	"sync"
	"time"
)

// MemorySlotCache is the in-process fallback used when Redis is unavailable.
type MemorySlotCache struct {
	entries    sync.Map
	mu         sync.Mutex
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
}

type cacheEntry struct {
	slots     []string
	expiresAt time.Time
}

func NewMemorySlotCache(ttl time.Duration) *MemorySlotCache {
	return &MemorySlotCache{
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
	}
}

func (r *MemorySlotCache) GetOccupied(ctx context.Context, serviceProfileID, date string) ([]string, bool, error) {
	val, ok := r.entries.Load(occupiedKey(serviceProfileID, date))
	if !ok {
		return nil, false, nil
	}
	entry := val.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(occupiedKey(serviceProfileID, date))
		return nil, false, nil
	}
	return entry.slots, true, nil
}

func (r *MemorySlotCache) SetOccupied(ctx context.Context, serviceProfileID, date string, slots []string) error {
	if slots == nil {
		slots = []string{}
	}
	r.entries.Store(occupiedKey(serviceProfileID, date), &cacheEntry{
		slots:     slots,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemorySlotCache) Invalidate(ctx context.Context, serviceProfileID, date string) error {
	r.entries.Delete(occupiedKey(serviceProfileID, date))
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemorySlotCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[key] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}
