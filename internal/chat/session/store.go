// Package session holds conversation contexts between turns.
//
// The store is deliberately bounded: the original design kept every session
// in a process-wide map forever, which leaks under real traffic. Here a
// context is created on first contact, refreshed on every turn, evicted when
// capacity forces out the least recently used session or when it sits idle
// past the TTL, and explicitly removable.
package session

import (
	"container/list"
	"context"
	"sync"
	"time"

	"chatfood-service/internal/common/metrics"
)

// Store is the conversation context store contract.
type Store interface {
	// GetOrCreate returns the existing context for a session key or creates
	// a fresh one. Creation is idempotent.
	GetOrCreate(ctx context.Context, sessionKey, userID string) (*Context, error)
	// Save persists the mutated context and refreshes its lifetime.
	Save(ctx context.Context, sc *Context) error
	// Delete removes a context explicitly.
	Delete(ctx context.Context, sessionKey string) error
}

type memoryEntry struct {
	key string
	ctx *Context
}

// MemoryStore is the default in-process backend: an LRU map with idle-TTL
// expiry. It does not serialize turns for one key; callers hold a KeyedLock
// around a whole turn.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	idleTTL  time.Duration
	items    map[string]*list.Element
	order    *list.List // front = most recently used
	now      func() time.Time
}

func NewMemoryStore(capacity int, idleTTL time.Duration) *MemoryStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryStore{
		capacity: capacity,
		idleTTL:  idleTTL,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, sessionKey, userID string) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if el, ok := s.items[sessionKey]; ok {
		entry := el.Value.(*memoryEntry)
		entry.ctx.LastActivity = now
		s.order.MoveToFront(el)
		return entry.ctx, nil
	}

	sc := newContext(sessionKey, userID, now)
	el := s.order.PushFront(&memoryEntry{key: sessionKey, ctx: sc})
	s.items[sessionKey] = el

	for len(s.items) > s.capacity {
		s.evictOldestLocked()
	}

	metrics.ActiveSessions.Set(float64(len(s.items)))
	return sc, nil
}

func (s *MemoryStore) Save(_ context.Context, sc *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc.LastActivity = s.now()
	if el, ok := s.items[sc.SessionID]; ok {
		s.order.MoveToFront(el)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[sessionKey]; ok {
		s.order.Remove(el)
		delete(s.items, sessionKey)
	}
	metrics.ActiveSessions.Set(float64(len(s.items)))
	return nil
}

// Len reports live contexts, expiring idle ones first.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	return len(s.items)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if s.idleTTL <= 0 {
		return
	}
	for {
		el := s.order.Back()
		if el == nil {
			break
		}
		entry := el.Value.(*memoryEntry)
		if now.Sub(entry.ctx.LastActivity) < s.idleTTL {
			break
		}
		s.order.Remove(el)
		delete(s.items, entry.key)
	}
	metrics.ActiveSessions.Set(float64(len(s.items)))
}

func (s *MemoryStore) evictOldestLocked() {
	el := s.order.Back()
	if el == nil {
		return
	}
	entry := el.Value.(*memoryEntry)
	s.order.Remove(el)
	delete(s.items, entry.key)
}
