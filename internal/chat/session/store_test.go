package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfood-service/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestStore(capacity int, idleTTL time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(capacity, idleTTL)
	store.now = clock.Now
	return store, clock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// ==========================
// Context Tests
// ==========================

func TestContext_AppendTurn_IncrementsCounter(t *testing.T) {
	sc := newContext("s-1", "user@example.com", time.Now())

	sc.AppendTurn(models.SpeakerUser, "hello")
	sc.AppendTurn(models.SpeakerAssistant, "hi there")

	assert.Equal(t, 2, sc.TurnCount)
	require.Len(t, sc.Turns, 2)
	assert.Equal(t, models.SpeakerUser, sc.Turns[0].Speaker)
	assert.Equal(t, "hello", sc.Turns[0].Text)
	assert.Equal(t, models.SpeakerAssistant, sc.Turns[1].Speaker)
}

func TestContext_Reset_ClearsEverything(t *testing.T) {
	sc := newContext("s-1", "", time.Now())
	sc.AppendTurn(models.SpeakerUser, "hello")
	sc.CurrentTopic = "korean food"
	sc.HasRecommendations = true
	sc.LastRecommendations = []models.Recommendation{{FoodName: "Bibimbap", PriceMin: 9000, PriceMax: 11000}}

	sc.Reset()

	assert.Empty(t, sc.Turns)
	assert.Zero(t, sc.TurnCount)
	assert.Empty(t, sc.CurrentTopic)
	assert.False(t, sc.HasRecommendations)
	assert.Empty(t, sc.LastRecommendations)
	assert.Equal(t, "s-1", sc.SessionID)
}

func TestContext_RecentTurns_Windowing(t *testing.T) {
	sc := newContext("s-1", "", time.Now())
	for i := 0; i < 5; i++ {
		sc.AppendTurn(models.SpeakerUser, fmt.Sprintf("turn-%d", i))
	}

	recent := sc.RecentTurns(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "turn-3", recent[0].Text)
	assert.Equal(t, "turn-4", recent[1].Text)

	assert.Len(t, sc.RecentTurns(10), 5)
	assert.Len(t, sc.RecentTurns(0), 5)
}

// ==========================
// Memory Store Tests
// ==========================

func TestMemoryStore_GetOrCreate_IsIdempotent(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, "s-1", "user@example.com")
	require.NoError(t, err)

	first.AppendTurn(models.SpeakerUser, "hello")
	require.NoError(t, store.Save(ctx, first))

	second, err := store.GetOrCreate(ctx, "s-1", "user@example.com")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, second.TurnCount)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	store, _ := newTestStore(2, time.Hour)
	ctx := context.Background()

	a, err := store.GetOrCreate(ctx, "s-a", "")
	require.NoError(t, err)
	_, err = store.GetOrCreate(ctx, "s-b", "")
	require.NoError(t, err)

	// Touch s-a so s-b becomes the eviction candidate.
	require.NoError(t, store.Save(ctx, a))

	_, err = store.GetOrCreate(ctx, "s-c", "")
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())

	again, err := store.GetOrCreate(ctx, "s-a", "")
	require.NoError(t, err)
	assert.Same(t, a, again)

	b, err := store.GetOrCreate(ctx, "s-b", "")
	require.NoError(t, err)
	assert.Zero(t, b.TurnCount, "s-b should have been evicted and recreated")
}

func TestMemoryStore_ExpiresIdleSessions(t *testing.T) {
	store, clock := newTestStore(10, 30*time.Minute)
	ctx := context.Background()

	stale, err := store.GetOrCreate(ctx, "s-stale", "")
	require.NoError(t, err)
	stale.AppendTurn(models.SpeakerUser, "hello")

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 0, store.Len())

	fresh, err := store.GetOrCreate(ctx, "s-stale", "")
	require.NoError(t, err)
	assert.NotSame(t, stale, fresh)
	assert.Zero(t, fresh.TurnCount)
}

func TestMemoryStore_SaveRefreshesIdleClock(t *testing.T) {
	store, clock := newTestStore(10, 30*time.Minute)
	ctx := context.Background()

	sc, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	require.NoError(t, store.Save(ctx, sc))

	clock.Advance(20 * time.Minute)
	assert.Equal(t, 1, store.Len(), "save 20 minutes ago should keep the session alive")
}

func TestMemoryStore_Delete(t *testing.T) {
	store, _ := newTestStore(10, time.Hour)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s-1"))
	assert.Equal(t, 0, store.Len())

	// Deleting a missing key is a no-op.
	assert.NoError(t, store.Delete(ctx, "s-1"))
}

// ==========================
// Keyed Lock Tests
// ==========================

func TestKeyedLock_SerializesSameKey(t *testing.T) {
	lock := NewKeyedLock()
	store, _ := newTestStore(10, time.Hour)
	ctx := context.Background()

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock.Lock("s-1")
			defer lock.Unlock("s-1")

			sc, err := store.GetOrCreate(ctx, "s-1", "")
			assert.NoError(t, err)
			sc.AppendTurn(models.SpeakerUser, "hello")
			sc.AppendTurn(models.SpeakerAssistant, "hi")
			assert.NoError(t, store.Save(ctx, sc))
		}()
	}
	wg.Wait()

	sc, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)
	assert.Equal(t, 2*turns, sc.TurnCount)
	assert.Len(t, sc.Turns, 2*turns)
}

func TestKeyedLock_IndependentKeysDoNotBlock(t *testing.T) {
	lock := NewKeyedLock()

	lock.Lock("s-1")
	done := make(chan struct{})
	go func() {
		lock.Lock("s-2")
		lock.Unlock("s-2")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock on a different key blocked")
	}
	lock.Unlock("s-1")
}
