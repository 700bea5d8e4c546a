package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfood-service/internal/models"
)

func newRedisTestStore(t *testing.T, idleTTL time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, idleTTL), mr
}

func TestRedisStore_RoundTripsContext(t *testing.T) {
	store, _ := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	sc, err := store.GetOrCreate(ctx, "s-1", "user@example.com")
	require.NoError(t, err)

	sc.AppendTurn(models.SpeakerUser, "hello")
	sc.AppendTurn(models.SpeakerAssistant, "hi there")
	sc.HasRecommendations = true
	sc.LastRecommendations = []models.Recommendation{{FoodName: "Bibimbap", PriceMin: 9000, PriceMax: 11000}}
	require.NoError(t, store.Save(ctx, sc))

	loaded, err := store.GetOrCreate(ctx, "s-1", "user@example.com")
	require.NoError(t, err)

	assert.Equal(t, "s-1", loaded.SessionID)
	assert.Equal(t, "user@example.com", loaded.UserID)
	assert.Equal(t, 2, loaded.TurnCount)
	require.Len(t, loaded.Turns, 2)
	assert.Equal(t, "hello", loaded.Turns[0].Text)
	assert.True(t, loaded.HasRecommendations)
	require.Len(t, loaded.LastRecommendations, 1)
	assert.Equal(t, "Bibimbap", loaded.LastRecommendations[0].FoodName)
}

func TestRedisStore_SetsNativeTTL(t *testing.T) {
	store, mr := newRedisTestStore(t, 30*time.Minute)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)

	ttl := mr.TTL(redisKey("s-1"))
	assert.Equal(t, 30*time.Minute, ttl)
}

func TestRedisStore_ExpiredSessionStartsFresh(t *testing.T) {
	store, mr := newRedisTestStore(t, 30*time.Minute)
	ctx := context.Background()

	sc, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)
	sc.AppendTurn(models.SpeakerUser, "hello")
	require.NoError(t, store.Save(ctx, sc))

	mr.FastForward(31 * time.Minute)

	fresh, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)
	assert.Zero(t, fresh.TurnCount)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.GetOrCreate(ctx, "s-1", "")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s-1"))
	assert.False(t, mr.Exists(redisKey("s-1")))
}

func TestRedisStore_CorruptPayloadSurfacesError(t *testing.T) {
	store, mr := newRedisTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set(redisKey("s-1"), "{not-json"))

	_, err := store.GetOrCreate(ctx, "s-1", "")
	assert.ErrorContains(t, err, "decode session")
}
