package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/models"
)

type stubSource struct {
	profile *models.UserProfile
	err     error
	calls   int
}

func (s *stubSource) FindByEmail(_ context.Context, _ string) (*models.UserProfile, error) {
	s.calls++
	return s.profile, s.err
}

func cachedProfile() *models.UserProfile {
	return &models.UserProfile{
		Name:         "Kim Minji",
		Gender:       "female",
		AgeGroup:     "20s",
		Region:       "Seoul",
		PrefCategory: "Korean",
	}
}

func TestCachedSource_MissFetchesAndCaches(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	source := &stubSource{profile: cachedProfile()}
	cache := NewCachedSource(source, rdb, 5*time.Minute, logger.NewZapAdapter(zaptest.NewLogger(t)))

	payload, err := json.Marshal(cachedProfile())
	require.NoError(t, err)

	mock.ExpectGet("profile:minji@example.com").RedisNil()
	mock.ExpectSet("profile:minji@example.com", payload, 5*time.Minute).SetVal("OK")

	p, err := cache.FindByEmail(context.Background(), "minji@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", p.Name)
	assert.Equal(t, 1, source.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSource_HitSkipsSource(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	source := &stubSource{profile: cachedProfile()}
	cache := NewCachedSource(source, rdb, 5*time.Minute, logger.NewZapAdapter(zaptest.NewLogger(t)))

	payload, err := json.Marshal(cachedProfile())
	require.NoError(t, err)
	mock.ExpectGet("profile:minji@example.com").SetVal(string(payload))

	p, err := cache.FindByEmail(context.Background(), "minji@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", p.Name)
	assert.Zero(t, source.calls)
}

func TestCachedSource_CacheFailureFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	source := &stubSource{profile: cachedProfile()}
	cache := NewCachedSource(source, rdb, 5*time.Minute, logger.NewZapAdapter(zaptest.NewLogger(t)))

	payload, err := json.Marshal(cachedProfile())
	require.NoError(t, err)
	mock.ExpectGet("profile:minji@example.com").SetErr(errors.New("redis down"))
	mock.ExpectSet("profile:minji@example.com", payload, 5*time.Minute).SetErr(errors.New("redis down"))

	p, err := cache.FindByEmail(context.Background(), "minji@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", p.Name)
	assert.Equal(t, 1, source.calls)
}

func TestCachedSource_UnknownUserNotCached(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	source := &stubSource{}
	cache := NewCachedSource(source, rdb, 5*time.Minute, logger.NewZapAdapter(zaptest.NewLogger(t)))

	mock.ExpectGet("profile:nobody@example.com").RedisNil()

	p, err := cache.FindByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1, source.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
