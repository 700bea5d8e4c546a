package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chat:session:"

// RedisStore keeps contexts in Redis so sessions survive restarts and can be
// shared across instances. Idle expiry rides on the native key TTL; every
// read and write refreshes it.
type RedisStore struct {
	rdb     *redis.Client
	idleTTL time.Duration
}

func NewRedisStore(rdb *redis.Client, idleTTL time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, idleTTL: idleTTL}
}

func redisKey(sessionKey string) string {
	return redisKeyPrefix + sessionKey
}

func (s *RedisStore) GetOrCreate(ctx context.Context, sessionKey, userID string) (*Context, error) {
	raw, err := s.rdb.Get(ctx, redisKey(sessionKey)).Result()
	if err == nil {
		var sc Context
		if uerr := json.Unmarshal([]byte(raw), &sc); uerr != nil {
			return nil, fmt.Errorf("decode session %s: %w", sessionKey, uerr)
		}
		sc.LastActivity = time.Now()
		return &sc, nil
	}
	if err != redis.Nil {
		return nil, fmt.Errorf("load session %s: %w", sessionKey, err)
	}

	sc := newContext(sessionKey, userID, time.Now())
	if err := s.write(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *RedisStore) Save(ctx context.Context, sc *Context) error {
	sc.LastActivity = time.Now()
	return s.write(ctx, sc)
}

func (s *RedisStore) Delete(ctx context.Context, sessionKey string) error {
	if err := s.rdb.Del(ctx, redisKey(sessionKey)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionKey, err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, sc *Context) error {
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sc.SessionID, err)
	}
	if err := s.rdb.Set(ctx, redisKey(sc.SessionID), payload, s.idleTTL).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", sc.SessionID, err)
	}
	return nil
}
