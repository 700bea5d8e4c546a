// internal/profile/cache.go
package profile

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"chatfood-service/internal/common/logger"
	"chatfood-service/internal/models"
)

const cacheKeyPrefix = "profile:"

// CachedSource is a Redis read-through wrapper around a Source. Cache
// failures are logged and fall through to the underlying source; only known
// profiles are cached.
type CachedSource struct {
	source Source
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(source Source, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		redis:  rdb,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{
			"component": "profile-cache",
		}),
	}
}

func (c *CachedSource) FindByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	if email == "" {
		return nil, nil
	}

	cacheKey := cacheKeyPrefix + email
	if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
		var p models.UserProfile
		if uerr := json.Unmarshal([]byte(val), &p); uerr == nil {
			return &p, nil
		}
		c.logger.Warn("corrupt cached profile, refetching", map[string]interface{}{
			"email": email,
		})
	} else if err != redis.Nil {
		c.logger.Warn("profile cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	p, err := c.source.FindByEmail(ctx, email)
	if err != nil || p == nil {
		return p, err
	}

	if data, merr := json.Marshal(p); merr == nil {
		if serr := c.redis.Set(ctx, cacheKey, data, c.ttl).Err(); serr != nil {
			c.logger.Warn("profile cache write failed", map[string]interface{}{
				"error": serr.Error(),
			})
		}
	}
	return p, nil
}
