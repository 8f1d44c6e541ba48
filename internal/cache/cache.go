package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Ping(ctx context.Context) error

	// Sessions: a session record existing in the cache is what makes an
	// access token valid; deleting it is how logout revokes.
	SetSession(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, bool, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID) error

	// Active team: the selected team per user, so the choice survives
	// client reloads.
	SetActiveTeam(ctx context.Context, userID, teamID uuid.UUID) error
	GetActiveTeam(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error)
	DeleteActiveTeam(ctx context.Context, userID uuid.UUID) error

	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) SetSession(ctx context.Context, sessionID, userID uuid.UUID, ttl time.Duration) error {
	return c.client.Set(ctx, SessionKey(sessionID), userID.String(), ttl).Err()
}

func (c *RedisCache) GetSession(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, SessionKey(sessionID)).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

func (c *RedisCache) DeleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return c.client.Del(ctx, SessionKey(sessionID)).Err()
}

func (c *RedisCache) SetActiveTeam(ctx context.Context, userID, teamID uuid.UUID) error {
	return c.client.Set(ctx, ActiveTeamKey(userID), teamID.String(), 0).Err()
}

func (c *RedisCache) GetActiveTeam(ctx context.Context, userID uuid.UUID) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, ActiveTeamKey(userID)).Result()
	if err == redis.Nil {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	teamID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, err
	}
	return teamID, true, nil
}

func (c *RedisCache) DeleteActiveTeam(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, ActiveTeamKey(userID)).Err()
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
