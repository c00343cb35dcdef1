package rediscache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/user-directory-api/internal/domain/entity"
	"github.com/oksasatya/user-directory-api/pkg/helpers"
)

// UserCache is a read-through cache of users keyed by id. Entries are
// JSON blobs with a fixed TTL; a hit never refreshes its own TTL.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func cacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}

// Get returns the cached user and whether the key was present.
func (c *UserCache) Get(ctx context.Context, id int64) (*entity.User, bool, error) {
	var u entity.User
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, cacheKey(id), &u)
	if err != nil || !ok {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *UserCache) Set(ctx context.Context, u *entity.User) error {
	return helpers.RedisSetJSON(ctx, c.rdb, cacheKey(u.ID), u, c.ttl)
}

func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	return helpers.RedisDel(ctx, c.rdb, cacheKey(id))
}
