package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a fixed-window limiter over INCR/EXPIRE. It fails open: when
// redis is unreachable the attempt is allowed rather than locking users out.
type Redis struct {
	client *redis.Client
	limit  int
	period time.Duration
}

func NewRedis(addr string, limit int, period time.Duration) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{client: client, limit: limit, period: period}
}

func (r *Redis) Allow(ctx context.Context, key string) bool {
	count, err := r.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		r.client.Expire(ctx, "ratelimit:"+key, r.period)
	}
	return count <= int64(r.limit)
}
