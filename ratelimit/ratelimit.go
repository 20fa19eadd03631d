package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Action names a rate-limited mutation kind. Each action carries its
// own sliding window so a burst of likes cannot starve follows.
type Action string

const (
	ActionPost          Action = "post"
	ActionLike          Action = "like"
	ActionFollow        Action = "follow"
	ActionUpload        Action = "upload"
	ActionProfileUpdate Action = "profile_update"
)

type Limit struct {
	Requests int64
	Window   time.Duration
}

// Limits holds the per-action quotas.
var Limits = map[Action]Limit{
	ActionPost:          {Requests: 5, Window: time.Minute},
	ActionLike:          {Requests: 30, Window: time.Minute},
	ActionFollow:        {Requests: 10, Window: time.Minute},
	ActionUpload:        {Requests: 10, Window: time.Hour},
	ActionProfileUpdate: {Requests: 5, Window: time.Hour},
}

// Limiter gates mutation attempts per actor per action.
type Limiter interface {
	Allow(ctx context.Context, actorKey string, action Action) (bool, error)
}

// RedisLimiter is a sliding-window limiter over a redis sorted set:
// one member per attempt, scored by timestamp, trimmed to the window
// before counting.
type RedisLimiter struct {
	R *redis.Client
}

func NewRedisLimiter(r *redis.Client) *RedisLimiter {
	return &RedisLimiter{R: r}
}

// Trim, count and conditional add run as one script so two requests at
// the quota boundary cannot both pass the count check.
var allowScript = redis.NewScript(`
redis.call("ZREMRANGEBYSCORE", KEYS[1], 0, ARGV[1])
if redis.call("ZCARD", KEYS[1]) >= tonumber(ARGV[2]) then
	return 0
end
redis.call("ZADD", KEYS[1], ARGV[3], ARGV[4])
redis.call("PEXPIRE", KEYS[1], ARGV[5])
return 1
`)

func (l *RedisLimiter) Allow(ctx context.Context, actorKey string, action Action) (bool, error) {
	limit, ok := Limits[action]
	if !ok {
		return false, fmt.Errorf("unknown rate limit action %q", action)
	}

	now := time.Now()
	key := fmt.Sprintf("rl:%s:%s", action, actorKey)

	res, err := allowScript.Run(ctx, l.R, []string{key},
		now.Add(-limit.Window).UnixNano(),
		limit.Requests,
		now.UnixNano(),
		uuid.New().String(),
		limit.Window.Milliseconds(),
	).Int()
	if err != nil {
		return false, err
	}

	return res == 1, nil
}
