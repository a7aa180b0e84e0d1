package bucket

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ridergate/internal/ratelimit/models"
)

// slidingWindowScript trims the sorted set to the window, then admits the
// request when there is room. Returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
local count = redis.call("ZCARD", key)
local allowed = 0
if count < limit then
  redis.call("ZADD", key, now, member)
  count = count + 1
  allowed = 1
end
redis.call("PEXPIRE", key, window)
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
local oldestMs = now
if oldest[2] then
  oldestMs = tonumber(oldest[2])
end
return {allowed, count, oldestMs}
`)

// RedisStore is a sliding window limiter shared by every instance.
type RedisStore struct {
	client redis.Scripter
	now    func() time.Time
}

func NewRedisStore(client redis.Scripter) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := s.now()
	windowMs := limit.Window.Milliseconds()
	if windowMs <= 0 {
		windowMs = 1000
	}
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()

	raw, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		now.UnixMilli(), windowMs, limit.Requests, member).Result()
	if err != nil {
		return nil, fmt.Errorf("redis sliding window: %w", err)
	}
	values, ok := raw.([]any)
	if !ok || len(values) != 3 {
		return nil, errors.New("unexpected redis sliding window response")
	}
	allowed, _ := values[0].(int64)
	count, _ := values[1].(int64)
	oldestMs, _ := values[2].(int64)

	resetAt := time.UnixMilli(oldestMs).Add(time.Duration(windowMs) * time.Millisecond)
	res := &models.Result{
		Allowed:   allowed == 1,
		Limit:     limit.Requests,
		Remaining: max(limit.Requests-int(count), 0),
		ResetAt:   resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = models.RetryAfterSeconds(now, resetAt)
	}
	return res, nil
}
