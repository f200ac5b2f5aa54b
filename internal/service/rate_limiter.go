package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a sliding-window-log limiter kept in Redis sorted sets
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter allowing limit requests per window and key
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// RateLimitResult is the outcome of one Allow call
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limit returns the configured request budget per window
func (r *RateLimiter) Limit() int {
	return r.limit
}

// slidingWindowScript trims the window, then either records the request or reports the oldest
// entry. Running it as one script keeps concurrent callers from both passing the limit.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local used = redis.call('ZCARD', key)
if used >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local oldestAt = -1
	if #oldest > 0 then
		oldestAt = tonumber(oldest[2])
	end
	return {0, used, oldestAt}
end
redis.call('ZADD', key, now, ARGV[5])
redis.call('PEXPIRE', key, ARGV[4])
return {1, used, 0}
`)

// Allow records a request for key. A rejected request is not recorded; RetryAfter says when
// the oldest entry leaves the window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	now := r.now()
	windowStart := now.Add(-r.window)
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	reply, err := slidingWindowScript.Run(ctx, r.client, []string{redisKey},
		now.UnixMilli(),
		strconv.FormatInt(windowStart.UnixMilli(), 10),
		r.limit,
		(r.window + time.Minute).Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to apply rate limit window: %w", err)
	}
	if len(reply) != 3 {
		return RateLimitResult{}, fmt.Errorf("unexpected rate limit reply %v", reply)
	}

	used := int(reply[1])
	if reply[0] == 0 {
		retryAfter := r.window
		if oldestAt := reply[2]; oldestAt >= 0 {
			retryAfter = r.window - now.Sub(time.UnixMilli(oldestAt))
		}
		return RateLimitResult{RetryAfter: retryAfter}, nil
	}

	return RateLimitResult{Allowed: true, Remaining: r.limit - used - 1}, nil
}
