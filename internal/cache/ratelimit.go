package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginBucketPrefix = "ratelimit:login:"
	// An idle bucket expires; a missing bucket starts full.
	loginBucketTTL = 2 * time.Minute
)

// RateLimitResult reports one token bucket decision.
type RateLimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// bucketScript refills and takes one token atomically. Times are in
// milliseconds so sub-second refill rates stay accurate.
//
// KEYS[1] bucket key
// ARGV    tokens per minute, capacity, now ms, ttl ms
// returns {allowed, retry_after_ms, remaining}
var bucketScript = redis.NewScript(`
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local tokens = tonumber(state[1]) or capacity
local ts = tonumber(state[2]) or now
if now > ts then
	tokens = math.min(capacity, tokens + (now - ts) * rate / 60000)
end

local allowed = 0
local wait = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
else
	wait = math.ceil((1 - tokens) * 60000 / rate)
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {allowed, wait, math.floor(tokens)}
`)

// CheckLoginRateLimit takes one token from the bucket of a client IP.
// A non-positive rate disables the bucket. Redis failures fail open.
func (c *Cache) CheckLoginRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) (*RateLimitResult, error) {
	now := c.clock()
	if burst <= 0 {
		burst = 1
	}
	if ratePerMinute <= 0 {
		return openResult(now, burst), nil
	}

	reply, err := bucketScript.Run(ctx, c.client,
		[]string{loginKey(ip)},
		ratePerMinute, burst, now.UnixMilli(), loginBucketTTL.Milliseconds(),
	).Int64Slice()
	if err != nil || len(reply) != 3 {
		return openResult(now, burst), nil
	}

	res := &RateLimitResult{
		Allowed:    reply[0] == 1,
		RetryAfter: time.Duration(reply[1]) * time.Millisecond,
		Remaining:  reply[2],
	}
	// ResetAt is when the bucket is full again.
	missing := time.Duration(int64(burst) - res.Remaining)
	res.ResetAt = now.Add(missing * time.Minute / time.Duration(ratePerMinute))
	return res, nil
}

func openResult(now time.Time, burst int) *RateLimitResult {
	return &RateLimitResult{
		Allowed:   true,
		Remaining: int64(burst),
		ResetAt:   now,
	}
}

// loginKey keys the bucket by a truncated hash so raw addresses are not stored.
func loginKey(ip string) string {
	return loginBucketPrefix + hashIP(ip)
}

func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:8])
}
