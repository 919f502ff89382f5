package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitIPPrefix is the Redis key prefix for IP rate limits.
	rateLimitIPPrefix = "cpfgate:ratelimit:ip:"
	// rateLimitIPTTL is the TTL for IP rate limit keys.
	rateLimitIPTTL = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// IPLimiter decides whether a client IP may make another request.
type IPLimiter interface {
	AllowIP(ctx context.Context, ip string) (*RateLimitResult, error)
}

// tokenBucketScript is a Lua script implementing the token bucket algorithm.
// It's atomic and handles token refill and consumption in a single operation.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- max tokens (bucket capacity)
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// RedisIPLimiter shares per-IP token buckets between replicas through Redis.
type RedisIPLimiter struct {
	cache *Cache
	rps   float64
	burst int
}

// NewRedisIPLimiter creates a limiter refilling rps tokens per second up to burst.
func NewRedisIPLimiter(c *Cache, rps float64, burst int) *RedisIPLimiter {
	return &RedisIPLimiter{cache: c, rps: rps, burst: burst}
}

// AllowIP consumes one token for ip. The IP is hashed before it becomes a key.
func (l *RedisIPLimiter) AllowIP(ctx context.Context, ip string) (*RateLimitResult, error) {
	key := rateLimitIPPrefix + hashIP(ip)
	now := time.Now()

	result, err := tokenBucketScript.Run(ctx, l.cache.client,
		[]string{key},
		l.rps, l.burst, now.Unix(), int(rateLimitIPTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket script: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected token bucket reply of length %d", len(result))
	}

	return &RateLimitResult{
		Allowed:    result[0] == 1,
		Limit:      l.burst,
		Remaining:  result[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / l.rps)),
		RetryAfter: time.Duration(result[1]) * time.Second,
	}, nil
}

// hashIP creates a truncated SHA256 hash of an IP address.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
