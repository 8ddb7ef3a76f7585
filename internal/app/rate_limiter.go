package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var generationRateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisGenerationRateLimiter implements a distributed fixed-window limiter for
// the generation endpoints using Redis.
type RedisGenerationRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisGenerationRateLimiter(client redis.UniversalClient, prefix string) *RedisGenerationRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "brandforge:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisGenerationRateLimiter{
		client: client,
		prefix: trimmedPrefix,
	}
}

// ConsumeRateLimit counts one request for (scope, subject) and returns the
// running count plus the seconds until the window resets. A disabled limiter
// (nil client, non-positive limit or window) counts nothing.
func (r *RedisGenerationRateLimiter) ConsumeRateLimit(
	ctx context.Context,
	scope string,
	subject string,
	limit int,
	window time.Duration,
) (count int, retryAfterSeconds int, err error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return 0, 0, nil
	}

	normalizedScope := strings.TrimSpace(scope)
	normalizedSubject := strings.TrimSpace(subject)
	if normalizedScope == "" || normalizedSubject == "" {
		return 0, 0, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	key := fmt.Sprintf("%s:%s:%s", r.prefix, normalizedScope, normalizedSubject)
	rawResult, err := generationRateLimitScript.Run(ctx, r.client, []string{key}, windowMs).Result()
	if err != nil {
		return 0, 0, err
	}

	values, ok := rawResult.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis limiter response shape: %T", rawResult)
	}

	currentCount, ok := values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected redis limiter ttl type: %T", values[1])
	}

	retryAfter := int(math.Ceil(float64(ttlMs) / 1000.0))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return int(currentCount), retryAfter, nil
}

// CheckGenerationRateLimit applies the configured per-account limit to one
// generation request. Returns the seconds to wait when the limit is exceeded.
func (s *Service) CheckGenerationRateLimit(ctx context.Context, subject string) (allowed bool, retryAfterSeconds int, err error) {
	if s.rateLimiter == nil || s.generationLimitPerMinute <= 0 {
		return true, 0, nil
	}
	count, retryAfter, err := s.rateLimiter.ConsumeRateLimit(ctx, "generation", subject, s.generationLimitPerMinute, time.Minute)
	if err != nil {
		// Fail open when the limiter backend is unreachable.
		return true, 0, err
	}
	if count > s.generationLimitPerMinute {
		return false, retryAfter, nil
	}
	return true, 0, nil
}
