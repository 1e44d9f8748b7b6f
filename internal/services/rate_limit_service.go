package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/staynest/booking-backend/internal/config"
)

// tokenBucketScript refills and takes one token atomically.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + (intervals * interval_ms)
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// BucketResult is the outcome of taking one token
type BucketResult struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// TokenBucket takes one token from the bucket stored under key
type TokenBucket interface {
	Take(ctx context.Context, key string, now time.Time) (BucketResult, error)
}

// RedisTokenBucket keeps bucket state in redis hashes
type RedisTokenBucket struct {
	client   redis.Scripter
	capacity int
	interval time.Duration
	ttl      time.Duration
}

// NewRedisTokenBucket creates a bucket holding cfg.Requests tokens that
// refills completely over cfg.WindowSeconds
func NewRedisTokenBucket(client redis.Scripter, cfg config.RateLimitConfig) *RedisTokenBucket {
	window := time.Duration(cfg.WindowSeconds) * time.Second
	interval := window / time.Duration(cfg.Requests)
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return &RedisTokenBucket{
		client:   client,
		capacity: cfg.Requests,
		interval: interval,
		ttl:      2 * window,
	}
}

// Take runs the bucket script for key
func (b *RedisTokenBucket) Take(ctx context.Context, key string, now time.Time) (BucketResult, error) {
	vals, err := tokenBucketScript.Run(ctx, b.client, []string{key},
		now.UnixMilli(),
		b.capacity,
		b.interval.Milliseconds(),
		int64(b.ttl/time.Second),
	).Int64Slice()
	if err != nil {
		return BucketResult{}, fmt.Errorf("token bucket script failed: %w", err)
	}
	if len(vals) != 3 {
		return BucketResult{}, fmt.Errorf("unexpected token bucket result: %v", vals)
	}
	return BucketResult{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

// RateLimitError represents a rate limit exceeded error
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "user" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// RateLimitService throttles write endpoints per user or client IP
type RateLimitService struct {
	bucket TokenBucket
	prefix string
	limit  int
	logger *logrus.Logger
	now    func() time.Time
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(bucket TokenBucket, cfg config.RateLimitConfig, logger *logrus.Logger) *RateLimitService {
	return &RateLimitService{
		bucket: bucket,
		prefix: cfg.Prefix,
		limit:  cfg.Requests,
		logger: logger,
		now:    time.Now,
	}
}

// Limit is the bucket capacity
func (s *RateLimitService) Limit() int {
	return s.limit
}

// Check takes a token for identifier on route. It returns a *RateLimitError
// when the bucket is empty. Redis failures are logged and let the request through.
func (s *RateLimitService) Check(ctx context.Context, identifierType, identifier, route string) (int64, error) {
	key := s.key(identifierType, identifier, route)
	now := s.now()

	res, err := s.bucket.Take(ctx, key, now)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Rate limiter unavailable, allowing request")
		return int64(s.limit), nil
	}

	if !res.Allowed {
		retryAfter := now.Add(res.RetryAfter)
		return 0, &RateLimitError{
			Message:    fmt.Sprintf("Too many requests. Please try again after %s", retryAfter.UTC().Format("15:04:05")),
			RetryAfter: retryAfter,
			Type:       identifierType,
		}
	}
	return res.Remaining, nil
}

func (s *RateLimitService) key(identifierType, identifier, route string) string {
	return s.prefix + ":" + identifierType + ":" + identifier + ":" + route
}

// RetryAfterSeconds rounds the wait up to whole seconds for the Retry-After header
func (e *RateLimitError) RetryAfterSeconds(now time.Time) string {
	d := e.RetryAfter.Sub(now)
	if d <= 0 {
		return "0"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(secs, 10)
}
