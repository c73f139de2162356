package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen lets the request through when Redis errors.
	FailOpen FailPolicy = iota
	// FailClosed answers 503 when Redis errors.
	FailClosed
)

// ErrRateLimitStore is returned when the Redis counter could not be updated.
var ErrRateLimitStore = errors.New("rate limit store unavailable")

// redisLimitTimeout bounds each Redis round trip of the limiter.
const redisLimitTimeout = 250 * time.Millisecond

// localSweepInterval is the minimum time between sweeps of idle local buckets.
const localSweepInterval = time.Minute

type localBucket struct {
	lim    *rate.Limiter
	window time.Duration
	seen   time.Time
}

// localLimiters backs rate limiting with token buckets when no Redis client is configured.
var localLimiters = struct {
	sync.Mutex
	buckets map[string]*localBucket
	swept   time.Time
}{buckets: make(map[string]*localBucket)}

var localNow = time.Now

func rateLimitDisabled() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit reports whether id may hit resource again within window.
// Rate limiting is skipped in test and development environments.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, window time.Duration) (bool, error) {
	if rateLimitDisabled() {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	if rdb == nil {
		return allowLocal(key, limit, window), nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisLimitTimeout)
	defer cancel()

	cnt, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRateLimitStore, err)
	}
	if cnt == 1 {
		rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

func allowLocal(key string, limit int, window time.Duration) bool {
	now := localNow()

	localLimiters.Lock()
	b, ok := localLimiters.buckets[key]
	if !ok {
		if now.Sub(localLimiters.swept) >= localSweepInterval {
			sweepLocalLocked(now)
			localLimiters.swept = now
		}
		b = &localBucket{
			lim:    rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			window: window,
		}
		localLimiters.buckets[key] = b
	}
	b.seen = now
	localLimiters.Unlock()

	return b.lim.Allow()
}

// sweepLocalLocked drops buckets idle for longer than their window. Such a
// bucket has refilled completely, so a new one behaves the same.
func sweepLocalLocked(now time.Time) {
	for key, b := range localLimiters.buckets {
		if now.Sub(b.seen) > b.window {
			delete(localLimiters.buckets, key)
		}
	}
}

// RateLimit enforces limit requests per window, keyed by user id when
// authenticated and by remote IP otherwise. Redis failures fail open.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit failure policy.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = "ip:" + c.IP()
		}

		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, err := CheckRateLimit(c.UserContext(), rdb, resource, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit fail-closed",
					slog.String("resource", resource),
					slog.String("error", err.Error()),
				)
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			RateLimitRejections.WithLabelValues(resource).Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "rate limit exceeded",
			})
		}
		return c.Next()
	}
}
