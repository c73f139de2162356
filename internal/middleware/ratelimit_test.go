package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_EnvironmentBypass(t *testing.T) {
	for _, env := range []string{"test", "development", "stress"} {
		t.Run(env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)

			for i := 0; i < 5; i++ {
				allowed, err := CheckRateLimit(context.Background(), nil, "bypass", "1", 1, time.Minute)
				require.NoError(t, err)
				assert.True(t, allowed)
			}
		})
	}
}

func TestCheckRateLimit_Redis(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "create_post", "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "create_post", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.True(t, mr.Exists("rl:create_post:user:1"))
	assert.Equal(t, time.Minute, mr.TTL("rl:create_post:user:1"))

	mr.FastForward(time.Minute + time.Second)
	allowed, err = CheckRateLimit(ctx, rdb, "create_post", "user:1", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_LocalFallback(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	allowed, err := CheckRateLimit(context.Background(), nil, "local_fallback", "ip:10.0.0.1", 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckRateLimit(context.Background(), nil, "local_fallback", "ip:10.0.0.1", 2, time.Hour)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckRateLimit(context.Background(), nil, "local_fallback", "ip:10.0.0.1", 2, time.Hour)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRateLimitWithPolicy_StoreFailure(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	tests := []struct {
		name       string
		policy     FailPolicy
		wantStatus int
	}{
		{"fail open passes request", FailOpen, fiber.StatusOK},
		{"fail closed rejects request", FailClosed, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{
				Addr:        mr.Addr(),
				MaxRetries:  -1,
				DialTimeout: 100 * time.Millisecond,
			})
			t.Cleanup(func() { _ = rdb.Close() })
			mr.Close()

			app := fiber.New()
			app.Get("/", RateLimitWithPolicy(rdb, 1, time.Minute, tt.policy, "store_failure"), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCheckRateLimit_LocalBucketsEvicted(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	localNow = func() time.Time { return now }
	t.Cleanup(func() { localNow = time.Now })
	localLimiters.Lock()
	localLimiters.buckets = make(map[string]*localBucket)
	localLimiters.swept = time.Time{}
	localLimiters.Unlock()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		allowed, err := CheckRateLimit(context.Background(), nil, "evict", "ip:"+ip, 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	now = now.Add(30 * time.Second)
	_, err := CheckRateLimit(context.Background(), nil, "evict", "ip:10.0.0.1", 5, time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = CheckRateLimit(context.Background(), nil, "evict", "ip:10.0.0.9", 5, time.Minute)
	require.NoError(t, err)

	localLimiters.Lock()
	defer localLimiters.Unlock()
	assert.Len(t, localLimiters.buckets, 1)
	assert.Contains(t, localLimiters.buckets, "rl:evict:ip:10.0.0.9")
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, rdb := newTestRedis(t)

	app := fiber.New()
	app.Post("/comments", RateLimit(rdb, 2, time.Minute, "create_comment"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/comments", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}, statuses)
}
