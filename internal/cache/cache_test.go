package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			calls++
			*dest = cachedPost{ID: 5, Title: "Kata"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, Aside(ctx, PostKey(5), &first, PostTTL, fetch(&first)))
	assert.Equal(t, "Kata", first.Title)
	assert.True(t, mr.Exists("post:5"))

	var second cachedPost
	require.NoError(t, Aside(ctx, PostKey(5), &second, PostTTL, fetch(&second)))
	assert.Equal(t, "Kata", second.Title)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := withMiniredis(t)

	var dest cachedPost
	err := Aside(context.Background(), PostKey(9), &dest, PostTTL, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, mr.Exists("post:9"))
}

func TestAside_NoClientFallsThrough(t *testing.T) {
	SetClient(nil)

	var dest cachedPost
	calls := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), PostKey(1), &dest, PostTTL, func() error {
			calls++
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidatePost(t *testing.T) {
	mr := withMiniredis(t)
	require.NoError(t, mr.Set(PostKey(3), "{}"))
	require.NoError(t, mr.Set(PostsListKey, "[]"))
	require.NoError(t, mr.Set(PostKey(4), "{}"))

	InvalidatePost(context.Background(), 3)

	assert.False(t, mr.Exists(PostKey(3)))
	assert.False(t, mr.Exists(PostsListKey))
	assert.True(t, mr.Exists(PostKey(4)))
}

func TestInitRedis_Unreachable(t *testing.T) {
	t.Cleanup(func() { SetClient(nil) })
	assert.Nil(t, InitRedis("redis://:@127.0.0.1:1/0"))
	assert.Nil(t, GetClient())
}
