package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix = "post:%d"
	PostsListKey  = "posts:all"
)

const (
	PostTTL = 30 * time.Minute
	ListTTL = 2 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// Invalidate deletes keys, ignoring errors.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePost drops a post's detail entry and the post listing.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), PostsListKey)
}

// InvalidatePostsList drops the post listing.
func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}
