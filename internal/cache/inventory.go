package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	PostKeyPrefix         = "post:%s"
	PostCommentsKeyPrefix = "post:%d:comments"
	PostLikesKeyPrefix    = "post:%d:likes"
	PostListKeyPrefix     = "posts:published:%d:%d"
)

const (
	UserTTL         = 5 * time.Minute
	PostTTL         = 10 * time.Minute
	PostListTTL     = 2 * time.Minute
	PostCommentsTTL = 1 * time.Minute
	PostLikesTTL    = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func PostCommentsKey(postID uint) string {
	return fmt.Sprintf(PostCommentsKeyPrefix, postID)
}

func PostLikesKey(postID uint) string {
	return fmt.Sprintf(PostLikesKeyPrefix, postID)
}

func PostListKey(limit, offset int) string {
	return fmt.Sprintf(PostListKeyPrefix, limit, offset)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops the cached post, its comment thread and its like count.
// The slug may be empty when the caller only knows the ID.
func InvalidatePost(ctx context.Context, postID uint, slug string) {
	if slug != "" {
		Invalidate(ctx, PostKey(slug))
	}
	Invalidate(ctx, PostCommentsKey(postID))
	Invalidate(ctx, PostLikesKey(postID))
	InvalidatePostList(ctx)
}

// InvalidatePostList drops every cached page of the published post list.
func InvalidatePostList(ctx context.Context) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, "posts:published:*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}
