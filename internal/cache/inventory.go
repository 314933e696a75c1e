package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mosaic/internal/observability"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// Aside is the cache-aside read path: serve dest from Redis when present,
// otherwise run load (which must fill dest) and store the result with the
// given TTL. A nil client degrades to a plain load.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, load func() error) error {
	if client != nil {
		ctx, span := observability.TraceRedisOperation(ctx, "get")
		raw, err := client.Get(ctx, key).Bytes()
		span.End()
		if err == nil {
			if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
				return nil
			}
			// Corrupt entry; drop it and fall through to the loader.
			Invalidate(ctx, key)
		}
	}

	if err := load(); err != nil {
		return err
	}

	if client != nil {
		if raw, err := json.Marshal(dest); err == nil {
			client.Set(ctx, key, raw, ttl)
		}
	}
	return nil
}
