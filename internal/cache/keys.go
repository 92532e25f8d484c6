package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	StashKeyPrefix       = "stash:%d"
	PublicStashKeyPrefix = "public-stash:%s"
	ProfileKeyPrefix     = "profile:%s"
)

const (
	StashTTL       = 5 * time.Minute
	PublicStashTTL = time.Minute
	ProfileTTL     = 10 * time.Minute
)

// StashKey is the cache key for a user's assembled stash (owner view).
func StashKey(userID uint) string {
	return fmt.Sprintf(StashKeyPrefix, userID)
}

// PublicStashKey is the cache key for the resolved public stash of a username.
func PublicStashKey(username string) string {
	return fmt.Sprintf(PublicStashKeyPrefix, username)
}

// ProfileKey is the cache key for a public profile row.
func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

// Invalidate removes a single key. Safe to call with a nil client.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateStash drops the owner-view stash cache for a user.
func InvalidateStash(ctx context.Context, userID uint) {
	Invalidate(ctx, StashKey(userID))
}

// InvalidatePublicStash drops the public-view caches for a username.
func InvalidatePublicStash(ctx context.Context, username string) {
	if username == "" {
		return
	}
	Invalidate(ctx, PublicStashKey(username))
	Invalidate(ctx, ProfileKey(username))
}
