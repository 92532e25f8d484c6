package repository

import (
	"context"

	"stash/internal/cache"
	"stash/internal/models"

	"gorm.io/gorm"
)

// invalidateStashCaches drops both the owner view and the public page caches
// after a catalogue write. The public page is cached under the username, one
// lookup away from the user id; if the profile cannot be resolved the owner
// key is still dropped and the public copy ages out on its TTL.
func invalidateStashCaches(ctx context.Context, db *gorm.DB, userID uint) {
	cache.InvalidateStash(ctx, userID)

	var username string
	err := db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Pluck("username", &username).Error
	if err == nil && username != "" {
		cache.InvalidatePublicStash(ctx, username)
	}
}
