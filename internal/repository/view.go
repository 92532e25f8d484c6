package repository

import (
	"context"
	"errors"

	"stash/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileViewRepository defines the interface for view counter operations
type ProfileViewRepository interface {
	// Increment bumps the counter for the profile, creating the row on
	// first view. Callers treat failures as non-fatal.
	Increment(ctx context.Context, profileID uint) error
	// Get returns the current counter; 0 when the profile was never viewed.
	Get(ctx context.Context, profileID uint) (int64, error)
}

type profileViewRepository struct {
	db *gorm.DB
}

// NewProfileViewRepository creates a new view counter repository
func NewProfileViewRepository(db *gorm.DB) ProfileViewRepository {
	return &profileViewRepository{db: db}
}

func (r *profileViewRepository) Increment(ctx context.Context, profileID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"view_count": gorm.Expr("profile_views.view_count + 1")}),
		}).
		Create(&models.ProfileView{ProfileID: profileID, ViewCount: 1}).Error
}

func (r *profileViewRepository) Get(ctx context.Context, profileID uint) (int64, error) {
	var view models.ProfileView
	err := r.db.WithContext(ctx).First(&view, "profile_id = ?", profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return view.ViewCount, nil
}
