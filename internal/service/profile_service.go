package service

import (
	"context"
	"errors"
	"strings"

	"stash/internal/cache"
	"stash/internal/models"
	"stash/internal/repository"
	"stash/internal/validation"

	"gorm.io/gorm"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

type UpdateProfileInput struct {
	UserID          uint
	Username        string
	ThemeColor      string
	BackgroundColor string
	LayoutStyle     string
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Profile not found")
	}
	return profile, err
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.GetProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	oldUsername := profile.Username

	if in.Username != "" {
		username := strings.ToLower(strings.TrimSpace(in.Username))
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.Username = username
	}
	if in.ThemeColor != "" {
		if err := validation.ValidateHexColor(in.ThemeColor); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.ThemeColor = in.ThemeColor
	}
	if in.BackgroundColor != "" {
		if err := validation.ValidateHexColor(in.BackgroundColor); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		profile.BackgroundColor = in.BackgroundColor
	}
	if in.LayoutStyle != "" {
		style := models.LayoutStyle(in.LayoutStyle)
		if !style.Valid() {
			return nil, models.NewValidationError("Layout style must be grid or list")
		}
		profile.LayoutStyle = style
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	// Repository Update invalidates the new username's keys; a rename also
	// leaves the old public page cached until its TTL, so drop it here.
	if oldUsername != profile.Username {
		cache.InvalidatePublicStash(ctx, oldUsername)
	}
	return profile, nil
}
