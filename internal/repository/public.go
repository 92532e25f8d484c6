package repository

import (
	"context"
	"errors"

	"stash/internal/models"

	"gorm.io/gorm"
)

// PublicRepository reads profile data for unauthenticated visitors. Every
// read runs inside its own transaction that first pins the requested
// username into the session via set_config, so row-level policies always
// see the parameter before any dependent query executes. The parameter is
// transaction-scoped and never reused across requests.
type PublicRepository interface {
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
	ListCategories(ctx context.Context, username string) ([]models.Category, error)
	ListProducts(ctx context.Context, username string) ([]models.Product, error)
}

type publicRepository struct {
	db *gorm.DB
}

// NewPublicRepository creates a new public read repository
func NewPublicRepository(db *gorm.DB) PublicRepository {
	return &publicRepository{db: db}
}

// withViewer runs fn in a transaction with app.request_username set for its
// duration. The config call is issued fresh on every invocation; stale
// parameters from a previous request can never leak into fn's queries.
func (r *publicRepository) withViewer(ctx context.Context, username string, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT set_config('app.request_username', ?, true)", username).Error; err != nil {
			return err
		}
		return fn(tx)
	})
}

func (r *publicRepository) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := r.withViewer(ctx, username, func(tx *gorm.DB) error {
		return tx.First(&profile, "username = ?", username).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *publicRepository) ListCategories(ctx context.Context, username string) ([]models.Category, error) {
	var categories []models.Category
	err := r.withViewer(ctx, username, func(tx *gorm.DB) error {
		return tx.Model(&models.Category{}).
			Joins("JOIN profiles ON profiles.user_id = categories.user_id").
			Where("profiles.username = ?", username).
			Order("categories.created_at ASC").
			Find(&categories).Error
	})
	return categories, err
}

func (r *publicRepository) ListProducts(ctx context.Context, username string) ([]models.Product, error) {
	var products []models.Product
	err := r.withViewer(ctx, username, func(tx *gorm.DB) error {
		return tx.Model(&models.Product{}).
			Joins("JOIN profiles ON profiles.user_id = products.user_id").
			Where("profiles.username = ?", username).
			Order("products.position ASC, products.created_at ASC").
			Find(&products).Error
	})
	return products, err
}
