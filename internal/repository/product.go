package repository

import (
	"context"

	"stash/internal/models"

	"gorm.io/gorm"
)

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	// Create inserts the product, assigning position = max(position)+1
	// within its category.
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	ListByUserID(ctx context.Context, userID uint) ([]models.Product, error)
	ListByCategoryID(ctx context.Context, categoryID uint) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	// ReorderBatch persists a complete new ordering for a category in a
	// single transaction, renumbering position to 1..N in list order.
	ReorderBatch(ctx context.Context, userID, categoryID uint, orderedIDs []uint) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", product.CategoryID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPosition).Error; err != nil {
			return err
		}
		product.Position = maxPosition + 1
		return tx.Create(product).Error
	})
	if err == nil {
		invalidateStashCaches(ctx, r.db, product.UserID)
	}
	return err
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListByUserID(ctx context.Context, userID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC, created_at ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) ListByCategoryID(ctx context.Context, categoryID uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("position ASC, created_at ASC").
		Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	err := r.db.WithContext(ctx).Save(product).Error
	if err == nil {
		invalidateStashCaches(ctx, r.db, product.UserID)
	}
	return err
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Product{}, id).Error; err != nil {
		return err
	}
	invalidateStashCaches(ctx, r.db, product.UserID)
	return nil
}

func (r *productRepository) ReorderBatch(ctx context.Context, userID, categoryID uint, orderedIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []uint
		if err := tx.Model(&models.Product{}).
			Where("category_id = ? AND user_id = ?", categoryID, userID).
			Pluck("id", &current).Error; err != nil {
			return err
		}
		if !sameIDSet(current, orderedIDs) {
			return models.NewValidationError("Ordering does not match the category's products")
		}
		for i, id := range orderedIDs {
			if err := tx.Model(&models.Product{}).
				Where("id = ? AND category_id = ? AND user_id = ?", id, categoryID, userID).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	// Invalidate on success AND on failure: a failed reorder must force the
	// client to re-fetch server state and revert its optimistic ordering.
	invalidateStashCaches(ctx, r.db, userID)
	return err
}

// sameIDSet reports whether two id slices contain exactly the same ids,
// ignoring order and rejecting duplicates.
func sameIDSet(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uint]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
