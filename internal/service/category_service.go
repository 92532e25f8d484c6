package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stash/internal/models"
	"stash/internal/repository"
	"stash/internal/storage"

	"gorm.io/gorm"
)

type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	resolver     *storage.Resolver
	logger       *slog.Logger
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	resolver *storage.Resolver,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		resolver:     resolver,
		logger:       logger,
	}
}

const maxCategoryNameLen = 60

func (s *CategoryService) CreateCategory(ctx context.Context, userID uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	if len(name) > maxCategoryNameLen {
		return nil, models.NewValidationError("Category name too long (max 60 characters)")
	}

	category := &models.Category{Name: name, UserID: userID}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, userID uint) ([]models.Category, error) {
	return s.categoryRepo.ListByUserID(ctx, userID)
}

// DeleteCategory removes the category, its products, and their bucket
// objects. Image cleanup happens after the rows are gone and never fails the
// request.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID uint) error {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Category not found")
	}
	if err != nil {
		return err
	}
	if category.UserID != userID {
		return models.NewUnauthorizedError("You can only delete your own categories")
	}

	products, err := s.productRepo.ListByCategoryID(ctx, categoryID)
	if err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, categoryID); err != nil {
		return err
	}

	for _, p := range products {
		if err := s.resolver.DeleteAsset(ctx, p.ImageURL, userID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete product image during category delete",
				slog.Uint64("product_id", uint64(p.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
