package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"stash/internal/models"
	"stash/internal/repository"
	"stash/internal/storage"
	"stash/internal/validation"

	"gorm.io/gorm"
)

type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	resolver     *storage.Resolver
	logger       *slog.Logger
}

type CreateProductInput struct {
	UserID        uint
	CategoryID    uint
	Name          string
	Brand         string
	ImageURL      string
	AffiliateLink string
}

type UpdateProductInput struct {
	UserID        uint
	ProductID     uint
	Name          string
	Brand         string
	ImageURL      string
	AffiliateLink string
	CategoryID    *uint
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	resolver *storage.Resolver,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		resolver:     resolver,
		logger:       logger,
	}
}

const maxProductNameLen = 120

func validateProductFields(name, affiliateLink string) error {
	if strings.TrimSpace(name) == "" {
		return models.NewValidationError("Product name is required")
	}
	if len(name) > maxProductNameLen {
		return models.NewValidationError("Product name too long (max 120 characters)")
	}
	if affiliateLink != "" {
		if err := validation.ValidateHTTPURL(affiliateLink); err != nil {
			return models.NewValidationError("Affiliate link must be a valid http(s) URL")
		}
	}
	return nil
}

// ownedCategory loads the category and verifies the caller owns it.
func (s *ProductService) ownedCategory(ctx context.Context, userID, categoryID uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Category not found")
	}
	if err != nil {
		return nil, err
	}
	if category.UserID != userID {
		return nil, models.NewUnauthorizedError("You can only manage your own categories")
	}
	return category, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if err := validateProductFields(in.Name, in.AffiliateLink); err != nil {
		return nil, err
	}
	if _, err := s.ownedCategory(ctx, in.UserID, in.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:          strings.TrimSpace(in.Name),
		Brand:         strings.TrimSpace(in.Brand),
		ImageURL:      in.ImageURL,
		AffiliateLink: in.AffiliateLink,
		CategoryID:    in.CategoryID,
		UserID:        in.UserID,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	// Publishing the image copy is best-effort: the public page degrades to an
	// unresolved image until the next edit republished it.
	if err := s.resolver.PublishAsset(ctx, product.ImageURL, in.UserID); err != nil {
		s.logger.WarnContext(ctx, "failed to publish product image",
			slog.Uint64("product_id", uint64(product.ID)),
			slog.String("error", err.Error()),
		)
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, userID, productID uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Product not found")
	}
	if err != nil {
		return nil, err
	}
	if product.UserID != userID {
		return nil, models.NewUnauthorizedError("You can only view your own products")
	}
	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, in UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, in.UserID, in.ProductID)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if in.Name != "" {
		name = in.Name
	}
	link := product.AffiliateLink
	if in.AffiliateLink != "" {
		link = in.AffiliateLink
	}
	if err := validateProductFields(name, link); err != nil {
		return nil, err
	}

	oldImage := product.ImageURL
	product.Name = strings.TrimSpace(name)
	product.AffiliateLink = link
	if in.Brand != "" {
		product.Brand = strings.TrimSpace(in.Brand)
	}
	if in.ImageURL != "" {
		product.ImageURL = in.ImageURL
	}
	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		if _, err := s.ownedCategory(ctx, in.UserID, *in.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = *in.CategoryID
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	if product.ImageURL != oldImage {
		if err := s.resolver.PublishAsset(ctx, product.ImageURL, in.UserID); err != nil {
			s.logger.WarnContext(ctx, "failed to publish product image",
				slog.Uint64("product_id", uint64(product.ID)),
				slog.String("error", err.Error()),
			)
		}
	}
	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, userID, productID uint) error {
	product, err := s.GetProduct(ctx, userID, productID)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}
	// Orphaned bucket objects are acceptable; the row is already gone.
	if err := s.resolver.DeleteAsset(ctx, product.ImageURL, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete product image",
			slog.Uint64("product_id", uint64(productID)),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (s *ProductService) ListByCategory(ctx context.Context, userID, categoryID uint) ([]models.Product, error) {
	if _, err := s.ownedCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	return s.productRepo.ListByCategoryID(ctx, categoryID)
}

// Reorder persists a complete new ordering for one category and returns the
// products in their new order. Submitting the current order (for example a
// drag dropped back on itself) is a no-op and writes nothing.
func (s *ProductService) Reorder(ctx context.Context, userID, categoryID uint, orderedIDs []uint) ([]models.Product, error) {
	if _, err := s.ownedCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	if len(orderedIDs) == 0 {
		return nil, models.NewValidationError("Ordered product ids are required")
	}

	current, err := s.productRepo.ListByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if unchangedOrder(current, orderedIDs) {
		return current, nil
	}

	if err := s.productRepo.ReorderBatch(ctx, userID, categoryID, orderedIDs); err != nil {
		return nil, err
	}
	return s.productRepo.ListByCategoryID(ctx, categoryID)
}

// MoveProduct moves a single product to a target index within its category
// and persists the resulting order. Moves that change nothing (the product's
// current index, an unknown id, an out-of-range target) write nothing.
func (s *ProductService) MoveProduct(ctx context.Context, userID, categoryID, productID uint, toIndex int) ([]models.Product, error) {
	if _, err := s.ownedCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	current, err := s.productRepo.ListByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, len(current))
	for i, p := range current {
		ids[i] = p.ID
	}

	moved := MoveID(ids, productID, toIndex)
	if unchangedOrder(current, moved) {
		return current, nil
	}

	if err := s.productRepo.ReorderBatch(ctx, userID, categoryID, moved); err != nil {
		return nil, err
	}
	return s.productRepo.ListByCategoryID(ctx, categoryID)
}

func unchangedOrder(current []models.Product, orderedIDs []uint) bool {
	if len(current) != len(orderedIDs) {
		return false
	}
	for i, p := range current {
		if p.ID != orderedIDs[i] {
			return false
		}
	}
	return true
}
