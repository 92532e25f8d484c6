package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"stash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Function-field stubs so each test overrides only what it cares about.

type productRepoStub struct {
	createFn           func(ctx context.Context, product *models.Product) error
	getByIDFn          func(ctx context.Context, id uint) (*models.Product, error)
	listByUserIDFn     func(ctx context.Context, userID uint) ([]models.Product, error)
	listByCategoryIDFn func(ctx context.Context, categoryID uint) ([]models.Product, error)
	updateFn           func(ctx context.Context, product *models.Product) error
	deleteFn           func(ctx context.Context, id uint) error
	reorderBatchFn     func(ctx context.Context, userID, categoryID uint, orderedIDs []uint) error
}

func (s *productRepoStub) Create(ctx context.Context, product *models.Product) error {
	return s.createFn(ctx, product)
}

func (s *productRepoStub) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.getByIDFn(ctx, id)
}

func (s *productRepoStub) ListByUserID(ctx context.Context, userID uint) ([]models.Product, error) {
	return s.listByUserIDFn(ctx, userID)
}

func (s *productRepoStub) ListByCategoryID(ctx context.Context, categoryID uint) ([]models.Product, error) {
	return s.listByCategoryIDFn(ctx, categoryID)
}

func (s *productRepoStub) Update(ctx context.Context, product *models.Product) error {
	return s.updateFn(ctx, product)
}

func (s *productRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func (s *productRepoStub) ReorderBatch(ctx context.Context, userID, categoryID uint, orderedIDs []uint) error {
	return s.reorderBatchFn(ctx, userID, categoryID, orderedIDs)
}

func noopProductRepo() *productRepoStub {
	return &productRepoStub{
		createFn: func(_ context.Context, product *models.Product) error {
			product.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, _ uint) (*models.Product, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listByUserIDFn: func(_ context.Context, _ uint) ([]models.Product, error) {
			return nil, nil
		},
		listByCategoryIDFn: func(_ context.Context, _ uint) ([]models.Product, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Product) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		reorderBatchFn: func(_ context.Context, _, _ uint, _ []uint) error {
			return nil
		},
	}
}

type categoryRepoStub struct {
	createFn       func(ctx context.Context, category *models.Category) error
	getByIDFn      func(ctx context.Context, id uint) (*models.Category, error)
	listByUserIDFn func(ctx context.Context, userID uint) ([]models.Category, error)
	deleteFn       func(ctx context.Context, id uint) error
}

func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}

func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}

func (s *categoryRepoStub) ListByUserID(ctx context.Context, userID uint) ([]models.Category, error) {
	return s.listByUserIDFn(ctx, userID)
}

func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

// noopCategoryRepo answers every GetByID with a category owned by user 1.
func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		createFn: func(_ context.Context, category *models.Category) error {
			category.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			return &models.Category{ID: id, Name: "Kitchen", UserID: 1}, nil
		},
		listByUserIDFn: func(_ context.Context, _ uint) ([]models.Category, error) {
			return nil, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

type publicRepoStub struct {
	getProfileFn     func(ctx context.Context, username string) (*models.Profile, error)
	listCategoriesFn func(ctx context.Context, username string) ([]models.Category, error)
	listProductsFn   func(ctx context.Context, username string) ([]models.Product, error)
}

func (s *publicRepoStub) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	return s.getProfileFn(ctx, username)
}

func (s *publicRepoStub) ListCategories(ctx context.Context, username string) ([]models.Category, error) {
	return s.listCategoriesFn(ctx, username)
}

func (s *publicRepoStub) ListProducts(ctx context.Context, username string) ([]models.Product, error) {
	return s.listProductsFn(ctx, username)
}

func noopPublicRepo() *publicRepoStub {
	return &publicRepoStub{
		getProfileFn: func(_ context.Context, username string) (*models.Profile, error) {
			return &models.Profile{UserID: 1, Username: username}, nil
		},
		listCategoriesFn: func(_ context.Context, _ string) ([]models.Category, error) {
			return nil, nil
		},
		listProductsFn: func(_ context.Context, _ string) ([]models.Product, error) {
			return nil, nil
		},
	}
}

type viewRepoStub struct {
	incrementFn func(ctx context.Context, profileID uint) error
	getFn       func(ctx context.Context, profileID uint) (int64, error)
}

func (s *viewRepoStub) Increment(ctx context.Context, profileID uint) error {
	return s.incrementFn(ctx, profileID)
}

func (s *viewRepoStub) Get(ctx context.Context, profileID uint) (int64, error) {
	return s.getFn(ctx, profileID)
}

func noopViewRepo() *viewRepoStub {
	return &viewRepoStub{
		incrementFn: func(_ context.Context, _ uint) error { return nil },
		getFn:       func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

type profileRepoStub struct {
	createFn        func(ctx context.Context, profile *models.Profile) error
	getByUserIDFn   func(ctx context.Context, userID uint) (*models.Profile, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.Profile, error)
	updateFn        func(ctx context.Context, profile *models.Profile) error
}

func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}

func (s *profileRepoStub) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		createFn: func(_ context.Context, _ *models.Profile) error { return nil },
		getByUserIDFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{
				UserID:          userID,
				Username:        "maya-makes",
				ThemeColor:      "#6B4E9B",
				BackgroundColor: "#FFFFFF",
				LayoutStyle:     models.LayoutGrid,
			}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.Profile, error) {
			return nil, gorm.ErrRecordNotFound
		},
		updateFn: func(_ context.Context, _ *models.Profile) error { return nil },
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "VALIDATION_ERROR")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "NOT_FOUND")
}

func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, "UNAUTHORIZED")
}
