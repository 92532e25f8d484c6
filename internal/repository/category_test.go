package repository

import (
	"context"
	"testing"
	"time"

	"stash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_ListByUserID(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.Category{
		{ID: 1, Name: "Desk Setup", UserID: 1, CreatedAt: base.Add(time.Hour)},
		{ID: 2, Name: "Kitchen", UserID: 1, CreatedAt: base},
		{ID: 3, Name: "Other", UserID: 2, CreatedAt: base},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	categories, err := repo.ListByUserID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Kitchen", categories[0].Name, "oldest first")
	assert.Equal(t, "Desk Setup", categories[1].Name)
}

func TestCategoryRepository_Delete_RemovesProducts(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Category{ID: 1, Name: "Kitchen", UserID: 1}).Error)
	require.NoError(t, db.Create(&models.Category{ID: 2, Name: "Desk", UserID: 1}).Error)
	require.NoError(t, db.Create(&models.Product{ID: 10, Name: "Skillet", CategoryID: 1, UserID: 1, Position: 1}).Error)
	require.NoError(t, db.Create(&models.Product{ID: 11, Name: "Keyboard", CategoryID: 2, UserID: 1, Position: 1}).Error)

	require.NoError(t, repo.Delete(ctx, 1))

	_, err := repo.GetByID(ctx, 1)
	assert.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Where("category_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(0), count, "products go with their category")

	require.NoError(t, db.Model(&models.Product{}).Where("category_id = ?", 2).Count(&count).Error)
	assert.Equal(t, int64(1), count, "other categories are untouched")
}

func TestCategoryRepository_Delete_Missing(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	assert.Error(t, repo.Delete(context.Background(), 99))
}
