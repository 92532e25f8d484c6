package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stash/internal/config"
	"stash/internal/middleware"
	"stash/internal/models"
	"stash/internal/repository"
	"stash/internal/service"
	"stash/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Category{},
		&models.Product{},
		&models.ProfileView{},
	))
	return db
}

// sqlitePublicRepo mirrors the production public reads without the
// PostgreSQL-only session parameter, so handler tests can run on sqlite.
type sqlitePublicRepo struct {
	db *gorm.DB
}

func (r *sqlitePublicRepo) GetProfile(_ context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.First(&profile, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *sqlitePublicRepo) ListCategories(_ context.Context, username string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Model(&models.Category{}).
		Joins("JOIN profiles ON profiles.user_id = categories.user_id").
		Where("profiles.username = ?", username).
		Order("categories.created_at ASC").
		Find(&categories).Error
	return categories, err
}

func (r *sqlitePublicRepo) ListProducts(_ context.Context, username string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Model(&models.Product{}).
		Joins("JOIN profiles ON profiles.user_id = products.user_id").
		Where("profiles.username = ?", username).
		Order("products.position ASC, products.created_at ASC").
		Find(&products).Error
	return products, err
}

// newTestServer wires a Server against sqlite and local buckets, skipping
// the Prometheus middleware so repeated construction in tests does not
// re-register collectors.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db := setupServerTestDB(t)
	dir := t.TempDir()
	cfg := &config.Config{
		JWTSecret:       "test-secret-for-handler-tests",
		Port:            "8460",
		Env:             "test",
		StorageDriver:   "local",
		StorageLocalDir: dir,
	}
	middleware.InitMiddleware(cfg)
	private, err := storage.NewLocalBucket("product-images", dir, "http://localhost:8460/media")
	require.NoError(t, err)
	public, err := storage.NewLocalBucket("public-profiles", dir, "http://localhost:8460/media")
	require.NoError(t, err)
	resolver := storage.NewResolver(private, public, middleware.Logger)

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	viewRepo := repository.NewProfileViewRepository(db)
	publicRepo := &sqlitePublicRepo{db: db}

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		viewRepo:    viewRepo,
		resolver:    resolver,
	}
	s.profileService = service.NewProfileService(profileRepo)
	s.categoryService = service.NewCategoryService(categoryRepo, productRepo, resolver, middleware.Logger)
	s.productService = service.NewProductService(productRepo, categoryRepo, resolver, middleware.Logger)
	s.stashService = service.NewStashService(categoryRepo, productRepo)
	s.publicService = service.NewPublicService(publicRepo, viewRepo, resolver, middleware.Logger)
	s.imageService = service.NewImageService(private, cfg)

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, data
}

// signupUser registers an account through the API and returns its token.
func signupUser(t *testing.T, app *fiber.App, username, email string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": username,
		"email":    email,
		"password": "CorrectHorse42",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"categoryId", "category ID"},
		{"productId", "product ID"},
		{"something", "something"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			if got := humanizeParam(tt.param); got != tt.expected {
				t.Errorf("humanizeParam(%q) = %q, want %q", tt.param, got, tt.expected)
			}
		})
	}
}
