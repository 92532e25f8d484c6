// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"stash/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions controls factory behavior.
type SeedOptions struct {
	// SkipBcrypt stores the plain password instead of hashing. Dev fast mode
	// only; logins will not work.
	SkipBcrypt bool
	// MaxDays caps how far back generated created_at values spread.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts SeedOptions
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts SeedOptions) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

var usernameSanitizer = regexp.MustCompile(`[^a-z0-9_-]`)

// fakeUsername derives a valid profile slug from gofakeit output.
func (f *Factory) fakeUsername() string {
	raw := strings.ToLower(gofakeit.Username())
	raw = usernameSanitizer.ReplaceAllString(raw, "")
	if len(raw) < 3 {
		raw = "user"
	}
	if len(raw) > 24 {
		raw = raw[:24]
	}
	return fmt.Sprintf("%s%d", raw, gofakeit.Number(100, 999))
}

// CreateUser constructs and persists a sample user with a profile.
// Optional override functions may modify the generated profile before saving.
func (f *Factory) CreateUser(overrides ...func(*models.Profile)) (*models.User, error) {
	user := &models.User{
		Email: gofakeit.Email(),
	}
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}

	layouts := []models.LayoutStyle{models.LayoutGrid, models.LayoutList}
	profile := &models.Profile{
		UserID:          user.ID,
		Username:        f.fakeUsername(),
		ThemeColor:      gofakeit.HexColor(),
		BackgroundColor: gofakeit.HexColor(),
		LayoutStyle:     layouts[f.rng.Intn(len(layouts))],
	}
	for _, override := range overrides {
		override(profile)
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// CreateCategory persists a category for the user with a spread created_at.
func (f *Factory) CreateCategory(user *models.User, name string) (*models.Category, error) {
	if name == "" {
		name = gofakeit.ProductCategory()
	}
	category := &models.Category{
		Name:      name,
		UserID:    user.ID,
		CreatedAt: f.pastTimestamp(),
	}
	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateProduct persists a product at the given position within the category.
func (f *Factory) CreateProduct(user *models.User, category *models.Category, position int, overrides ...func(*models.Product)) (*models.Product, error) {
	product := &models.Product{
		Name:          gofakeit.ProductName(),
		Brand:         gofakeit.Company(),
		ImageURL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
		AffiliateLink: gofakeit.URL(),
		CategoryID:    category.ID,
		UserID:        user.ID,
		Position:      position,
		CreatedAt:     f.pastTimestamp(),
	}
	for _, override := range overrides {
		override(product)
	}
	if err := f.db.Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (f *Factory) pastTimestamp() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}
