package seed

import (
	"fmt"
	"log"

	"stash/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates demo data creation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, SeedOptions{})}
}

// ClearAll wipes all application tables. Order matters: children first.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.ProfileView{},
		&models.Product{},
		&models.Category{},
		&models.Profile{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", table, err)
		}
	}
	log.Println("database cleared")
	return nil
}

// SeedDemo creates numUsers accounts, each with a small catalogue of
// categories and products. Positions are assigned 1..N in creation order the
// way the application itself would.
func (s *Seeder) SeedDemo(numUsers, categoriesPerUser, productsPerCategory int) ([]*models.User, error) {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		users = append(users, user)

		for c := 0; c < categoriesPerUser; c++ {
			category, err := s.factory.CreateCategory(user, "")
			if err != nil {
				return nil, fmt.Errorf("creating category for user %d: %w", user.ID, err)
			}
			for p := 0; p < productsPerCategory; p++ {
				if _, err := s.factory.CreateProduct(user, category, p+1); err != nil {
					return nil, fmt.Errorf("creating product in category %d: %w", category.ID, err)
				}
			}
		}
	}
	log.Printf("seeded %d users with %d categories each", len(users), categoriesPerUser)
	return users, nil
}
