package seed

import (
	_ "embed"
	"fmt"
	"log"

	"stash/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures describes curated demo profiles loaded from fixtures.yaml. Unlike
// the random factory output these are stable across runs, so screenshots and
// manual testing always see the same pages.
type Fixtures struct {
	Profiles []FixtureProfile `yaml:"profiles"`
}

type FixtureProfile struct {
	Username        string            `yaml:"username"`
	Email           string            `yaml:"email"`
	ThemeColor      string            `yaml:"theme_color"`
	BackgroundColor string            `yaml:"background_color"`
	LayoutStyle     string            `yaml:"layout_style"`
	Categories      []FixtureCategory `yaml:"categories"`
}

type FixtureCategory struct {
	Name     string           `yaml:"name"`
	Products []FixtureProduct `yaml:"products"`
}

type FixtureProduct struct {
	Name          string `yaml:"name"`
	Brand         string `yaml:"brand"`
	ImageURL      string `yaml:"image_url"`
	AffiliateLink string `yaml:"affiliate_link"`
}

// LoadFixtures parses the embedded fixture file.
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	return &f, nil
}

// ApplyFixtures creates the curated demo profiles. Existing usernames are
// skipped so the command stays re-runnable.
func (s *Seeder) ApplyFixtures() error {
	fixtures, err := LoadFixtures()
	if err != nil {
		return err
	}

	for _, fp := range fixtures.Profiles {
		var count int64
		if err := s.db.Model(&models.Profile{}).Where("username = ?", fp.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Printf("fixture profile %q already exists, skipping", fp.Username)
			continue
		}
		if err := s.createFixtureProfile(fp); err != nil {
			return fmt.Errorf("fixture profile %q: %w", fp.Username, err)
		}
	}
	return nil
}

func (s *Seeder) createFixtureProfile(fp FixtureProfile) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{Email: fp.Email, Password: string(hashed)}
	if err := s.db.Create(user).Error; err != nil {
		return err
	}

	layout := models.LayoutStyle(fp.LayoutStyle)
	if !layout.Valid() {
		layout = models.LayoutGrid
	}
	profile := &models.Profile{
		UserID:          user.ID,
		Username:        fp.Username,
		ThemeColor:      fp.ThemeColor,
		BackgroundColor: fp.BackgroundColor,
		LayoutStyle:     layout,
	}
	if err := s.db.Create(profile).Error; err != nil {
		return err
	}

	for _, fc := range fp.Categories {
		category := &models.Category{Name: fc.Name, UserID: user.ID}
		if err := s.db.Create(category).Error; err != nil {
			return err
		}
		for i, p := range fc.Products {
			product := &models.Product{
				Name:          p.Name,
				Brand:         p.Brand,
				ImageURL:      p.ImageURL,
				AffiliateLink: p.AffiliateLink,
				CategoryID:    category.ID,
				UserID:        user.ID,
				Position:      i + 1,
			}
			if err := s.db.Create(product).Error; err != nil {
				return err
			}
		}
	}
	log.Printf("created fixture profile %q with %d categories", fp.Username, len(fp.Categories))
	return nil
}
