package service

import (
	"context"

	"stash/internal/cache"
	"stash/internal/models"
	"stash/internal/repository"
)

// OwnerStash is the authenticated dashboard payload. Unlike the public page
// it includes empty categories, since the owner still needs to manage them.
type OwnerStash struct {
	Categories []models.Category `json:"categories"`
	Groups     []CategoryGroup   `json:"groups"`
}

type StashService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewStashService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *StashService {
	return &StashService{categoryRepo: categoryRepo, productRepo: productRepo}
}

// GetStash assembles the owner's full catalogue, cache-aside. Repositories
// invalidate the key on every write, so a hit is always current.
func (s *StashService) GetStash(ctx context.Context, userID uint) (*OwnerStash, error) {
	var stash OwnerStash
	err := cache.Aside(ctx, cache.StashKey(userID), &stash, cache.StashTTL, func() error {
		categories, err := s.categoryRepo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		products, err := s.productRepo.ListByUserID(ctx, userID)
		if err != nil {
			return err
		}
		stash = OwnerStash{
			Categories: categories,
			Groups:     AssembleCollections(categories, products),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stash, nil
}
