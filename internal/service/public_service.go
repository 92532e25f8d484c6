package service

import (
	"context"
	"log/slog"
	"strings"

	"stash/internal/cache"
	"stash/internal/middleware"
	"stash/internal/models"
	"stash/internal/repository"
	"stash/internal/storage"
)

// PublicStash is the full payload for a visitor-facing profile page.
type PublicStash struct {
	Profile   models.Profile  `json:"profile"`
	ViewCount int64           `json:"view_count"`
	Groups    []CategoryGroup `json:"groups"`
}

type PublicService struct {
	publicRepo repository.PublicRepository
	viewRepo   repository.ProfileViewRepository
	resolver   *storage.Resolver
	logger     *slog.Logger

	// notifyViews, when set, is called after each successful page build with
	// the fresh counter so live viewers can update.
	notifyViews func(ctx context.Context, username string, count int64)
}

func NewPublicService(
	publicRepo repository.PublicRepository,
	viewRepo repository.ProfileViewRepository,
	resolver *storage.Resolver,
	logger *slog.Logger,
) *PublicService {
	return &PublicService{
		publicRepo: publicRepo,
		viewRepo:   viewRepo,
		resolver:   resolver,
		logger:     logger,
	}
}

// SetViewNotifier wires the live view-count broadcast.
func (s *PublicService) SetViewNotifier(fn func(ctx context.Context, username string, count int64)) {
	s.notifyViews = fn
}

// GetPublicStash builds the public page for a username: profile settings,
// the assembled product collections with resolved image URLs, and the view
// counter. The counter increment is fire-and-forget; the page is served even
// when it fails, and the read-back happens regardless so the number shown is
// whatever the database holds right now.
func (s *PublicService) GetPublicStash(ctx context.Context, username string) (*PublicStash, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}

	page, err := s.loadPage(ctx, username)
	if err != nil {
		return nil, err
	}

	profileID := page.Profile.UserID
	if err := s.viewRepo.Increment(ctx, profileID); err != nil {
		middleware.ProfileViews.WithLabelValues("error").Inc()
		s.logger.WarnContext(ctx, "failed to increment profile views",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
	} else {
		middleware.ProfileViews.WithLabelValues("ok").Inc()
	}

	count, err := s.viewRepo.Get(ctx, profileID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to read profile views",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		count = 0
	}
	page.ViewCount = count

	if s.notifyViews != nil {
		s.notifyViews(ctx, username, count)
	}
	return page, nil
}

// loadPage serves the cacheable part of the page (profile + groups). The
// view counter is deliberately excluded from the cached value so it moves on
// every visit.
func (s *PublicService) loadPage(ctx context.Context, username string) (*PublicStash, error) {
	var page PublicStash
	err := cache.Aside(ctx, cache.PublicStashKey(username), &page, cache.PublicStashTTL, func() error {
		built, err := s.buildPage(ctx, username)
		if err != nil {
			return err
		}
		page = *built
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *PublicService) buildPage(ctx context.Context, username string) (*PublicStash, error) {
	profile, err := s.publicRepo.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}

	categories, err := s.publicRepo.ListCategories(ctx, username)
	if err != nil {
		return nil, err
	}
	products, err := s.publicRepo.ListProducts(ctx, username)
	if err != nil {
		return nil, err
	}

	for i := range products {
		products[i].ImageURL = s.resolver.ResolvePublicURL(ctx, products[i].ImageURL, profile.UserID)
	}

	return &PublicStash{
		Profile: *profile,
		Groups:  AssembleCollections(categories, products),
	}, nil
}
