package server

import (
	"stash/internal/models"
	"stash/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profiles/me
// @Summary Get own profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 404 {object} object{error=string}
// @Router /profiles/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/profiles/me
// @Summary Update own profile
// @Description Update username, theme colors, or layout style
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,theme_color=string,background_color=string,layout_style=string} true "Profile fields"
// @Success 200 {object} models.Profile
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /profiles/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Username        string `json:"username"`
		ThemeColor      string `json:"theme_color"`
		BackgroundColor string `json:"background_color"`
		LayoutStyle     string `json:"layout_style"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:          currentUserID(c),
		Username:        req.Username,
		ThemeColor:      req.ThemeColor,
		BackgroundColor: req.BackgroundColor,
		LayoutStyle:     req.LayoutStyle,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}
