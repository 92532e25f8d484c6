package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetMyStash handles GET /api/stash
// @Summary Get own assembled catalogue
// @Description Returns all categories plus products grouped per category in display order
// @Tags stash
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.OwnerStash
// @Router /stash [get]
func (s *Server) GetMyStash(c *fiber.Ctx) error {
	stash, err := s.stashService.GetStash(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stash)
}

// GetPublicStash handles GET /api/stash/:username
// @Summary Get a public profile page
// @Description Returns the profile settings, grouped products with resolved image URLs, and the view counter. Each request counts as one view.
// @Tags stash
// @Produce json
// @Param username path string true "Profile username"
// @Success 200 {object} service.PublicStash
// @Failure 404 {object} object{error=string}
// @Router /stash/{username} [get]
func (s *Server) GetPublicStash(c *fiber.Ctx) error {
	page, err := s.publicService.GetPublicStash(c.Context(), c.Params("username"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}
