package server

import (
	"stash/internal/models"
	"stash/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateProduct handles POST /api/products
// @Summary Add a product to a category
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,brand=string,image_url=string,affiliate_link=string,category_id=int} true "Product fields"
// @Success 201 {object} models.Product
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /products [post]
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name"`
		Brand         string `json:"brand"`
		ImageURL      string `json:"image_url"`
		AffiliateLink string `json:"affiliate_link"`
		CategoryID    uint   `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.CategoryID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("category_id is required"))
	}

	product, err := s.productService.CreateProduct(c.Context(), service.CreateProductInput{
		UserID:        currentUserID(c),
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Brand:         req.Brand,
		ImageURL:      req.ImageURL,
		AffiliateLink: req.AffiliateLink,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// GetProduct handles GET /api/products/:id
// @Summary Get one of your products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} models.Product
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /products/{id} [get]
func (s *Server) GetProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	product, err := s.productService.GetProduct(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(product)
}

// UpdateProduct handles PUT /api/products/:id
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body object{name=string,brand=string,image_url=string,affiliate_link=string,category_id=int} true "Fields to update"
// @Success 200 {object} models.Product
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /products/{id} [put]
func (s *Server) UpdateProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name          string `json:"name"`
		Brand         string `json:"brand"`
		ImageURL      string `json:"image_url"`
		AffiliateLink string `json:"affiliate_link"`
		CategoryID    *uint  `json:"category_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	product, err := s.productService.UpdateProduct(c.Context(), service.UpdateProductInput{
		UserID:        currentUserID(c),
		ProductID:     id,
		Name:          req.Name,
		Brand:         req.Brand,
		ImageURL:      req.ImageURL,
		AffiliateLink: req.AffiliateLink,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(product)
}

// DeleteProduct handles DELETE /api/products/:id
// @Summary Delete a product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /products/{id} [delete]
func (s *Server) DeleteProduct(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.productService.DeleteProduct(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}
