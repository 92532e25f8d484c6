package server

import (
	"stash/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
// @Summary List own categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryService.ListCategories(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}

// CreateCategory handles POST /api/categories
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string} true "Category name"
// @Success 201 {object} models.Category
// @Failure 400 {object} object{error=string}
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	category, err := s.categoryService.CreateCategory(c.Context(), currentUserID(c), req.Name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// DeleteCategory handles DELETE /api/categories/:id
// @Summary Delete a category and its products
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /categories/{id} [delete]
func (s *Server) DeleteCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.categoryService.DeleteCategory(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// GetCategoryProducts handles GET /api/categories/:id/products
// @Summary List a category's products in display order
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {array} models.Product
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /categories/{id}/products [get]
func (s *Server) GetCategoryProducts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	products, err := s.productService.ListByCategory(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(products)
}

// ReorderCategory handles PUT /api/categories/:id/order
// @Summary Reorder a category's products
// @Description Persist a new ordering. Either list every product id in the category exactly once in the desired display order, or send a single product_id plus to_index to move one product.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body object{product_ids=[]int,product_id=int,to_index=int} true "Ordered product ids, or a single move"
// @Success 200 {array} models.Product
// @Failure 400 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /categories/{id}/order [put]
func (s *Server) ReorderCategory(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ProductIDs []uint `json:"product_ids"`
		ProductID  uint   `json:"product_id"`
		ToIndex    *int   `json:"to_index"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var products []models.Product
	var svcErr error
	if len(req.ProductIDs) == 0 && req.ProductID != 0 && req.ToIndex != nil {
		products, svcErr = s.productService.MoveProduct(c.Context(), currentUserID(c), id, req.ProductID, *req.ToIndex)
	} else {
		products, svcErr = s.productService.Reorder(c.Context(), currentUserID(c), id, req.ProductIDs)
	}
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}
	return c.JSON(products)
}
