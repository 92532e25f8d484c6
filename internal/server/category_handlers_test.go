package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"stash/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReorderCategoryEndpoint(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := signupUser(t, app, "maya-makes", "maya@example.com")

	kitchen := createCategory(t, app, token, "Kitchen")
	a := createProduct(t, app, token, kitchen, "Skillet")
	b := createProduct(t, app, token, kitchen, "Knife")
	c := createProduct(t, app, token, kitchen, "Scale")

	orderPath := fmt.Sprintf("/api/categories/%d/order", kitchen)

	t.Run("persists and renumbers", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, orderPath, token, fiber.Map{
			"product_ids": []uint{c, a, b},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		require.Len(t, products, 3)
		assert.Equal(t, []uint{c, a, b}, []uint{products[0].ID, products[1].ID, products[2].ID})
		assert.Equal(t, []int{1, 2, 3}, []int{products[0].Position, products[1].Position, products[2].Position})
	})

	t.Run("single move shifts the rest", func(t *testing.T) {
		// Current order from the previous subtest: c, a, b.
		resp, body := doJSON(t, app, http.MethodPut, orderPath, token, fiber.Map{
			"product_id": b,
			"to_index":   0,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var products []models.Product
		require.NoError(t, json.Unmarshal(body, &products))
		require.Len(t, products, 3)
		assert.Equal(t, []uint{b, c, a}, []uint{products[0].ID, products[1].ID, products[2].ID})
		assert.Equal(t, []int{1, 2, 3}, []int{products[0].Position, products[1].Position, products[2].Position})

		// Restore the full-list order so later subtests see a known state.
		resp, _ = doJSON(t, app, http.MethodPut, orderPath, token, fiber.Map{
			"product_ids": []uint{c, a, b},
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("incomplete ordering is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, orderPath, token, fiber.Map{
			"product_ids": []uint{a, b},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("empty ordering is rejected", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, orderPath, token, fiber.Map{
			"product_ids": []uint{},
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("someone else's category", func(t *testing.T) {
		otherToken := signupUser(t, app, "trail-tested", "sam@example.com")
		resp, _ := doJSON(t, app, http.MethodPut, orderPath, otherToken, fiber.Map{
			"product_ids": []uint{c, a, b},
		})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown category", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, "/api/categories/999/order", token, fiber.Map{
			"product_ids": []uint{a},
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCategoryProductsEndpoint(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := signupUser(t, app, "maya-makes", "maya@example.com")

	kitchen := createCategory(t, app, token, "Kitchen")
	first := createProduct(t, app, token, kitchen, "Skillet")
	second := createProduct(t, app, token, kitchen, "Knife")

	resp, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/categories/%d/products", kitchen), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var products []models.Product
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 2)
	assert.Equal(t, first, products[0].ID, "creation order is the default display order")
	assert.Equal(t, second, products[1].ID)
}

func TestDeleteCategoryEndpoint(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := signupUser(t, app, "maya-makes", "maya@example.com")

	kitchen := createCategory(t, app, token, "Kitchen")
	product := createProduct(t, app, token, kitchen, "Skillet")

	resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/categories/%d", kitchen), token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", product), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "products go with their category")

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/categories/%d", kitchen), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
