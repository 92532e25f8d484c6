package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"stash/internal/models"
	"stash/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEndpoints(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := signupUser(t, app, "maya-makes", "maya@example.com")
	kitchen := createCategory(t, app, token, "Kitchen")

	t.Run("create requires category_id", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/products/", token, fiber.Map{
			"name": "Skillet",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("create and update", func(t *testing.T) {
		id := createProduct(t, app, token, kitchen, "Skillet")

		resp, body := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/products/%d", id), token, fiber.Map{
			"brand":          "Lodge",
			"affiliate_link": "https://example.com/skillet",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var product models.Product
		require.NoError(t, json.Unmarshal(body, &product))
		assert.Equal(t, "Skillet", product.Name)
		assert.Equal(t, "Lodge", product.Brand)
		assert.Equal(t, "https://example.com/skillet", product.AffiliateLink)
	})

	t.Run("cannot touch another user's product", func(t *testing.T) {
		id := createProduct(t, app, token, kitchen, "Knife")
		otherToken := signupUser(t, app, "trail-tested", "sam@example.com")

		resp, _ := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", id), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), otherToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("delete", func(t *testing.T) {
		id := createProduct(t, app, token, kitchen, "Scale")
		resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", id), token, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad id param", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/products/banana", token, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUploadImageEndpoint(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := signupUser(t, app, "maya-makes", "maya@example.com")

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	buildRequest := func(field string, content []byte) *http.Request {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile(field, "skillet.png")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	t.Run("stores the image and returns refs", func(t *testing.T) {
		resp, err := app.Test(buildRequest("image", pngBuf.Bytes()), -1)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var uploaded service.UploadedImage
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
		assert.NotEmpty(t, uploaded.Ref)
		assert.NotEmpty(t, uploaded.WebPRef)
		assert.Equal(t, 64, uploaded.Width)
		assert.Equal(t, 64, uploaded.Height)
	})

	t.Run("wrong field name", func(t *testing.T) {
		resp, err := app.Test(buildRequest("file", pngBuf.Bytes()), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non-image payload", func(t *testing.T) {
		resp, err := app.Test(buildRequest("image", []byte("definitely not an image")), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
