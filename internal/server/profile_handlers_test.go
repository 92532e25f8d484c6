package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"stash/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileEndpoints(t *testing.T) {
	t.Parallel()
	_, app := newTestServer(t)
	token := signupUser(t, app, "maya-makes", "maya@example.com")

	t.Run("get own profile", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodGet, "/api/profiles/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var profile models.Profile
		require.NoError(t, json.Unmarshal(body, &profile))
		assert.Equal(t, "maya-makes", profile.Username)
		assert.Equal(t, "#6B4E9B", profile.ThemeColor, "defaults applied on signup")
		assert.Equal(t, models.LayoutGrid, profile.LayoutStyle)
	})

	t.Run("update theme and layout", func(t *testing.T) {
		resp, body := doJSON(t, app, http.MethodPut, "/api/profiles/me", token, fiber.Map{
			"theme_color":  "#FF8800",
			"layout_style": "list",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

		var profile models.Profile
		require.NoError(t, json.Unmarshal(body, &profile))
		assert.Equal(t, "#FF8800", profile.ThemeColor)
		assert.Equal(t, models.LayoutList, profile.LayoutStyle)
		assert.Equal(t, "maya-makes", profile.Username, "unset fields untouched")
	})

	t.Run("rename updates public page lookup", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, "/api/profiles/me", token, fiber.Map{
			"username": "Maya-Crafts",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/stash/maya-crafts", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, http.MethodGet, "/api/stash/maya-makes", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "old username no longer resolves")
	})

	t.Run("rename onto a taken username", func(t *testing.T) {
		signupUser(t, app, "trail-tested", "sam@example.com")
		resp, _ := doJSON(t, app, http.MethodPut, "/api/profiles/me", token, fiber.Map{
			"username": "trail-tested",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("invalid layout", func(t *testing.T) {
		resp, _ := doJSON(t, app, http.MethodPut, "/api/profiles/me", token, fiber.Map{
			"layout_style": "masonry",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
