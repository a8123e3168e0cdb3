package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lapak/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppPort:   ":8081",
		DBDriver:  "sqlite",
		DBDSN:     filepath.Join(t.TempDir(), "shop_test.db"),
		JWTSecret: "test_jwt_secret",
	}
}

func TestNewAppWiring(t *testing.T) {
	app, err := NewApp(testConfig(t), nil)
	require.NoError(t, err)
	defer app.Shutdown()

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("CatalogSeededAndBrowsable", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("CartRedirectsAnonymous", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/cart", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/login", resp.Header.Get("Location"))
	})

	t.Run("APIRequiresToken", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSeedIsIdempotentAcrossRestarts(t *testing.T) {
	cfg := testConfig(t)

	countProducts := func(app *fiber.App) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		return strings.Count(string(body), `class="product"`)
	}

	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	first := countProducts(app)
	require.Positive(t, first)
	require.NoError(t, app.Shutdown())

	// A second boot against the same database must not duplicate the
	// catalog.
	app2, err := NewApp(cfg, nil)
	require.NoError(t, err)
	defer app2.Shutdown()

	assert.Equal(t, first, countProducts(app2))
}
