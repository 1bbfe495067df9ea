package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected", JWTMiddleware(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"subject": c.Locals("subject"),
			"role":    c.Locals("role"),
		})
	})
	return app
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newProtectedApp()

	token, err := GenerateJWT("admin@hospital.test", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestJWTMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJWTMalformedHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJWTWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateJWT("admin@hospital.test", "admin")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "other-secret")
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}

func TestDetermineLogLevel(t *testing.T) {
	assert.Equal(t, "success", determineLogLevel(201))
	assert.Equal(t, "warning", determineLogLevel(404))
	assert.Equal(t, "error", determineLogLevel(500))
	assert.Equal(t, "info", determineLogLevel(301))
}

func TestFilterSensitiveData(t *testing.T) {
	filtered := filterSensitiveData(`{"email":"a@b.c","password":"hunter2"}`)
	assert.Contains(t, filtered, "[FILTERED]")
	assert.NotContains(t, filtered, "hunter2")

	// Non-JSON bodies pass through untouched apart from truncation
	assert.Equal(t, "plain text", filterSensitiveData("plain text"))
}
