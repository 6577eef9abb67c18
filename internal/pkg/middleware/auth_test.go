package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	icuser "github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
)

func localsSetter(userCtx icuser.UserContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", userCtx)
		c.Locals(icuser.KeyFromProtected, userCtx.IsLoggedIn)
		return c.Next()
	}
}

func okHandler(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", localsSetter(icuser.UserContext{}), RequireAuth, okHandler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestRequireAuthPassesLoggedIn(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", localsSetter(icuser.UserContext{IsLoggedIn: true}), RequireAuth, okHandler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireSubscription(t *testing.T) {
	tests := []struct {
		name         string
		userCtx      icuser.UserContext
		wantStatus   int
		wantLocation string
	}{
		{"anonymous", icuser.UserContext{}, fiber.StatusSeeOther, "/login"},
		{"logged in without subscription", icuser.UserContext{IsLoggedIn: true}, fiber.StatusSeeOther, "/"},
		{"subscriber", icuser.UserContext{IsLoggedIn: true, IsSubscribed: true, Plan: "pro"}, fiber.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/workspace", localsSetter(tt.userCtx), RequireSubscription, okHandler)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/workspace", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, resp.Header.Get("Location"))
			}
		})
	}
}

func TestRequireAPISessionAuthReturnsJSON401(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/figures", localsSetter(icuser.UserContext{}), RequireAPISessionAuth, okHandler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/figures", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestRequireAPISubscriptionReturns402(t *testing.T) {
	app := fiber.New()
	app.Post("/api/v1/figures", localsSetter(icuser.UserContext{IsLoggedIn: true}), RequireAPISubscription, okHandler)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/figures", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
}
