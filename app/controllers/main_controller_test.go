package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
)

func newViewApp(t *testing.T) *fiber.App {
	t.Helper()
	testBillingClient(t, nil)

	return fiber.New(fiber.Config{
		Views: html.New("../../views", ".html"),
	})
}

func getStartPage(t *testing.T, app *fiber.App) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHandleStartLanding(t *testing.T) {
	app := newViewApp(t)
	app.Get("/", HandleStart)

	status, body := getStartPage(t, app)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Aus Methodentext wird Abbildung")
	assert.Contains(t, body, "/login")
	assert.NotContains(t, body, "Wähle deinen Plan")
	assert.NotContains(t, body, "Neues Diagramm")
}

func TestHandleStartPaywall(t *testing.T) {
	app := newViewApp(t)
	app.Get("/",
		withUserContext(usercontext.UserContext{UserID: "u1", Email: "a@b.ch", IsLoggedIn: true}),
		HandleStart)

	status, body := getStartPage(t, app)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Wähle deinen Plan")
	assert.Contains(t, body, "/subscribe/pro")
	assert.Contains(t, body, "/subscribe/enterprise")
	// A logged-in user without a subscription must never see the workspace.
	assert.NotContains(t, body, "Neues Diagramm")
}

func TestHandleStartWorkspace(t *testing.T) {
	app := newViewApp(t)
	app.Get("/",
		withUserContext(usercontext.UserContext{
			UserID:       "u1",
			Email:        "a@b.ch",
			IsLoggedIn:   true,
			IsSubscribed: true,
			Plan:         "pro",
		}),
		HandleStart)

	status, body := getStartPage(t, app)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Neues Diagramm")
	assert.Contains(t, body, `name="source_text"`)
	// The pro plan offers methodology and flowchart but not architecture.
	assert.Contains(t, body, `value="methodology"`)
	assert.Contains(t, body, `value="flowchart"`)
	assert.NotContains(t, body, `value="architecture"`)
}

func TestHandleStartWorkspaceEnterprise(t *testing.T) {
	app := newViewApp(t)
	app.Get("/",
		withUserContext(usercontext.UserContext{
			UserID:       "u1",
			Email:        "a@b.ch",
			IsLoggedIn:   true,
			IsSubscribed: true,
			Plan:         "enterprise",
		}),
		HandleStart)

	status, body := getStartPage(t, app)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `value="architecture"`)
}
