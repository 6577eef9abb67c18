package router

import (
	"github.com/LukasBrandt/PaperFig/app/controllers"
	"github.com/LukasBrandt/PaperFig/internal/pkg/constants"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	// Figure status polling and token-gated download. The download link
	// carries its own signed token, so no CSRF or session gate here.
	app.Get(constants.FigureStatusRoute, loggedInMiddleware, controllers.HandleFigureStatus)
	app.Get(constants.FigureDownloadRoute, loggedInMiddleware, controllers.HandleFigureDownload)

	// Flash helpers
	app.Get("/flash/generate-error", loggedInMiddleware, controllers.HandleFlashGenerateError)

	// Auth
	app.Post(constants.LogoutRoute, controllers.HandleAuthLogout)

	// Billing provider webhooks (no CSRF, signature-verified in controller)
	app.Post(constants.StripeWebhookRoute, controllers.HandleStripeWebhook)
}
