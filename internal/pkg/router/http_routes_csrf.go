package router

import (
	"strings"
	"time"

	"github.com/LukasBrandt/PaperFig/app/controllers"
	"github.com/LukasBrandt/PaperFig/internal/pkg/constants"
	"github.com/LukasBrandt/PaperFig/internal/pkg/env"
	"github.com/LukasBrandt/PaperFig/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

func (h HttpRouter) registerCSRFProtectedRoutes(app *fiber.App) {
	csrfConf := csrf.Config{
		KeyLookup:      "form:_csrf",
		ContextKey:     "csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		Expiration:     1 * time.Hour,
		CookieSecure:   !env.IsDev(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}

	group := app.Group("", cors.New(), csrf.New(csrfConf))
	group.Get(constants.StartRoute, loggedInMiddleware, controllers.HandleStart)
	group.Get(constants.LoginRoute, loggedInMiddleware, controllers.HandleAuthLogin)
	group.Post(constants.LoginRoute, loggedInMiddleware, controllers.HandleAuthLogin)
	group.Get(constants.PricingRoute, loggedInMiddleware, controllers.HandlePricing)

	// Billing
	group.Post(constants.SubscribeRoute, middleware.RequireAuth, controllers.HandleSubscribe)
	group.Get(constants.BillingSuccessRoute, middleware.RequireAuth, controllers.HandleBillingSuccess)
	group.Get(constants.BillingCancelRoute, middleware.RequireAuth, controllers.HandleBillingCancel)

	// Figure generation and viewing, subscribers only
	group.Post(constants.GenerateRoute, middleware.RequireSubscription, controllers.HandleGenerate)
	group.Get(constants.FigureViewRoute, middleware.RequireSubscription, controllers.HandleFigureViewer)
}
