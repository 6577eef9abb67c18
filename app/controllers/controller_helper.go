package controllers

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/LukasBrandt/PaperFig/internal/pkg/billing"
	"github.com/LukasBrandt/PaperFig/internal/pkg/config"
	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
	"github.com/LukasBrandt/PaperFig/internal/pkg/viewmodel"
)

const FROM_PROTECTED string = usercontext.KeyFromProtected

var (
	initOnce      sync.Once
	appConfig     *config.AppConfig
	billingClient *billing.Client
)

// Initialize wires the controllers with their billing and config
// dependencies. Called once by the router during installation.
func Initialize() {
	initOnce.Do(func() {
		appConfig = config.MustLoad()
		billingClient = billing.NewClient(appConfig, billing.NewCatalog(appConfig))
	})
}

func getBillingClient() *billing.Client {
	Initialize()
	return billingClient
}

func getAppConfig() *config.AppConfig {
	Initialize()
	return appConfig
}

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// buildLayout assembles the shared layout view model from the user context
func buildLayout(c *fiber.Ctx, page string, msg fiber.Map) viewmodel.Layout {
	userCtx := usercontext.GetUserContext(c)
	return viewmodel.Layout{
		Page:          page,
		FromProtected: userCtx.IsLoggedIn,
		IsError:       msg["type"] == "error",
		Msg:           msg,
		Email:         userCtx.Email,
		IsSubscribed:  userCtx.IsSubscribed,
		Plan:          userCtx.Plan,
	}
}

// csrfToken reads the token the CSRF middleware stored for this request.
// Routes outside the CSRF group have no token.
func csrfToken(c *fiber.Ctx) string {
	if v := c.Locals("csrf"); v != nil {
		if token, ok := v.(string); ok {
			return token
		}
	}
	return ""
}
