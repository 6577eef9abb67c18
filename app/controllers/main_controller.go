package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
	"github.com/LukasBrandt/PaperFig/internal/pkg/quota"
	"github.com/LukasBrandt/PaperFig/internal/pkg/session"
	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
)

// HandleStart renders the start page in one of three states: the landing
// page for visitors, the paywall for logged-in users without a subscription,
// and the workspace for subscribers.
func HandleStart(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	layout := buildLayout(c, "start", flash.Get(c))

	if !userCtx.IsLoggedIn {
		return c.Render("landing", fiber.Map{
			"Layout": layout,
		}, "layouts/main")
	}

	if !userCtx.IsSubscribed {
		return c.Render("paywall", fiber.Map{
			"Layout":    layout,
			"Plans":     getBillingClient().Catalog().Plans(),
			"CsrfToken": csrfToken(c),
		}, "layouts/main")
	}

	data := fiber.Map{
		"Layout":          layout,
		"CsrfToken":       csrfToken(c),
		"LastFigureUUID":  session.GetSessionValue(c, usercontext.KeyLastFigure),
		"AllowedDiagrams": allowedDiagramOptions(userCtx.Plan),
	}
	// Quota display is best effort, generation enforces the limit anyway.
	if used, err := quota.UsedFigures(userCtx.UserID); err == nil {
		data["QuotaUsed"] = used
		data["QuotaLimit"] = entitlements.MonthlyFigureLimit(entitlements.Normalize(userCtx.Plan))
	}

	return c.Render("workspace", data, "layouts/main")
}
