package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/LukasBrandt/PaperFig/internal/pkg/billing"
	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
	"github.com/LukasBrandt/PaperFig/internal/pkg/session"
	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request
// This centralizes user session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	// Get session with error handling
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		// On error: treat as anonymous visitor
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn:   false,
			IsSubscribed: false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	userID, ok := sess.Get(usercontext.KeyUserID).(string)
	if !ok || userID == "" {
		// Anonymous visitor - no session data
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn:   false,
			IsSubscribed: false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	email := session.GetSessionValue(c, usercontext.KeyUserEmail)
	isSubscribed := session.GetSessionValue(c, usercontext.KeyIsSubscribed) == "true"
	plan := entitlements.Normalize(session.GetSessionValue(c, usercontext.KeyPlan))

	var validUntil *time.Time
	if raw := session.GetSessionValue(c, usercontext.KeyValidUntil); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			validUntil = &t
		}
	}

	// Webhook-fed entitlement hints win over the session snapshot. This lets
	// a checkout that completed in another tab flip the session to subscribed
	// without an extra provider round trip.
	if cachedPlan, cachedValid, ok := billing.CachedEntitlement(email); ok {
		hintedPlan := entitlements.Normalize(cachedPlan)
		hintedActive := hintedPlan != entitlements.PlanNone
		if hintedActive != isSubscribed || hintedPlan != plan {
			isSubscribed = hintedActive
			plan = hintedPlan
			validUntil = cachedValid
			_ = session.SetSessionValue(c, usercontext.KeyIsSubscribed, boolString(isSubscribed))
			_ = session.SetSessionValue(c, usercontext.KeyPlan, string(plan))
			if validUntil != nil {
				_ = session.SetSessionValue(c, usercontext.KeyValidUntil, validUntil.Format(time.RFC3339))
			} else {
				_ = session.SetSessionValue(c, usercontext.KeyValidUntil, "")
			}
		}
	}

	// A lapsed subscription never grants workspace access, even when the
	// session still says subscribed.
	if validUntil != nil && validUntil.Before(time.Now()) {
		isSubscribed = false
		plan = entitlements.PlanNone
	}

	userCtx := usercontext.UserContext{
		UserID:       userID,
		Email:        email,
		IsLoggedIn:   true,
		IsSubscribed: isSubscribed,
		Plan:         string(plan),
		ValidUntil:   validUntil,
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)

	return c.Next()
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
