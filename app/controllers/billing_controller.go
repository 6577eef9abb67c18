package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/sujit-baniya/flash"

	"github.com/LukasBrandt/PaperFig/internal/pkg/billing"
	"github.com/LukasBrandt/PaperFig/internal/pkg/entitlements"
	"github.com/LukasBrandt/PaperFig/internal/pkg/session"
	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
)

// HandlePricing shows the plan catalog. Unlike the paywall this page is
// public, so visitors can see prices before logging in.
func HandlePricing(c *fiber.Ctx) error {
	return c.Render("pricing", fiber.Map{
		"Layout":    buildLayout(c, "pricing", flash.Get(c)),
		"Plans":     getBillingClient().Catalog().Plans(),
		"CsrfToken": csrfToken(c),
	}, "layouts/main")
}

// HandleSubscribe starts a checkout session for the chosen plan and sends
// the user to the provider's hosted payment page.
func HandleSubscribe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	planID := c.Params("plan")

	// No checkout for a plan the user already has (or outranks).
	if userCtx.IsSubscribed {
		current := entitlements.Normalize(userCtx.Plan)
		if target, ok := getBillingClient().Catalog().FindByID(planID); ok && entitlements.Rank(current) >= entitlements.Rank(target.ID) {
			return flash.WithInfo(c, fiber.Map{
				"type":    "info",
				"message": "Dein aktueller Plan deckt diesen Plan bereits ab.",
			}).Redirect("/")
		}
	}

	checkout, err := getBillingClient().CreateCheckoutSession(c.Context(), planID, userCtx.Email)
	if err != nil {
		fm := fiber.Map{"type": "error"}
		if errors.Is(err, billing.ErrPlanNotConfigured) {
			fm["message"] = "Dieser Plan ist derzeit nicht verfügbar."
		} else if _, declined := billing.IsPaymentDeclined(err); declined {
			fm["message"] = "Die Zahlungsmethode wurde abgelehnt. Bitte versuche es mit einer anderen."
		} else {
			fiberlog.Errorf("[Billing] Checkout for %s failed: %v", userCtx.Email, err)
			fm["message"] = "Der Bezahlvorgang konnte nicht gestartet werden. Bitte versuche es später erneut."
		}
		return flash.WithError(c, fm).Redirect("/")
	}

	_ = session.SetSessionValue(c, usercontext.KeyPendingPlan, planID)

	return c.Redirect(checkout.URL, fiber.StatusSeeOther)
}

// HandleBillingSuccess is the checkout return URL. The session never flips
// to subscribed on the redirect alone, a fresh provider lookup decides.
func HandleBillingSuccess(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Session konnte nicht geladen werden.",
		}).Redirect("/")
	}
	sess.Delete(usercontext.KeyPendingPlan)

	sub := getBillingClient().CheckSubscription(c.Context(), userCtx.Email)
	if !sub.Active {
		// The provider may lag behind checkout completion. A webhook-fed
		// entitlement hint bridges the gap until the lookup catches up.
		if plan, validUntil, ok := billing.CachedEntitlement(userCtx.Email); ok {
			sub = billing.Subscription{Active: true, Plan: plan, ValidUntil: validUntil}
		}
	}

	if !sub.Active {
		_ = sess.Save()
		return flash.WithInfo(c, fiber.Map{
			"type":    "info",
			"message": "Deine Zahlung wird noch verarbeitet. Bitte lade die Seite gleich neu.",
		}).Redirect("/")
	}

	sess.Set(usercontext.KeyIsSubscribed, "true")
	sess.Set(usercontext.KeyPlan, sub.Plan)
	if sub.ValidUntil != nil {
		sess.Set(usercontext.KeyValidUntil, sub.ValidUntil.Format(time.RFC3339))
	}
	if err := sess.Save(); err != nil {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Session konnte nicht gespeichert werden.",
		}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Vielen Dank! Dein Abo ist jetzt aktiv.",
	}).Redirect("/")
}

// HandleBillingCancel clears the pending checkout and returns to the paywall.
func HandleBillingCancel(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		sess.Delete(usercontext.KeyPendingPlan)
		_ = sess.Save()
	}

	return flash.WithInfo(c, fiber.Map{
		"type":    "info",
		"message": "Der Bezahlvorgang wurde abgebrochen.",
	}).Redirect("/")
}

// HandleStripeWebhook receives provider events. The signature is verified
// before any payload field is trusted.
func HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := getBillingClient().VerifyWebhook(c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		fiberlog.Warnf("[Billing] Webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	}

	switch event.Type {
	case "checkout.session.completed":
		var checkout stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkout); err != nil {
			fiberlog.Errorf("[Billing] Webhook payload parse failed: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
		email := checkoutEmail(&checkout)
		if email == "" {
			break
		}
		// Re-verify against the API instead of trusting the event payload
		// for plan details.
		sub := getBillingClient().CheckSubscription(c.Context(), email)
		if sub.Active {
			if err := billing.CacheEntitlement(email, sub.Plan, sub.ValidUntil); err != nil {
				fiberlog.Errorf("[Billing] Caching entitlement for %s failed: %v", email, err)
			}
		}

	case "customer.subscription.deleted", "customer.subscription.paused":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			fiberlog.Errorf("[Billing] Webhook payload parse failed: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
		}
		if sub.Customer == nil {
			break
		}
		email, err := getBillingClient().CustomerEmail(c.Context(), sub.Customer.ID)
		if err != nil || email == "" {
			fiberlog.Warnf("[Billing] Customer lookup for webhook failed: %v", err)
			break
		}
		if err := billing.ClearEntitlement(email); err != nil {
			fiberlog.Errorf("[Billing] Clearing entitlement for %s failed: %v", email, err)
		}

	default:
		// Unhandled event types are acknowledged so the provider stops
		// retrying them.
	}

	return c.JSON(fiber.Map{"received": true})
}

func checkoutEmail(checkout *stripe.CheckoutSession) string {
	if checkout.CustomerDetails != nil && checkout.CustomerDetails.Email != "" {
		return checkout.CustomerDetails.Email
	}
	if checkout.CustomerEmail != "" {
		return checkout.CustomerEmail
	}
	return ""
}
