package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sujit-baniya/flash"

	"github.com/LukasBrandt/PaperFig/internal/pkg/session"
	"github.com/LukasBrandt/PaperFig/internal/pkg/usercontext"
)

const (
	AUTH_KEY   string = usercontext.AuthKey
	USER_ID    string = usercontext.KeyUserID
	USER_EMAIL string = usercontext.KeyUserEmail
)

var validate = validator.New()

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		fm := fiber.Map{
			"type": "error",
		}

		email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
		if err := validate.Var(email, "required,contains=@"); err != nil {
			fm["message"] = "Bitte gib eine gültige E-Mail-Adresse ein."

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess, err := session.GetSessionStore().Get(c)
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		sess.Set(AUTH_KEY, true)
		// Stable id per e-mail address, so repeat logins map to the same user.
		sess.Set(USER_ID, uuid.NewSHA1(uuid.NameSpaceOID, []byte(email)).String())
		sess.Set(USER_EMAIL, email)

		// Subscription state is looked up once at login and cached in the
		// session. Lookup failures leave the user unsubscribed.
		sub := getBillingClient().CheckSubscription(c.Context(), email)
		sess.Set(usercontext.KeyIsSubscribed, boolToString(sub.Active))
		sess.Set(usercontext.KeyPlan, sub.Plan)
		if sub.ValidUntil != nil {
			sess.Set(usercontext.KeyValidUntil, sub.ValidUntil.Format(time.RFC3339))
		}

		err = sess.Save()
		if err != nil {
			fm["message"] = fmt.Sprintf("something went wrong: %s", err)

			return flash.WithError(c, fm).Redirect("/login")
		}

		fm = fiber.Map{
			"type":    "success",
			"message": "Willkommen zurück!",
		}

		return flash.WithSuccess(c, fm).Redirect("/")
	}

	if isLoggedIn(c) {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	return c.Render("login", fiber.Map{
		"Layout":    buildLayout(c, "login", flash.Get(c)),
		"CsrfToken": csrfToken(c),
	}, "layouts/main")
}

func HandleAuthLogout(c *fiber.Ctx) error {
	// Destroying a missing session is a no-op, logout is idempotent.
	if err := session.ClearSession(c); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": fmt.Sprintf("something went wrong: %s", err),
		}

		return flash.WithError(c, fm).Redirect("/")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Bis bald! Auf Wiedersehen.",
	}

	c.Locals(FROM_PROTECTED, false)

	return flash.WithSuccess(c, fm).Redirect("/")
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
