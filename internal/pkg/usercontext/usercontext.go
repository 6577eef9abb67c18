package usercontext

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// UserContext represents the complete user context for a request
type UserContext struct {
	UserID       string     `json:"user_id"`
	Email        string     `json:"email"`
	IsLoggedIn   bool       `json:"is_logged_in"`
	IsSubscribed bool       `json:"is_subscribed"`
	Plan         string     `json:"plan"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

// GetUserContext retrieves the user context from fiber context
// Returns a default anonymous context if none is set
func GetUserContext(c *fiber.Ctx) UserContext {
	if ctx := c.Locals("USER_CONTEXT"); ctx != nil {
		return ctx.(UserContext)
	}
	return UserContext{IsLoggedIn: false, IsSubscribed: false}
}

// IsLoggedIn checks if the current user is logged in
func IsLoggedIn(c *fiber.Ctx) bool {
	return GetUserContext(c).IsLoggedIn
}

// IsSubscribed checks if the current user holds an active subscription
func IsSubscribed(c *fiber.Ctx) bool {
	return GetUserContext(c).IsSubscribed
}

// GetUserID returns the current user's ID, or empty string if not logged in
func GetUserID(c *fiber.Ctx) string {
	return GetUserContext(c).UserID
}

// GetUserEmail returns the current user's email, or empty string if not logged in
func GetUserEmail(c *fiber.Ctx) string {
	return GetUserContext(c).Email
}

// GetPlan returns the current user's plan, or empty string if unsubscribed
func GetPlan(c *fiber.Ctx) string {
	return GetUserContext(c).Plan
}
