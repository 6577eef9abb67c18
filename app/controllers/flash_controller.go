package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"
)

// HandleFlashGenerateError shows a generation error from the query string
// Query: ?msg=...
func HandleFlashGenerateError(c *fiber.Ctx) error {
	msg := c.Query("msg", "Fehler bei der Diagramm-Generierung. Bitte versuche es erneut.")
	if len(msg) > 300 {
		msg = msg[:300]
	}
	fm := fiber.Map{
		"type":    "error",
		"message": msg,
	}
	flash.WithError(c, fm)
	return c.Redirect("/", fiber.StatusSeeOther)
}
