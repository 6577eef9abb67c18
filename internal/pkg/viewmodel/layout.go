package viewmodel

import "github.com/gofiber/fiber/v2"

type Layout struct {
	Page          string
	FromProtected bool
	IsError       bool
	Msg           fiber.Map
	Email         string
	IsSubscribed  bool
	Plan          string
	OGViewModel   *OpenGraph
}

// OpenGraph holds the og: meta tags for a page
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	URL         string
}
