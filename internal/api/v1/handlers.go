package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/LukasBrandt/PaperFig/app/controllers"
	"github.com/LukasBrandt/PaperFig/internal/pkg/diagram"
	"github.com/LukasBrandt/PaperFig/internal/pkg/middleware"
)

// Pong is the response body of the ping endpoint
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer implements the v1 JSON endpoints
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// RegisterHandlers attaches the v1 routes to the given router group
func RegisterHandlers(router fiber.Router, s *APIServer) {
	router.Get("/ping", s.GetPing)
	router.Post("/figures", middleware.RequireAPISessionAuth, middleware.RequireAPISubscription, s.PostFigure)
	router.Get("/figures/:uuid/status", middleware.RequireAPISessionAuth, s.GetFigureStatus)
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// PostFigure accepts a generation request as JSON and enqueues it.
// Delegates to the existing controller for consistent behavior.
func (s *APIServer) PostFigure(c *fiber.Ctx) error {
	return controllers.HandleGenerateAPI(c)
}

// GetFigureStatus returns processing status for a figure (JSON)
func (s *APIServer) GetFigureStatus(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "uuid missing"})
	}

	status := diagram.GetFigureStatus(uuid)
	if status == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "unknown figure"})
	}

	resp := fiber.Map{"status": status, "complete": status == diagram.STATUS_COMPLETED}
	if status == diagram.STATUS_COMPLETED {
		resp["view_url"] = "/figure/" + uuid
	}
	if status == diagram.STATUS_FAILED {
		resp["message"] = diagram.GetFigureError(uuid)
	}
	return c.JSON(resp)
}
