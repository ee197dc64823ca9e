package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/cash"
)

// RegisterCashRoutes wires the withdrawal lifecycle.
func RegisterCashRoutes(router fiber.Router, h *cash.Handler) {
	group := router.Group("/cash")
	group.Post("/", h.Request)
	group.Post("/audit", h.Audit)
	group.Get("/", h.List)
	group.Delete("/:id", h.Delete)
}
