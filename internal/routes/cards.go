package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/points-hub/points_hub/internal/card"
)

// RegisterCardRoutes wires prepaid card redemption and administration.
func RegisterCardRoutes(router fiber.Router, h *card.Handler, redeemLimiter fiber.Handler) {
	group := router.Group("/cards")
	group.Post("/redeem", redeemLimiter, h.Redeem)
	group.Post("/generate", h.Generate)
	group.Get("/", h.List)
	group.Delete("/:id", h.Delete)
}
